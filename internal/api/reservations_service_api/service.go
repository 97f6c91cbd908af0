package reservations_service_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "railbooking.v1.ReservationService"

// ReservationServiceServer is the gRPC surface of the booking core. Requests
// and responses travel as google.protobuf.Struct documents.
type ReservationServiceServer interface {
	Authenticate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	FindTrains(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateReservation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetReservation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CancelReservation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(srv ReservationServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ReservationServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ReservationServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReservationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Authenticate", ReservationServiceServer.Authenticate),
		unaryHandler("FindTrains", ReservationServiceServer.FindTrains),
		unaryHandler("CreateReservation", ReservationServiceServer.CreateReservation),
		unaryHandler("GetReservation", ReservationServiceServer.GetReservation),
		unaryHandler("CancelReservation", ReservationServiceServer.CancelReservation),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "railbooking/v1/reservations.proto",
}

func RegisterReservationServiceServer(s grpc.ServiceRegistrar, srv ReservationServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the service over an established connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) call(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Authenticate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return c.call(ctx, "Authenticate", req)
}

func (c *Client) FindTrains(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return c.call(ctx, "FindTrains", req)
}

func (c *Client) CreateReservation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return c.call(ctx, "CreateReservation", req)
}

func (c *Client) GetReservation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return c.call(ctx, "GetReservation", req)
}

func (c *Client) CancelReservation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return c.call(ctx, "CancelReservation", req)
}

var _ ReservationServiceServer = (*Client)(nil)
