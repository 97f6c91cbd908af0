package bootstrap

import (
	"context"
	"net/http"

	reservationsapi "github.com/Domenick1991/railbooking/internal/api/reservations_service_api"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// newGateway exposes the gRPC reservation service as JSON under /v1/.
func newGateway(backend reservationsapi.ReservationServiceServer) (*runtime.ServeMux, error) {
	mux := runtime.NewServeMux(runtime.WithMetadata(forwardCustomerID))

	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/v1/health", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			resp, _ := structpb.NewStruct(map[string]interface{}{"status": "ok"})
			writeProto(mux, w, r, resp)
		}},
		{http.MethodGet, "/v1/trains", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			q := r.URL.Query()
			req, err := structpb.NewStruct(map[string]interface{}{
				"origin":      q.Get("origin"),
				"destination": q.Get("destination"),
				"date":        q.Get("date"),
			})
			if err != nil {
				writeError(mux, w, r, status.Error(codes.InvalidArgument, err.Error()))
				return
			}
			resp, err := backend.FindTrains(r.Context(), req)
			respond(mux, w, r, resp, err)
		}},
		{http.MethodPost, "/v1/auth/check", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			req, ok := decodeBody(mux, w, r)
			if !ok {
				return
			}
			resp, err := backend.Authenticate(r.Context(), req)
			respond(mux, w, r, resp, err)
		}},
		{http.MethodPost, "/v1/reservations", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			ctx, ok := annotate(mux, w, r, "CreateReservation")
			if !ok {
				return
			}
			req, ok := decodeBody(mux, w, r)
			if !ok {
				return
			}
			resp, err := backend.CreateReservation(ctx, req)
			respond(mux, w, r, resp, err)
		}},
		{http.MethodGet, "/v1/reservations/{code}", func(w http.ResponseWriter, r *http.Request, params map[string]string) {
			ctx, ok := annotate(mux, w, r, "GetReservation")
			if !ok {
				return
			}
			resp, err := backend.GetReservation(ctx, codeRequest(params))
			respond(mux, w, r, resp, err)
		}},
		{http.MethodDelete, "/v1/reservations/{code}", func(w http.ResponseWriter, r *http.Request, params map[string]string) {
			ctx, ok := annotate(mux, w, r, "CancelReservation")
			if !ok {
				return
			}
			resp, err := backend.CancelReservation(ctx, codeRequest(params))
			respond(mux, w, r, resp, err)
		}},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return nil, err
		}
	}
	return mux, nil
}

// annotate copies the caller's Authorization header, and the metadata added by
// forwardCustomerID, into outgoing gRPC metadata.
func annotate(mux *runtime.ServeMux, w http.ResponseWriter, r *http.Request, method string) (context.Context, bool) {
	ctx, err := runtime.AnnotateContext(r.Context(), mux, r, "/"+reservationsapi.ServiceName+"/"+method)
	if err != nil {
		writeError(mux, w, r, status.Error(codes.InvalidArgument, err.Error()))
		return nil, false
	}
	return ctx, true
}

func forwardCustomerID(_ context.Context, r *http.Request) metadata.MD {
	if id := r.Header.Get("X-Customer-ID"); id != "" {
		return metadata.Pairs(reservationsapi.CustomerIDKey, id)
	}
	return nil
}

func codeRequest(params map[string]string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"confirmation_code": structpb.NewStringValue(params["code"]),
	}}
}

func decodeBody(mux *runtime.ServeMux, w http.ResponseWriter, r *http.Request) (*structpb.Struct, bool) {
	inbound, _ := runtime.MarshalerForRequest(mux, r)
	req := &structpb.Struct{}
	if err := inbound.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(mux, w, r, status.Errorf(codes.InvalidArgument, "invalid request body: %v", err))
		return nil, false
	}
	return req, true
}

func respond(mux *runtime.ServeMux, w http.ResponseWriter, r *http.Request, resp *structpb.Struct, err error) {
	if err != nil {
		writeError(mux, w, r, err)
		return
	}
	writeProto(mux, w, r, resp)
}

func writeProto(mux *runtime.ServeMux, w http.ResponseWriter, r *http.Request, resp *structpb.Struct) {
	_, outbound := runtime.MarshalerForRequest(mux, r)
	data, err := outbound.Marshal(resp)
	if err != nil {
		writeError(mux, w, r, status.Error(codes.Internal, err.Error()))
		return
	}
	w.Header().Set("Content-Type", outbound.ContentType(resp))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeError maps gRPC status codes to HTTP ones the same way generated gateways
// do, except that FailedPrecondition is a 409 as on the REST API.
func writeError(mux *runtime.ServeMux, w http.ResponseWriter, r *http.Request, err error) {
	_, outbound := runtime.MarshalerForRequest(mux, r)
	if status.Code(err) == codes.FailedPrecondition {
		err = &runtime.HTTPStatusError{HTTPStatus: http.StatusConflict, Err: err}
	}
	runtime.HTTPError(r.Context(), mux, outbound, w, r, err)
}
