package reservations_service_api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/service/booking"
	"github.com/Domenick1991/railbooking/internal/service/customers"
	"github.com/Domenick1991/railbooking/internal/service/trains"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxExactInt is the largest integer a JSON number carries without rounding.
const maxExactInt = 1 << 53

// Server implements ReservationServiceServer on top of the services.
type Server struct {
	customers customers.CustomerUseCase
	trains    trains.TrainUseCase
	bookings  booking.BookingUseCase
}

func NewServer(customers customers.CustomerUseCase, trains trains.TrainUseCase, bookings booking.BookingUseCase) *Server {
	return &Server{customers: customers, trains: trains, bookings: bookings}
}

func (s *Server) Authenticate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ok, err := s.customers.Authenticate(ctx, str(req, "login_id"), str(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{"authenticated": ok})
}

func (s *Server) FindTrains(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var date time.Time
	if raw := str(req, "date"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return nil, toStatus(err)
		}
		date = d
	}
	found, err := s.trains.FindAvailable(ctx, str(req, "origin"), str(req, "destination"), date)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"trains": found})
}

// CreateReservation books for the calling customer; a customer_id in the
// request body is ignored.
func (s *Server) CreateReservation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	caller, err := customerFrom(ctx)
	if err != nil {
		return nil, err
	}
	trainID, err := integer(req, "train_id")
	if err != nil {
		return nil, err
	}
	passengers, err := integer(req, "passengers")
	if err != nil {
		return nil, err
	}
	res, err := s.bookings.CreateReservation(ctx, booking.CreateReservationInput{
		CustomerID:        caller,
		TrainID:           trainID,
		TravelerName:      str(req, "traveler_name"),
		TravelClass:       str(req, "travel_class"),
		PassengerCategory: str(req, "passenger_category"),
		TravelDate:        str(req, "travel_date"),
		Origin:            str(req, "origin"),
		Destination:       str(req, "destination"),
		Passengers:        int(passengers),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(res)
}

func (s *Server) GetReservation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.owned(ctx, str(req, "confirmation_code"))
	if err != nil {
		return nil, err
	}
	return toStruct(res)
}

func (s *Server) CancelReservation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	current, err := s.owned(ctx, str(req, "confirmation_code"))
	if err != nil {
		return nil, err
	}
	res, err := s.bookings.CancelReservation(ctx, current.ConfirmationCode)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(res)
}

// owned loads a reservation and hides it from customers who do not own it.
func (s *Server) owned(ctx context.Context, code string) (*domain.Reservation, error) {
	caller, err := customerFrom(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.bookings.GetReservation(ctx, code)
	if err != nil {
		return nil, toStatus(err)
	}
	if res.CustomerID != caller {
		return nil, toStatus(domain.ErrReservationNotFound)
	}
	return res, nil
}

func str(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// integer reads a whole number field. A missing or null field reads as zero.
func integer(req *structpb.Struct, key string) (int64, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, nil
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || math.Abs(n) > maxExactInt {
			return 0, status.Errorf(codes.InvalidArgument, "%s must be a whole number", key)
		}
		return int64(n), nil
	default:
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", key)
	}
}

// toStruct goes through JSON so struct tags decide the field names.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func toStatus(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, domain.ErrValidation):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrInvalidCredentials):
		code = codes.Unauthenticated
	case errors.Is(err, domain.ErrTrainNotFound),
		errors.Is(err, domain.ErrReservationNotFound),
		errors.Is(err, domain.ErrCustomerNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrInsufficientSeats),
		errors.Is(err, domain.ErrNotCancellable),
		errors.Is(err, domain.ErrInvalidStatusTransition):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrTrainBusy):
		code = codes.Aborted
	case errors.Is(err, domain.ErrCustomerExists):
		code = codes.AlreadyExists
	}
	return status.Error(code, err.Error())
}

var _ ReservationServiceServer = (*Server)(nil)
