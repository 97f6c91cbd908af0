package api

import (
	"context"
	"time"

	"github.com/Domenick1991/railbooking/internal/auth"
	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/fare"
	"github.com/Domenick1991/railbooking/internal/service/booking"
	"github.com/Domenick1991/railbooking/internal/service/customers"
	"github.com/stretchr/testify/mock"
)

type MockTrainUseCase struct {
	mock.Mock
}

func (m *MockTrainUseCase) List(ctx context.Context) ([]domain.Train, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Train), args.Error(1)
}

func (m *MockTrainUseCase) GetByID(ctx context.Context, id int64) (*domain.Train, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Train), args.Error(1)
}

func (m *MockTrainUseCase) FindAvailable(ctx context.Context, origin, destination string, date time.Time) ([]domain.Train, error) {
	args := m.Called(ctx, origin, destination, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Train), args.Error(1)
}

func (m *MockTrainUseCase) ClassFares(origin, destination string) []fare.ClassFare {
	return m.Called(origin, destination).Get(0).([]fare.ClassFare)
}

type MockCustomerUseCase struct {
	mock.Mock
}

func (m *MockCustomerUseCase) Register(ctx context.Context, input customers.RegisterInput) (*domain.Customer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerUseCase) Authenticate(ctx context.Context, loginID, password string) (bool, error) {
	args := m.Called(ctx, loginID, password)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerUseCase) Login(ctx context.Context, loginID, password string) (*customers.LoginResult, error) {
	args := m.Called(ctx, loginID, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customers.LoginResult), args.Error(1)
}

func (m *MockCustomerUseCase) Profile(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateReservation(ctx context.Context, input booking.CreateReservationInput) (*domain.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockBookingUseCase) GetReservation(ctx context.Context, code string) (*domain.Reservation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockBookingUseCase) CancelReservation(ctx context.Context, code string) (*domain.Reservation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockBookingUseCase) QuoteFare(ctx context.Context, input booking.QuoteInput) (*booking.Quote, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Quote), args.Error(1)
}

func (m *MockBookingUseCase) ListCustomerReservations(ctx context.Context, customerID int64) ([]domain.Reservation, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockBookingUseCase) Stats(ctx context.Context) (domain.ReservationStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ReservationStats), args.Error(1)
}

func (m *MockBookingUseCase) MarkRefunded(ctx context.Context, code string) (*domain.Reservation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

var _ TokenParser = (*auth.Manager)(nil)
