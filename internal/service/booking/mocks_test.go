package booking

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/events"
	"github.com/stretchr/testify/mock"
)

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	return m.Called(ctx, reservation).Error(0)
}

func (m *MockReservationRepository) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Reservation, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) MarkCancelled(ctx context.Context, reservation *domain.Reservation) error {
	return m.Called(ctx, reservation).Error(0)
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, code string, from, to domain.ReservationStatus) (*domain.Reservation, error) {
	args := m.Called(ctx, code, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Stats(ctx context.Context) (domain.ReservationStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ReservationStats), args.Error(1)
}

func (m *MockReservationRepository) TakenSeats(ctx context.Context, trainID int64) ([]string, error) {
	args := m.Called(ctx, trainID)
	return args.Get(0).([]string), args.Error(1)
}

type MockTrainRepository struct {
	mock.Mock
}

func (m *MockTrainRepository) List(ctx context.Context) ([]domain.Train, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Train), args.Error(1)
}

func (m *MockTrainRepository) Search(ctx context.Context, origin, destination string) ([]domain.Train, error) {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).([]domain.Train), args.Error(1)
}

func (m *MockTrainRepository) GetByID(ctx context.Context, id int64) (*domain.Train, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Train), args.Error(1)
}

func (m *MockTrainRepository) ReserveSeats(ctx context.Context, trainID int64, seats int) error {
	return m.Called(ctx, trainID, seats).Error(0)
}

func (m *MockTrainRepository) ReleaseSeats(ctx context.Context, trainID int64, seats int) error {
	return m.Called(ctx, trainID, seats).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) AcquireTrainLock(ctx context.Context, trainID int64, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, trainID, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockCache) ReleaseTrainLock(ctx context.Context, trainID int64, token string) error {
	return m.Called(ctx, trainID, token).Error(0)
}

func (m *MockCache) InvalidateRoute(ctx context.Context, origin, destination string) error {
	return m.Called(ctx, origin, destination).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.ReservationEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// sequenceCodes hands out the given codes in order and then repeats the last one.
type sequenceCodes struct {
	mu    sync.Mutex
	codes []string
}

func (g *sequenceCodes) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	code := g.codes[0]
	if len(g.codes) > 1 {
		g.codes = g.codes[1:]
	}
	return code, nil
}

type MockRetryingPublisher struct {
	MockPublisher
}

func (m *MockRetryingPublisher) PublishWithRetry(ctx context.Context, event events.ReservationEvent, maxRetries int) error {
	return m.Called(ctx, event, maxRetries).Error(0)
}
