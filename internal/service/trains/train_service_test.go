package trains

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/fare"
	"github.com/Domenick1991/railbooking/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTrainRepository struct {
	mock.Mock
}

func (m *MockTrainRepository) List(ctx context.Context) ([]domain.Train, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Train), args.Error(1)
}

func (m *MockTrainRepository) Search(ctx context.Context, origin, destination string) ([]domain.Train, error) {
	args := m.Called(ctx, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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

func (m *MockCache) GetTrains(ctx context.Context, origin, destination string) ([]domain.Train, error) {
	args := m.Called(ctx, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Train), args.Error(1)
}

func (m *MockCache) SetTrains(ctx context.Context, origin, destination string, trains []domain.Train) error {
	return m.Called(ctx, origin, destination, trains).Error(0)
}

var today = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newService(repo *MockTrainRepository, cache Cache) *TrainService {
	return NewTrainService(repo, cache, fare.NewCalculator(), logger.Discard(), WithClock(func() time.Time { return today }))
}

func TestTrainService_FindAvailable_CacheHit(t *testing.T) {
	repo := &MockTrainRepository{}
	cache := &MockCache{}
	cached := []domain.Train{*domain.NewTrain(12345, "Rajdhani Express", "DELHI", "MUMBAI", "06:00", "20:30", 100, "EXPRESS")}
	cache.On("GetTrains", mock.Anything, "DELHI", "MUMBAI").Return(cached, nil)

	got, err := newService(repo, cache).FindAvailable(context.Background(), "delhi", "mumbai", today.AddDate(0, 0, 3))

	require.NoError(t, err)
	assert.Equal(t, cached, got)
	repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestTrainService_FindAvailable_CacheMiss(t *testing.T) {
	repo := &MockTrainRepository{}
	cache := &MockCache{}
	found := []domain.Train{*domain.NewTrain(12345, "Rajdhani Express", "DELHI", "MUMBAI", "06:00", "20:30", 100, "EXPRESS")}
	cache.On("GetTrains", mock.Anything, "DELHI", "MUMBAI").Return(nil, nil)
	repo.On("Search", mock.Anything, "DELHI", "MUMBAI").Return(found, nil)
	cache.On("SetTrains", mock.Anything, "DELHI", "MUMBAI", found).Return(nil)

	got, err := newService(repo, cache).FindAvailable(context.Background(), "DELHI", "MUMBAI", today)

	require.NoError(t, err)
	assert.Equal(t, found, got)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestTrainService_FindAvailable_CacheErrorFallsThrough(t *testing.T) {
	repo := &MockTrainRepository{}
	cache := &MockCache{}
	cache.On("GetTrains", mock.Anything, "DELHI", "MUMBAI").Return(nil, errors.New("redis down"))
	repo.On("Search", mock.Anything, "DELHI", "MUMBAI").Return([]domain.Train{}, nil)
	cache.On("SetTrains", mock.Anything, "DELHI", "MUMBAI", []domain.Train{}).Return(errors.New("redis down"))

	got, err := newService(repo, cache).FindAvailable(context.Background(), "DELHI", "MUMBAI", time.Time{})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTrainService_FindAvailable_Validation(t *testing.T) {
	tests := []struct {
		name        string
		origin      string
		destination string
		date        time.Time
	}{
		{"empty origin", "", "MUMBAI", today},
		{"same station", "delhi", "DELHI", today},
		{"past date", "DELHI", "MUMBAI", today.AddDate(0, 0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockTrainRepository{}
			_, err := newService(repo, nil).FindAvailable(context.Background(), tt.origin, tt.destination, tt.date)
			assert.ErrorIs(t, err, domain.ErrValidation)
			repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestTrainService_FindAvailable_RepoError(t *testing.T) {
	repo := &MockTrainRepository{}
	repo.On("Search", mock.Anything, "DELHI", "MUMBAI").Return(nil, errors.New("db down"))

	_, err := newService(repo, nil).FindAvailable(context.Background(), "DELHI", "MUMBAI", today)
	assert.EqualError(t, err, "db down")
}

func TestTrainService_GetByIDAndList(t *testing.T) {
	repo := &MockTrainRepository{}
	train := domain.NewTrain(12345, "Rajdhani Express", "DELHI", "MUMBAI", "06:00", "20:30", 100, "EXPRESS")
	repo.On("GetByID", mock.Anything, int64(12345)).Return(train, nil)
	repo.On("GetByID", mock.Anything, int64(1)).Return(nil, domain.ErrTrainNotFound)
	repo.On("List", mock.Anything).Return([]domain.Train{*train}, nil)

	s := newService(repo, nil)

	got, err := s.GetByID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Equal(t, train, got)

	_, err = s.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrTrainNotFound)

	all, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTrainService_ClassFares(t *testing.T) {
	fares := newService(&MockTrainRepository{}, nil).ClassFares("DELHI", "MUMBAI")
	require.Len(t, fares, 5)
	assert.Equal(t, fare.ClassFare{Class: domain.FirstAC, FareCents: 35000}, fares[0])
}
