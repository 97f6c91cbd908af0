package trains

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/fare"
	"github.com/Domenick1991/railbooking/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type TrainUseCase interface {
	List(ctx context.Context) ([]domain.Train, error)
	GetByID(ctx context.Context, id int64) (*domain.Train, error)
	FindAvailable(ctx context.Context, origin, destination string, date time.Time) ([]domain.Train, error)
	ClassFares(origin, destination string) []fare.ClassFare
}

type Cache interface {
	GetTrains(ctx context.Context, origin, destination string) ([]domain.Train, error)
	SetTrains(ctx context.Context, origin, destination string, trains []domain.Train) error
}

type TrainService struct {
	repo   repository.TrainRepository
	cache  Cache
	fares  *fare.Calculator
	log    logrus.FieldLogger
	now    func() time.Time
	search singleflight.Group
}

type Option func(*TrainService)

func WithClock(now func() time.Time) Option {
	return func(s *TrainService) {
		s.now = now
	}
}

// NewTrainService accepts a nil cache; searches then always hit the repository.
func NewTrainService(repo repository.TrainRepository, cache Cache, fares *fare.Calculator, log logrus.FieldLogger, opts ...Option) *TrainService {
	s := &TrainService{repo: repo, cache: cache, fares: fares, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TrainService) List(ctx context.Context) ([]domain.Train, error) {
	return s.repo.List(ctx)
}

func (s *TrainService) GetByID(ctx context.Context, id int64) (*domain.Train, error) {
	return s.repo.GetByID(ctx, id)
}

// FindAvailable lists operational trains on the route that still have seats.
func (s *TrainService) FindAvailable(ctx context.Context, origin, destination string, date time.Time) ([]domain.Train, error) {
	origin, destination = domain.NormalizeStation(origin), domain.NormalizeStation(destination)
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", domain.ErrValidation)
	}
	if origin == destination {
		return nil, fmt.Errorf("%w: origin and destination must differ", domain.ErrValidation)
	}
	if !date.IsZero() && domain.DaysBetween(s.now(), date) < 0 {
		return nil, fmt.Errorf("%w: travel date %s is in the past", domain.ErrValidation, date.Format(domain.DateLayout))
	}

	if s.cache != nil {
		cached, err := s.cache.GetTrains(ctx, origin, destination)
		if err != nil {
			s.log.WithError(err).Warn("train cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	v, err, _ := s.search.Do(origin+"|"+destination, func() (interface{}, error) {
		found, err := s.repo.Search(ctx, origin, destination)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.SetTrains(ctx, origin, destination, found); err != nil {
				s.log.WithError(err).Warn("train cache write failed")
			}
		}
		return found, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Train), nil
}

func (s *TrainService) ClassFares(origin, destination string) []fare.ClassFare {
	return s.fares.ClassFares(origin, destination)
}

var _ TrainUseCase = (*TrainService)(nil)
