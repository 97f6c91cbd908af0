package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/railbooking/config"
	"github.com/Domenick1991/railbooking/internal/confirmation"
	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/events"
	"github.com/Domenick1991/railbooking/internal/fare"
	"github.com/Domenick1991/railbooking/internal/repository"
	"github.com/Domenick1991/railbooking/internal/validate"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error)
	GetReservation(ctx context.Context, code string) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, code string) (*domain.Reservation, error)
	QuoteFare(ctx context.Context, input QuoteInput) (*Quote, error)
	ListCustomerReservations(ctx context.Context, customerID int64) ([]domain.Reservation, error)
	Stats(ctx context.Context) (domain.ReservationStats, error)
	MarkRefunded(ctx context.Context, code string) (*domain.Reservation, error)
}

// Cache is the Redis side of booking: a cross-instance train lock and the
// cached search results that go stale after a seat mutation.
type Cache interface {
	AcquireTrainLock(ctx context.Context, trainID int64, ttl time.Duration) (string, bool, error)
	ReleaseTrainLock(ctx context.Context, trainID int64, token string) error
	InvalidateRoute(ctx context.Context, origin, destination string) error
}

type CodeGenerator interface {
	Generate() (string, error)
}

type CreateReservationInput struct {
	CustomerID        int64  `json:"-" validate:"gt=0"`
	TrainID           int64  `json:"train_id" validate:"gt=0"`
	TravelerName      string `json:"traveler_name" validate:"required,max=100"`
	TravelClass       string `json:"travel_class" validate:"required"`
	PassengerCategory string `json:"passenger_category"`
	TravelDate        string `json:"travel_date" validate:"required"`
	Origin            string `json:"origin"`
	Destination       string `json:"destination"`
	Passengers        int    `json:"passengers" validate:"gte=0"`
}

type QuoteInput struct {
	TrainID           int64  `json:"train_id" validate:"gt=0"`
	TravelClass       string `json:"travel_class" validate:"required"`
	PassengerCategory string `json:"passenger_category"`
	TravelDate        string `json:"travel_date" validate:"required"`
	Passengers        int    `json:"passengers" validate:"gte=0"`
}

type Quote struct {
	TrainID           int64                    `json:"train_id"`
	TravelClass       domain.TravelClass       `json:"travel_class"`
	PassengerCategory domain.PassengerCategory `json:"passenger_category"`
	TravelDate        string                   `json:"travel_date"`
	Passengers        int                      `json:"passengers"`
	BaseFareCents     int64                    `json:"base_fare_cents"`
	SurgeFactorBP     int64                    `json:"surge_factor_bp"`
	TimeFactorBP      int64                    `json:"time_factor_bp"`
	FarePerPassenger  int64                    `json:"fare_per_passenger_cents"`
	TotalCents        int64                    `json:"total_cents"`
	OccupancyRate     float64                  `json:"occupancy_rate"`
}

type BookingService struct {
	reservations repository.ReservationRepository
	trains       repository.TrainRepository
	fares        *fare.Calculator
	codes        CodeGenerator
	cache        Cache
	publisher    events.Publisher
	locks        *trainLocks
	settings     config.BookingConfig
	log          logrus.FieldLogger
	now          func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithPublisher(p events.Publisher) BookingServiceOption {
	return func(s *BookingService) {
		s.publisher = p
	}
}

func WithCodeGenerator(g CodeGenerator) BookingServiceOption {
	return func(s *BookingService) {
		s.codes = g
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	reservations repository.ReservationRepository,
	trains repository.TrainRepository,
	fares *fare.Calculator,
	settings config.BookingConfig,
	log logrus.FieldLogger,
	opts ...BookingServiceOption,
) *BookingService {
	if settings.CodeAttempts <= 0 {
		settings.CodeAttempts = 5
	}
	if settings.MaxPassengers <= 0 {
		settings.MaxPassengers = 6
	}
	if settings.LockWaitMillis <= 0 {
		settings.LockWaitMillis = 2000
	}
	if settings.TrainLockTTL <= 0 {
		settings.TrainLockTTL = 5
	}
	if settings.PublishRetries <= 0 {
		settings.PublishRetries = 3
	}

	s := &BookingService{
		reservations: reservations,
		trains:       trains,
		fares:        fares,
		codes:        confirmation.NewGenerator(nil),
		publisher:    events.NopPublisher{},
		locks:        newTrainLocks(),
		settings:     settings,
		log:          log,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateReservation validates the request, prices it, takes seats from the
// train and persists the reservation. Seats are handed back if the
// reservation cannot be stored.
func (s *BookingService) CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error) {
	req, err := s.parseCreate(input)
	if err != nil {
		return nil, err
	}
	log := s.log.WithFields(logrus.Fields{"train_id": req.TrainID, "customer_id": req.CustomerID, "passengers": req.PassengerCount})

	unlock, err := s.lockTrain(ctx, req.TrainID)
	if err != nil {
		return nil, err
	}
	defer unlock()
	// Once the train is locked the booking runs to completion.
	ctx = context.WithoutCancel(ctx)

	train, err := s.trains.GetByID(ctx, req.TrainID)
	if err != nil {
		return nil, err
	}
	if !train.HasAvailableSeats(req.PassengerCount) {
		return nil, fmt.Errorf("%w: train %d has %d seats left, %d requested", domain.ErrInsufficientSeats, train.ID, train.SeatsRemaining, req.PassengerCount)
	}
	if req.BoardingStation == "" {
		req.BoardingStation = train.Origin
	}
	if req.AlightingStation == "" {
		req.AlightingStation = train.Destination
	}

	perPassenger := s.fares.DynamicFare(req.TravelClass, req.BoardingStation, req.AlightingStation, req.TravelDate, train.SeatsRemaining, train.TotalCapacity)
	perPassenger = fare.ApplyPassengerDiscount(perPassenger, req.PassengerCategory)
	req.PriceCents = perPassenger * int64(req.PassengerCount)
	taken, err := s.reservations.TakenSeats(ctx, train.ID)
	if err != nil {
		return nil, err
	}
	if req.SeatNumber, err = domain.AllocateSeats(taken, req.PassengerCount, train.TotalCapacity); err != nil {
		return nil, err
	}
	log.WithField("price_cents", req.PriceCents).Debug("fare computed")

	if err := s.trains.ReserveSeats(ctx, train.ID, req.PassengerCount); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, req); err != nil {
		if relErr := s.trains.ReleaseSeats(ctx, train.ID, req.PassengerCount); relErr != nil {
			log.WithError(relErr).WithField("cause", err.Error()).Error("failed to return seats after persistence failure")
			return nil, errors.Join(err, relErr)
		}
		log.WithError(err).Warn("reservation not stored, seats returned")
		return nil, err
	}

	s.invalidate(ctx, train)
	s.publish(ctx, events.ReservationCreated, req)
	log.WithField("code", req.ConfirmationCode).Info("reservation confirmed")
	return req, nil
}

// persist stores the reservation, drawing a fresh code whenever the store
// reports a collision.
func (s *BookingService) persist(ctx context.Context, res *domain.Reservation) error {
	var lastErr error
	for attempt := 0; attempt < s.settings.CodeAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return fmt.Errorf("generate confirmation code: %w", err)
		}
		res.ConfirmationCode = code
		res.BookedAt = s.now()

		err = s.reservations.Create(ctx, res)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateConfirmationCode) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("no free confirmation code after %d attempts: %w", s.settings.CodeAttempts, lastErr)
}

func (s *BookingService) parseCreate(input CreateReservationInput) (*domain.Reservation, error) {
	input.TravelerName = strings.TrimSpace(input.TravelerName)
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	class, err := domain.ParseTravelClass(input.TravelClass)
	if err != nil {
		return nil, err
	}
	category, err := domain.ParsePassengerCategory(input.PassengerCategory)
	if err != nil {
		return nil, err
	}
	date, err := s.parseTravelDate(input.TravelDate)
	if err != nil {
		return nil, err
	}
	passengers, err := s.passengerCount(input.Passengers)
	if err != nil {
		return nil, err
	}
	origin, destination := domain.NormalizeStation(input.Origin), domain.NormalizeStation(input.Destination)
	if origin != "" && origin == destination {
		return nil, fmt.Errorf("%w: origin and destination must differ", domain.ErrValidation)
	}

	return &domain.Reservation{
		CustomerID:        input.CustomerID,
		TrainID:           input.TrainID,
		TravelerName:      input.TravelerName,
		TravelClass:       class,
		PassengerCategory: category,
		TravelDate:        date,
		BoardingStation:   origin,
		AlightingStation:  destination,
		Status:            domain.ReservationConfirmed,
		PassengerCount:    passengers,
	}, nil
}

func (s *BookingService) parseTravelDate(raw string) (time.Time, error) {
	date, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	if domain.DaysBetween(s.now(), date) < 0 {
		return time.Time{}, fmt.Errorf("%w: travel date %s is in the past", domain.ErrValidation, raw)
	}
	return date, nil
}

func (s *BookingService) passengerCount(n int) (int, error) {
	if n == 0 {
		return 1, nil
	}
	if n > s.settings.MaxPassengers {
		return 0, fmt.Errorf("%w: at most %d passengers per reservation", domain.ErrValidation, s.settings.MaxPassengers)
	}
	return n, nil
}

func (s *BookingService) GetReservation(ctx context.Context, code string) (*domain.Reservation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !confirmation.IsValid(code) {
		return nil, fmt.Errorf("%w: malformed confirmation code %q", domain.ErrValidation, code)
	}
	return s.reservations.GetByCode(ctx, code)
}

// CancelReservation returns the seats to the train and records the fee split.
// Only confirmed reservations travelling after today can be cancelled.
func (s *BookingService) CancelReservation(ctx context.Context, code string) (*domain.Reservation, error) {
	current, err := s.GetReservation(ctx, code)
	if err != nil {
		return nil, err
	}
	log := s.log.WithFields(logrus.Fields{"code": current.ConfirmationCode, "train_id": current.TrainID})

	unlock, err := s.lockTrain(ctx, current.TrainID)
	if err != nil {
		return nil, err
	}
	defer unlock()
	ctx = context.WithoutCancel(ctx)

	// Re-read under the lock; a concurrent cancel may have won.
	res, err := s.reservations.GetByCode(ctx, current.ConfirmationCode)
	if err != nil {
		return nil, err
	}
	if err := res.Cancel(s.now()); err != nil {
		return nil, err
	}

	if err := s.trains.ReleaseSeats(ctx, res.TrainID, res.PassengerCount); err != nil {
		return nil, err
	}
	if err := s.reservations.MarkCancelled(ctx, res); err != nil {
		if reErr := s.trains.ReserveSeats(ctx, res.TrainID, res.PassengerCount); reErr != nil {
			log.WithError(reErr).WithField("cause", err.Error()).Error("failed to take seats back after cancellation failure")
			return nil, errors.Join(err, reErr)
		}
		return nil, err
	}

	if train, err := s.trains.GetByID(ctx, res.TrainID); err == nil {
		s.invalidate(ctx, train)
	}
	s.publish(ctx, events.ReservationCancelled, res)
	log.WithFields(logrus.Fields{"fee_cents": res.FeeCents, "refund_cents": res.RefundCents}).Info("reservation cancelled")
	return res, nil
}

// MarkRefunded settles the refund of a cancelled reservation.
func (s *BookingService) MarkRefunded(ctx context.Context, code string) (*domain.Reservation, error) {
	res, err := s.reservations.UpdateStatus(ctx, code, domain.ReservationCancelled, domain.ReservationRefunded)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.ReservationRefunded, res)
	s.log.WithFields(logrus.Fields{"code": code, "refund_cents": res.RefundCents}).Info("refund issued")
	return res, nil
}

// QuoteFare prices a trip against the train's current occupancy without booking it.
func (s *BookingService) QuoteFare(ctx context.Context, input QuoteInput) (*Quote, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	class, err := domain.ParseTravelClass(input.TravelClass)
	if err != nil {
		return nil, err
	}
	category, err := domain.ParsePassengerCategory(input.PassengerCategory)
	if err != nil {
		return nil, err
	}
	date, err := s.parseTravelDate(input.TravelDate)
	if err != nil {
		return nil, err
	}
	passengers, err := s.passengerCount(input.Passengers)
	if err != nil {
		return nil, err
	}

	train, err := s.trains.GetByID(ctx, input.TrainID)
	if err != nil {
		return nil, err
	}

	perPassenger := s.fares.DynamicFare(class, train.Origin, train.Destination, date, train.SeatsRemaining, train.TotalCapacity)
	perPassenger = fare.ApplyPassengerDiscount(perPassenger, category)
	return &Quote{
		TrainID:           train.ID,
		TravelClass:       class,
		PassengerCategory: category,
		TravelDate:        date.Format(domain.DateLayout),
		Passengers:        passengers,
		BaseFareCents:     s.fares.BaseFare(class, train.Origin, train.Destination),
		SurgeFactorBP:     fare.SurgeFactor(train.SeatsRemaining, train.TotalCapacity),
		TimeFactorBP:      fare.TimeFactor(domain.DaysBetween(s.now(), date)),
		FarePerPassenger:  perPassenger,
		TotalCents:        perPassenger * int64(passengers),
		OccupancyRate:     train.OccupancyRate(),
	}, nil
}

func (s *BookingService) ListCustomerReservations(ctx context.Context, customerID int64) ([]domain.Reservation, error) {
	return s.reservations.ListByCustomer(ctx, customerID)
}

func (s *BookingService) Stats(ctx context.Context) (domain.ReservationStats, error) {
	return s.reservations.Stats(ctx)
}

// lockTrain takes the in-process lock and, when Redis is configured, the
// shared lock. Both are waited on for at most LockWait.
func (s *BookingService) lockTrain(ctx context.Context, trainID int64) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.settings.LockWait())
	defer cancel()

	unlock, err := s.locks.acquire(waitCtx, trainID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: train %d", domain.ErrTrainBusy, trainID)
	}
	if s.cache == nil {
		return unlock, nil
	}

	for {
		token, ok, err := s.cache.AcquireTrainLock(waitCtx, trainID, s.settings.LockTTL())
		if ok {
			return func() {
				if err := s.cache.ReleaseTrainLock(context.WithoutCancel(ctx), trainID, token); err != nil {
					s.log.WithError(err).WithField("train_id", trainID).Warn("failed to release train lock")
				}
				unlock()
			}, nil
		}
		if err != nil && waitCtx.Err() == nil {
			unlock()
			return nil, fmt.Errorf("acquire train lock: %w", err)
		}

		select {
		case <-waitCtx.Done():
			unlock()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: train %d", domain.ErrTrainBusy, trainID)
		case <-time.After(25 * time.Millisecond):
		}
	}
}

func (s *BookingService) invalidate(ctx context.Context, train *domain.Train) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRoute(ctx, train.Origin, train.Destination); err != nil {
		s.log.WithError(err).WithField("train_id", train.ID).Warn("failed to invalidate train cache")
	}
}

// retryingPublisher is implemented by publishers with their own backoff.
type retryingPublisher interface {
	PublishWithRetry(ctx context.Context, event events.ReservationEvent, maxRetries int) error
}

func (s *BookingService) publish(ctx context.Context, t events.Type, res *domain.Reservation) {
	event := events.NewReservationEvent(t, res, s.now())
	var err error
	if rp, ok := s.publisher.(retryingPublisher); ok {
		err = rp.PublishWithRetry(ctx, event, s.settings.PublishRetries)
	} else {
		err = s.publisher.Publish(ctx, event)
	}
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"code": res.ConfirmationCode, "type": t}).Warn("failed to publish reservation event")
	}
}

var _ BookingUseCase = (*BookingService)(nil)
