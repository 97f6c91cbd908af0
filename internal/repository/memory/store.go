// Package memory keeps trains, customers and reservations in process memory.
// It backs the "memory" storage driver and the service level tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/repository"
)

type Store struct {
	mu           sync.RWMutex
	trains       map[int64]*domain.Train
	customers    map[int64]*domain.Customer
	reservations map[string]*domain.Reservation
	nextCustomer int64
	now          func() time.Time
}

// NewStore returns a store loaded with the given trains.
func NewStore(trains []domain.Train) *Store {
	s := &Store{
		trains:       make(map[int64]*domain.Train, len(trains)),
		customers:    make(map[int64]*domain.Customer),
		reservations: make(map[string]*domain.Reservation),
		now:          time.Now,
	}
	for i := range trains {
		t := trains[i]
		s.trains[t.ID] = &t
	}
	return s
}

// NewSeededStore returns a store loaded with the default timetable.
func NewSeededStore() *Store {
	return NewStore(repository.SeedTrains())
}

func (s *Store) Trains() repository.TrainRepository             { return trainRepo{s} }
func (s *Store) Reservations() repository.ReservationRepository { return reservationRepo{s} }
func (s *Store) Customers() repository.CustomerRepository       { return customerRepo{s} }

type trainRepo struct{ s *Store }

func (r trainRepo) List(_ context.Context) ([]domain.Train, error) {
	return r.s.filterTrains(func(*domain.Train) bool { return true }), nil
}

func (r trainRepo) Search(_ context.Context, origin, destination string) ([]domain.Train, error) {
	origin, destination = domain.NormalizeStation(origin), domain.NormalizeStation(destination)
	return r.s.filterTrains(func(t *domain.Train) bool {
		return t.Origin == origin && t.Destination == destination && t.HasAvailableSeats(1)
	}), nil
}

func (s *Store) filterTrains(keep func(*domain.Train) bool) []domain.Train {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Train, 0, len(s.trains))
	for _, t := range s.trains {
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartureTime != out[j].DepartureTime {
			return out[i].DepartureTime < out[j].DepartureTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r trainRepo) GetByID(_ context.Context, id int64) (*domain.Train, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.trains[id]
	if !ok {
		return nil, domain.ErrTrainNotFound
	}
	cp := *t
	return &cp, nil
}

func (r trainRepo) ReserveSeats(_ context.Context, trainID int64, seats int) error {
	if seats <= 0 {
		return fmt.Errorf("%w: seats to reserve must be positive", domain.ErrValidation)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.trains[trainID]
	if !ok {
		return domain.ErrTrainNotFound
	}
	if !t.ReserveSeats(seats) {
		return domain.ErrInsufficientSeats
	}
	return nil
}

func (r trainRepo) ReleaseSeats(_ context.Context, trainID int64, seats int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.trains[trainID]
	if !ok {
		return domain.ErrTrainNotFound
	}
	t.ReleaseSeats(seats)
	return nil
}

type reservationRepo struct{ s *Store }

func (r reservationRepo) Create(_ context.Context, res *domain.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, dup := r.s.reservations[res.ConfirmationCode]; dup {
		return domain.ErrDuplicateConfirmationCode
	}
	if res.BookedAt.IsZero() {
		res.BookedAt = r.s.now()
	}
	cp := *res
	r.s.reservations[res.ConfirmationCode] = &cp
	return nil
}

func (r reservationRepo) GetByCode(_ context.Context, code string) (*domain.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res, ok := r.s.reservations[code]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (r reservationRepo) ListByCustomer(_ context.Context, customerID int64) ([]domain.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Reservation, 0)
	for _, res := range r.s.reservations {
		if res.CustomerID == customerID {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.After(out[j].BookedAt) })
	return out, nil
}

func (r reservationRepo) MarkCancelled(_ context.Context, res *domain.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.reservations[res.ConfirmationCode]
	if !ok {
		return domain.ErrReservationNotFound
	}
	if stored.Status != domain.ReservationConfirmed {
		return domain.ErrNotCancellable
	}
	stored.Status = domain.ReservationCancelled
	stored.CancelledAt = res.CancelledAt
	stored.FeeCents = res.FeeCents
	stored.RefundCents = res.RefundCents
	return nil
}

func (r reservationRepo) UpdateStatus(_ context.Context, code string, from, to domain.ReservationStatus) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.reservations[code]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	if stored.Status != from {
		return nil, fmt.Errorf("%w: %s is not %s", domain.ErrInvalidStatusTransition, code, from)
	}
	stored.Status = to
	cp := *stored
	return &cp, nil
}

func (r reservationRepo) Stats(_ context.Context) (domain.ReservationStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var st domain.ReservationStats
	for _, res := range r.s.reservations {
		st.Total++
		switch res.Status {
		case domain.ReservationConfirmed:
			st.Confirmed++
			st.RevenueCents += res.PriceCents
		case domain.ReservationCancelled:
			st.Cancelled++
		case domain.ReservationRefunded:
			st.Refunded++
			st.RefundedCents += res.RefundCents
		}
	}
	return st, nil
}

func (r reservationRepo) TakenSeats(_ context.Context, trainID int64) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	labels := make([]string, 0)
	for _, res := range r.s.reservations {
		if res.TrainID == trainID && res.IsActive() && res.SeatNumber != "" {
			labels = append(labels, res.SeatNumber)
		}
	}
	return labels, nil
}

type customerRepo struct{ s *Store }

func (r customerRepo) Create(_ context.Context, c *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.customers {
		if existing.LoginID == c.LoginID || existing.Email == c.Email {
			return domain.ErrCustomerExists
		}
	}
	r.s.nextCustomer++
	c.ID = r.s.nextCustomer
	if c.RegisteredAt.IsZero() {
		c.RegisteredAt = r.s.now()
	}
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r customerRepo) GetByLoginID(_ context.Context, loginID string) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.customers {
		if c.LoginID == loginID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

func (r customerRepo) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	cp := *c
	return &cp, nil
}

func (r customerRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.customers {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}
