package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByCode(ctx context.Context, code string) (*domain.Reservation, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Reservation, error)
	// MarkCancelled persists a reservation already moved to CANCELLED, provided the
	// stored row is still CONFIRMED.
	MarkCancelled(ctx context.Context, reservation *domain.Reservation) error
	UpdateStatus(ctx context.Context, code string, from, to domain.ReservationStatus) (*domain.Reservation, error)
	Stats(ctx context.Context) (domain.ReservationStats, error)
	// TakenSeats lists the seat labels held by active reservations on a train.
	TakenSeats(ctx context.Context, trainID int64) ([]string, error)
}

type PGReservationRepository struct {
	db DB
}

func NewReservationRepository(db DB) ReservationRepository {
	return &PGReservationRepository{db: db}
}

const reservationColumns = `confirmation_code, customer_id, train_id, traveler_name, travel_class, passenger_category, travel_date,
	boarding_station, alighting_station, status, price_cents, passenger_count, seat_number, booked_at, cancelled_at, fee_cents, refund_cents`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var (
		r      domain.Reservation
		status string
	)
	if err := row.Scan(&r.ConfirmationCode, &r.CustomerID, &r.TrainID, &r.TravelerName, &r.TravelClass, &r.PassengerCategory, &r.TravelDate,
		&r.BoardingStation, &r.AlightingStation, &status, &r.PriceCents, &r.PassengerCount, &r.SeatNumber, &r.BookedAt, &r.CancelledAt, &r.FeeCents, &r.RefundCents); err != nil {
		return nil, err
	}
	st, err := domain.ParseReservationStatus(status)
	if err != nil {
		return nil, fmt.Errorf("reservation %s: %w", r.ConfirmationCode, err)
	}
	r.Status = st
	return &r, nil
}

func (r *PGReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	err := r.db.QueryRow(ctx, `INSERT INTO reservations (confirmation_code, customer_id, train_id, traveler_name, travel_class, passenger_category,
			travel_date, boarding_station, alighting_station, status, price_cents, passenger_count, seat_number, booked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING booked_at`,
		res.ConfirmationCode, res.CustomerID, res.TrainID, res.TravelerName, string(res.TravelClass), string(res.PassengerCategory),
		res.TravelDate, res.BoardingStation, res.AlightingStation, string(res.Status), res.PriceCents, res.PassengerCount, res.SeatNumber, res.BookedAt).
		Scan(&res.BookedAt)
	return mapUniqueViolation(err, domain.ErrDuplicateConfirmationCode)
}

func (r *PGReservationRepository) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE confirmation_code=$1`, code))
	if err != nil {
		return nil, mapNoRows(err, domain.ErrReservationNotFound)
	}
	return res, nil
}

func (r *PGReservationRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE customer_id=$1 ORDER BY booked_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

func (r *PGReservationRepository) MarkCancelled(ctx context.Context, res *domain.Reservation) error {
	cmd, err := r.db.Exec(ctx, `UPDATE reservations SET status=$2, cancelled_at=$3, fee_cents=$4, refund_cents=$5
		WHERE confirmation_code=$1 AND status=$6`,
		res.ConfirmationCode, string(domain.ReservationCancelled), res.CancelledAt, res.FeeCents, res.RefundCents, string(domain.ReservationConfirmed))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotCancellable
	}
	return nil
}

func (r *PGReservationRepository) UpdateStatus(ctx context.Context, code string, from, to domain.ReservationStatus) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, `UPDATE reservations SET status=$3 WHERE confirmation_code=$1 AND status=$2
		RETURNING `+reservationColumns, code, string(from), string(to)))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if _, getErr := r.GetByCode(ctx, code); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("%w: %s is not %s", domain.ErrInvalidStatusTransition, code, from)
	}
	return res, nil
}

func (r *PGReservationRepository) Stats(ctx context.Context) (domain.ReservationStats, error) {
	var s domain.ReservationStats
	err := r.db.QueryRow(ctx, `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status='CONFIRMED'),
			COUNT(*) FILTER (WHERE status='CANCELLED'),
			COUNT(*) FILTER (WHERE status='REFUNDED'),
			COALESCE(SUM(price_cents) FILTER (WHERE status='CONFIRMED'), 0),
			COALESCE(SUM(refund_cents) FILTER (WHERE status='REFUNDED'), 0)
		FROM reservations`).
		Scan(&s.Total, &s.Confirmed, &s.Cancelled, &s.Refunded, &s.RevenueCents, &s.RefundedCents)
	return s, err
}

func (r *PGReservationRepository) TakenSeats(ctx context.Context, trainID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT seat_number FROM reservations
		WHERE train_id=$1 AND status IN ($2, $3) AND seat_number <> ''`,
		trainID, string(domain.ReservationConfirmed), string(domain.ReservationWaitingList))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := make([]string, 0)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
