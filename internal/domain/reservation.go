package domain

import (
	"fmt"
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationConfirmed   ReservationStatus = "CONFIRMED"
	ReservationCancelled   ReservationStatus = "CANCELLED"
	ReservationWaitingList ReservationStatus = "WAITING_LIST"
	ReservationRefunded    ReservationStatus = "REFUNDED"
)

func ParseReservationStatus(s string) (ReservationStatus, error) {
	st := ReservationStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case ReservationConfirmed, ReservationCancelled, ReservationWaitingList, ReservationRefunded:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown reservation status %q", ErrValidation, s)
}

// Reservation is never deleted; cancellation and refund only move Status forward.
type Reservation struct {
	ConfirmationCode  string            `json:"confirmation_code"`
	CustomerID        int64             `json:"customer_id"`
	TrainID           int64             `json:"train_id"`
	TravelerName      string            `json:"traveler_name"`
	TravelClass       TravelClass       `json:"travel_class"`
	PassengerCategory PassengerCategory `json:"passenger_category"`
	TravelDate        time.Time         `json:"travel_date"`
	BoardingStation   string            `json:"boarding_station"`
	AlightingStation  string            `json:"alighting_station"`
	Status            ReservationStatus `json:"status"`
	PriceCents        int64             `json:"price_cents"`
	PassengerCount    int               `json:"passenger_count"`
	SeatNumber        string            `json:"seat_number,omitempty"`
	BookedAt          time.Time         `json:"booked_at"`
	CancelledAt       *time.Time        `json:"cancelled_at,omitempty"`
	FeeCents          int64             `json:"fee_cents"`
	RefundCents       int64             `json:"refund_cents"`
}

func (r *Reservation) IsActive() bool {
	return r.Status == ReservationConfirmed || r.Status == ReservationWaitingList
}

// CanBeCancelled reports whether the reservation is confirmed and travel is after today.
func (r *Reservation) CanBeCancelled(now time.Time) bool {
	return r.Status == ReservationConfirmed && DaysBetween(now, r.TravelDate) > 0
}

// CancellationFee follows the tiered schedule. A reservation that cannot be
// cancelled forfeits the whole price.
func (r *Reservation) CancellationFee(now time.Time) int64 {
	if !r.CanBeCancelled(now) {
		return r.PriceCents
	}
	return PercentOf(r.PriceCents, CancellationFeeBasisPoints(DaysBetween(now, r.TravelDate)))
}

func (r *Reservation) RefundAmount(now time.Time) int64 {
	return r.PriceCents - r.CancellationFee(now)
}

// Cancel moves a CONFIRMED reservation to CANCELLED and records the fee split.
func (r *Reservation) Cancel(now time.Time) error {
	if !r.CanBeCancelled(now) {
		return fmt.Errorf("%w: %s is %s for %s", ErrNotCancellable, r.ConfirmationCode, r.Status, r.TravelDate.Format(DateLayout))
	}
	r.FeeCents = r.CancellationFee(now)
	r.RefundCents = r.PriceCents - r.FeeCents
	r.Status = ReservationCancelled
	at := now
	r.CancelledAt = &at
	return nil
}

func (r *Reservation) MarkRefunded() error {
	if r.Status != ReservationCancelled {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, r.Status, ReservationRefunded)
	}
	r.Status = ReservationRefunded
	return nil
}

// CancellationFeeBasisPoints: >=7 days 5%, >=3 days 10%, >=1 day 25%, same day 50%.
func CancellationFeeBasisPoints(daysUntilTravel int) int64 {
	switch {
	case daysUntilTravel >= 7:
		return 500
	case daysUntilTravel >= 3:
		return 1000
	case daysUntilTravel >= 1:
		return 2500
	default:
		return 5000
	}
}

// PercentOf returns amount*bp/10000 rounded half-up.
func PercentOf(amount, bp int64) int64 {
	return (amount*bp + 5000) / 10000
}

type ReservationStats struct {
	Total         int   `json:"total"`
	Confirmed     int   `json:"confirmed"`
	Cancelled     int   `json:"cancelled"`
	Refunded      int   `json:"refunded"`
	RevenueCents  int64 `json:"revenue_cents"`
	RefundedCents int64 `json:"refunded_cents"`
}
