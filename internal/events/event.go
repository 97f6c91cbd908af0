// Package events describes reservation lifecycle messages shared by the
// publishers and the worker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/google/uuid"
)

type Type string

const (
	ReservationCreated   Type = "reservation_created"
	ReservationCancelled Type = "reservation_cancelled"
	ReservationRefunded  Type = "reservation_refunded"
)

type ReservationEvent struct {
	ID               string                   `json:"id"`
	Type             Type                     `json:"type"`
	ConfirmationCode string                   `json:"confirmation_code"`
	TrainID          int64                    `json:"train_id"`
	CustomerID       int64                    `json:"customer_id"`
	TravelerName     string                   `json:"traveler_name"`
	TravelClass      domain.TravelClass       `json:"travel_class"`
	TravelDate       string                   `json:"travel_date"`
	PassengerCount   int                      `json:"passenger_count"`
	PriceCents       int64                    `json:"price_cents"`
	RefundCents      int64                    `json:"refund_cents"`
	Status           domain.ReservationStatus `json:"status"`
	OccurredAt       time.Time                `json:"occurred_at"`
}

func NewReservationEvent(t Type, r *domain.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		ID:               uuid.NewString(),
		Type:             t,
		ConfirmationCode: r.ConfirmationCode,
		TrainID:          r.TrainID,
		CustomerID:       r.CustomerID,
		TravelerName:     r.TravelerName,
		TravelClass:      r.TravelClass,
		TravelDate:       r.TravelDate.Format(domain.DateLayout),
		PassengerCount:   r.PassengerCount,
		PriceCents:       r.PriceCents,
		RefundCents:      r.RefundCents,
		Status:           r.Status,
		OccurredAt:       at.UTC(),
	}
}

func (e ReservationEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func Decode(data []byte) (ReservationEvent, error) {
	var e ReservationEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ReservationEvent{}, fmt.Errorf("decode reservation event: %w", err)
	}
	if e.ConfirmationCode == "" || e.Type == "" {
		return ReservationEvent{}, fmt.Errorf("decode reservation event: missing type or confirmation code")
	}
	return e, nil
}

type Publisher interface {
	Publish(ctx context.Context, event ReservationEvent) error
	Close() error
}

type Handler func(ctx context.Context, event ReservationEvent) error

type Subscriber interface {
	Consume(ctx context.Context, handler Handler) error
	Close() error
}

// NopPublisher drops every event. It backs the "none" events driver.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ReservationEvent) error { return nil }
func (NopPublisher) Close() error                                    { return nil }
