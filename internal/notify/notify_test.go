package notify

import (
	"context"
	"testing"

	"github.com/Domenick1991/railbooking/internal/events"
	"github.com/Domenick1991/railbooking/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	base := events.ReservationEvent{
		ConfirmationCode: "AB1234CD",
		TravelerName:     "Asha",
		TrainID:          12345,
		TravelDate:       "2026-03-11",
		PriceCents:       35000,
		RefundCents:      33250,
	}

	tests := []struct {
		typ  events.Type
		want string
	}{
		{events.ReservationCreated, "Dear Asha, reservation AB1234CD on train 12345 for 2026-03-11 is confirmed. Fare ₹350.00."},
		{events.ReservationCancelled, "Dear Asha, reservation AB1234CD has been cancelled. Refund of ₹332.50 is being processed."},
		{events.ReservationRefunded, "Dear Asha, refund of ₹332.50 for reservation AB1234CD has been issued."},
		{"other", "Reservation AB1234CD updated: other"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			ev := base
			ev.Type = tt.typ
			assert.Equal(t, tt.want, Message(ev))
		})
	}
}

func TestSender_Send(t *testing.T) {
	s := NewSender(logger.Discard())
	assert.NoError(t, s.Send(context.Background(), events.ReservationEvent{Type: events.ReservationCreated}))
}
