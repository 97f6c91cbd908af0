package notify

import (
	"context"
	"fmt"

	"github.com/Domenick1991/railbooking/internal/events"
	"github.com/Domenick1991/railbooking/internal/fare"
	"github.com/sirupsen/logrus"
)

type Sender struct {
	log logrus.FieldLogger
}

func NewSender(log logrus.FieldLogger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(_ context.Context, event events.ReservationEvent) error {
	s.log.WithFields(logrus.Fields{
		"customer_id": event.CustomerID,
		"code":        event.ConfirmationCode,
		"type":        event.Type,
	}).Info(Message(event))
	return nil
}

// Message renders the traveler facing text for an event.
func Message(event events.ReservationEvent) string {
	switch event.Type {
	case events.ReservationCreated:
		return fmt.Sprintf("Dear %s, reservation %s on train %d for %s is confirmed. Fare %s.",
			event.TravelerName, event.ConfirmationCode, event.TrainID, event.TravelDate, fare.Format(event.PriceCents))
	case events.ReservationCancelled:
		return fmt.Sprintf("Dear %s, reservation %s has been cancelled. Refund of %s is being processed.",
			event.TravelerName, event.ConfirmationCode, fare.Format(event.RefundCents))
	case events.ReservationRefunded:
		return fmt.Sprintf("Dear %s, refund of %s for reservation %s has been issued.",
			event.TravelerName, fare.Format(event.RefundCents), event.ConfirmationCode)
	default:
		return fmt.Sprintf("Reservation %s updated: %s", event.ConfirmationCode, event.Type)
	}
}
