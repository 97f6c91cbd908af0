// Package worker processes reservation events off the broker and reports
// booking statistics.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/events"
	"github.com/sirupsen/logrus"
)

type Refunder interface {
	MarkRefunded(ctx context.Context, code string) (*domain.Reservation, error)
	Stats(ctx context.Context) (domain.ReservationStats, error)
}

type Notifier interface {
	Send(ctx context.Context, event events.ReservationEvent) error
}

type Worker struct {
	bookings Refunder
	notifier Notifier
	log      logrus.FieldLogger
}

func New(bookings Refunder, notifier Notifier, log logrus.FieldLogger) *Worker {
	return &Worker{bookings: bookings, notifier: notifier, log: log}
}

// Handle settles the refund of a cancelled reservation, then notifies the
// customer of the event. The settled refund is announced by its own
// reservation_refunded event. Only storage failures are returned, so
// redelivered or stale events never stop the consumer.
func (w *Worker) Handle(ctx context.Context, event events.ReservationEvent) error {
	log := w.log.WithFields(logrus.Fields{
		"event_id":          event.ID,
		"event_type":        event.Type,
		"confirmation_code": event.ConfirmationCode,
	})

	if event.Type == events.ReservationCancelled {
		res, err := w.bookings.MarkRefunded(ctx, event.ConfirmationCode)
		switch {
		case errors.Is(err, domain.ErrInvalidStatusTransition), errors.Is(err, domain.ErrReservationNotFound):
			log.WithError(err).Info("refund already settled or reservation gone, skipping")
			return nil
		case err != nil:
			return err
		}
		log.WithField("refund_cents", res.RefundCents).Info("refund settled")
	}

	if err := w.notifier.Send(ctx, event); err != nil {
		log.WithError(err).Warn("notification failed")
	}
	return nil
}

// RunStats logs reservation statistics every interval until ctx is done.
func (w *Worker) RunStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ReportStats(ctx)
		}
	}
}

func (w *Worker) ReportStats(ctx context.Context) {
	stats, err := w.bookings.Stats(ctx)
	if err != nil {
		w.log.WithError(err).Error("load reservation stats")
		return
	}
	w.log.WithFields(logrus.Fields{
		"total":          stats.Total,
		"confirmed":      stats.Confirmed,
		"cancelled":      stats.Cancelled,
		"refunded":       stats.Refunded,
		"revenue_cents":  stats.RevenueCents,
		"refunded_cents": stats.RefundedCents,
	}).Info("reservation stats")
}
