package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/events"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRefunder struct {
	mock.Mock
}

func (m *MockRefunder) MarkRefunded(ctx context.Context, code string) (*domain.Reservation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockRefunder) Stats(ctx context.Context) (domain.ReservationStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ReservationStats), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, event events.ReservationEvent) error {
	return m.Called(ctx, event).Error(0)
}

func cancelledEvent() events.ReservationEvent {
	return events.ReservationEvent{ID: "evt-1", Type: events.ReservationCancelled, ConfirmationCode: "AB1234CD", RefundCents: 31587}
}

func TestHandle_CancelledSettlesRefund(t *testing.T) {
	ctx := context.Background()
	refunder := new(MockRefunder)
	notifier := new(MockNotifier)
	log, _ := test.NewNullLogger()
	event := cancelledEvent()

	refunder.On("MarkRefunded", ctx, "AB1234CD").
		Return(&domain.Reservation{ConfirmationCode: "AB1234CD", Status: domain.ReservationRefunded, RefundCents: 31587}, nil)
	notifier.On("Send", ctx, event).Return(nil)

	require.NoError(t, New(refunder, notifier, log).Handle(ctx, event))
	refunder.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestHandle_SkipsSettledRefund(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"already refunded", fmt.Errorf("%w: REFUNDED -> REFUNDED", domain.ErrInvalidStatusTransition)},
		{"missing reservation", domain.ErrReservationNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			refunder := new(MockRefunder)
			notifier := new(MockNotifier)
			log, _ := test.NewNullLogger()

			refunder.On("MarkRefunded", ctx, "AB1234CD").Return(nil, tt.err)

			require.NoError(t, New(refunder, notifier, log).Handle(ctx, cancelledEvent()))
			notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestHandle_StorageFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	refunder := new(MockRefunder)
	notifier := new(MockNotifier)
	log, _ := test.NewNullLogger()
	boom := errors.New("connection reset")

	refunder.On("MarkRefunded", ctx, "AB1234CD").Return(nil, boom)

	err := New(refunder, notifier, log).Handle(ctx, cancelledEvent())
	assert.ErrorIs(t, err, boom)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandle_OtherEventsOnlyNotify(t *testing.T) {
	ctx := context.Background()
	refunder := new(MockRefunder)
	notifier := new(MockNotifier)
	log, hook := test.NewNullLogger()
	event := events.ReservationEvent{ID: "evt-2", Type: events.ReservationCreated, ConfirmationCode: "AB1234CD"}

	notifier.On("Send", ctx, event).Return(errors.New("smtp down"))

	require.NoError(t, New(refunder, notifier, log).Handle(ctx, event))
	refunder.AssertNotCalled(t, "MarkRefunded", mock.Anything, mock.Anything)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "notification failed", hook.LastEntry().Message)
}

func TestReportStats(t *testing.T) {
	ctx := context.Background()
	refunder := new(MockRefunder)
	log, hook := test.NewNullLogger()

	refunder.On("Stats", ctx).Return(domain.ReservationStats{Total: 3, Confirmed: 2, Cancelled: 1, RevenueCents: 66500}, nil)

	New(refunder, new(MockNotifier), log).ReportStats(ctx)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "reservation stats", entry.Message)
	assert.Equal(t, 3, entry.Data["total"])
	assert.Equal(t, int64(66500), entry.Data["revenue_cents"])
}

func TestReportStats_Error(t *testing.T) {
	ctx := context.Background()
	refunder := new(MockRefunder)
	log, hook := test.NewNullLogger()

	refunder.On("Stats", ctx).Return(domain.ReservationStats{}, errors.New("db down"))

	New(refunder, new(MockNotifier), log).ReportStats(ctx)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestRunStats_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	refunder := new(MockRefunder)
	log, _ := test.NewNullLogger()
	refunder.On("Stats", mock.Anything).Return(domain.ReservationStats{}, nil)

	done := make(chan struct{})
	go func() {
		New(refunder, new(MockNotifier), log).RunStats(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunStats did not stop after cancel")
	}
	refunder.AssertCalled(t, "Stats", mock.Anything)
}
