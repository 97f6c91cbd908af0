package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	reserveSQL  = regexp.QuoteMeta(`UPDATE trains SET seats_remaining = seats_remaining - $2`)
	releaseSQL  = regexp.QuoteMeta(`UPDATE trains SET seats_remaining = LEAST(seats_remaining + $2, total_capacity)`)
	trainSQL    = regexp.QuoteMeta(`FROM trains WHERE id=$1`)
	cancelSQL   = regexp.QuoteMeta(`UPDATE reservations SET status=$2, cancelled_at=$3, fee_cents=$4, refund_cents=$5`)
	statusSQL   = regexp.QuoteMeta(`UPDATE reservations SET status=$3 WHERE confirmation_code=$1 AND status=$2`)
	byCodeSQL   = regexp.QuoteMeta(`FROM reservations WHERE confirmation_code=$1`)
	takenSQL    = regexp.QuoteMeta(`SELECT seat_number FROM reservations`)
	trainCols   = []string{"id", "name", "origin", "destination", "departure", "arrival", "total_capacity", "seats_remaining", "train_type", "is_operational"}
	reserveCols = []string{"confirmation_code", "customer_id", "train_id", "traveler_name", "travel_class", "passenger_category", "travel_date",
		"boarding_station", "alighting_station", "status", "price_cents", "passenger_count", "seat_number", "booked_at", "cancelled_at", "fee_cents", "refund_cents"}
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, pool.ExpectationsWereMet())
		pool.Close()
	})
	return pool
}

func trainRow(seatsRemaining int) *pgxmock.Rows {
	return pgxmock.NewRows(trainCols).AddRow(int64(12345), "Rajdhani Express", "DELHI", "MUMBAI", "16:00", "08:00", 100, seatsRemaining, "SUPERFAST", true)
}

func reservationRow(status domain.ReservationStatus) *pgxmock.Rows {
	travel := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)
	booked := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	return pgxmock.NewRows(reserveCols).AddRow("AB1234CD", int64(7), int64(12345), "Asha", domain.SleeperClass, domain.PassengerAdult, travel,
		"DELHI", "MUMBAI", string(status), int64(35000), 1, "4", booked, (*time.Time)(nil), int64(0), int64(0))
}

func TestPGTrainRepository_ReserveSeats(t *testing.T) {
	ctx := context.Background()

	t.Run("conditional decrement", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectExec(reserveSQL).WithArgs(int64(12345), 2).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, NewTrainRepository(pool).ReserveSeats(ctx, 12345, 2))
	})

	t.Run("no row updated on an existing train is a shortfall", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectExec(reserveSQL).WithArgs(int64(12345), 5).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		pool.ExpectQuery(trainSQL).WithArgs(int64(12345)).WillReturnRows(trainRow(3))

		assert.ErrorIs(t, NewTrainRepository(pool).ReserveSeats(ctx, 12345, 5), domain.ErrInsufficientSeats)
	})

	t.Run("no row updated on an unknown train", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectExec(reserveSQL).WithArgs(int64(99999), 1).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		pool.ExpectQuery(trainSQL).WithArgs(int64(99999)).WillReturnError(pgx.ErrNoRows)

		assert.ErrorIs(t, NewTrainRepository(pool).ReserveSeats(ctx, 99999, 1), domain.ErrTrainNotFound)
	})

	t.Run("non-positive count never reaches the database", func(t *testing.T) {
		pool := newMockPool(t)

		assert.ErrorIs(t, NewTrainRepository(pool).ReserveSeats(ctx, 12345, 0), domain.ErrValidation)
	})
}

func TestPGTrainRepository_ReleaseSeats(t *testing.T) {
	ctx := context.Background()

	t.Run("clamped at capacity", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectExec(releaseSQL).WithArgs(int64(12345), 3).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, NewTrainRepository(pool).ReleaseSeats(ctx, 12345, 3))
	})

	t.Run("unknown train", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectExec(releaseSQL).WithArgs(int64(99999), 1).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, NewTrainRepository(pool).ReleaseSeats(ctx, 99999, 1), domain.ErrTrainNotFound)
	})

	t.Run("zero is a no-op", func(t *testing.T) {
		pool := newMockPool(t)

		assert.NoError(t, NewTrainRepository(pool).ReleaseSeats(ctx, 12345, 0))
	})
}

func TestPGTrainRepository_GetByID(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(trainSQL).WithArgs(int64(12345)).WillReturnRows(trainRow(42))

	train, err := NewTrainRepository(pool).GetByID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Equal(t, 42, train.SeatsRemaining)
	assert.Equal(t, "DELHI", train.Origin)
	assert.True(t, train.Operational)
}

func TestPGReservationRepository_MarkCancelled(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	res := &domain.Reservation{ConfirmationCode: "AB1234CD", CancelledAt: &now, FeeCents: 1750, RefundCents: 33250}

	t.Run("compare-and-set on CONFIRMED", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectExec(cancelSQL).
			WithArgs("AB1234CD", "CANCELLED", &now, int64(1750), int64(33250), "CONFIRMED").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, NewReservationRepository(pool).MarkCancelled(ctx, res))
	})

	t.Run("row no longer confirmed", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectExec(cancelSQL).
			WithArgs("AB1234CD", "CANCELLED", pgxmock.AnyArg(), int64(1750), int64(33250), "CONFIRMED").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, NewReservationRepository(pool).MarkCancelled(ctx, res), domain.ErrNotCancellable)
	})
}

func TestPGReservationRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("transition applied", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectQuery(statusSQL).WithArgs("AB1234CD", "CANCELLED", "REFUNDED").WillReturnRows(reservationRow(domain.ReservationRefunded))

		res, err := NewReservationRepository(pool).UpdateStatus(ctx, "AB1234CD", domain.ReservationCancelled, domain.ReservationRefunded)
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationRefunded, res.Status)
		assert.Equal(t, "4", res.SeatNumber)
	})

	t.Run("row in another status", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectQuery(statusSQL).WithArgs("AB1234CD", "CANCELLED", "REFUNDED").WillReturnError(pgx.ErrNoRows)
		pool.ExpectQuery(byCodeSQL).WithArgs("AB1234CD").WillReturnRows(reservationRow(domain.ReservationConfirmed))

		_, err := NewReservationRepository(pool).UpdateStatus(ctx, "AB1234CD", domain.ReservationCancelled, domain.ReservationRefunded)
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	})

	t.Run("unknown code", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectQuery(statusSQL).WithArgs("ZZ0000ZZ", "CANCELLED", "REFUNDED").WillReturnError(pgx.ErrNoRows)
		pool.ExpectQuery(byCodeSQL).WithArgs("ZZ0000ZZ").WillReturnError(pgx.ErrNoRows)

		_, err := NewReservationRepository(pool).UpdateStatus(ctx, "ZZ0000ZZ", domain.ReservationCancelled, domain.ReservationRefunded)
		assert.ErrorIs(t, err, domain.ErrReservationNotFound)
	})

	t.Run("unknown stored status", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectQuery(byCodeSQL).WithArgs("AB1234CD").WillReturnRows(reservationRow("BOGUS"))

		_, err := NewReservationRepository(pool).GetByCode(ctx, "AB1234CD")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestPGReservationRepository_TakenSeats(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(takenSQL).WithArgs(int64(12345), "CONFIRMED", "WAITING_LIST").
		WillReturnRows(pgxmock.NewRows([]string{"seat_number"}).AddRow("1-2").AddRow("7"))

	taken, err := NewReservationRepository(pool).TakenSeats(context.Background(), 12345)
	require.NoError(t, err)
	assert.Equal(t, []string{"1-2", "7"}, taken)
}
