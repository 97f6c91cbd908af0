package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

type TrainRepository interface {
	List(ctx context.Context) ([]domain.Train, error)
	Search(ctx context.Context, origin, destination string) ([]domain.Train, error)
	GetByID(ctx context.Context, id int64) (*domain.Train, error)
	ReserveSeats(ctx context.Context, trainID int64, seats int) error
	ReleaseSeats(ctx context.Context, trainID int64, seats int) error
}

type PGTrainRepository struct {
	db DB
}

func NewTrainRepository(db DB) TrainRepository {
	return &PGTrainRepository{db: db}
}

const trainColumns = `id, name, origin, destination, to_char(departure_time, 'HH24:MI'), to_char(arrival_time, 'HH24:MI'), total_capacity, seats_remaining, train_type, is_operational`

func scanTrain(row pgx.Row) (*domain.Train, error) {
	var t domain.Train
	if err := row.Scan(&t.ID, &t.Name, &t.Origin, &t.Destination, &t.DepartureTime, &t.ArrivalTime, &t.TotalCapacity, &t.SeatsRemaining, &t.TrainType, &t.Operational); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGTrainRepository) List(ctx context.Context) ([]domain.Train, error) {
	return r.query(ctx, `SELECT `+trainColumns+` FROM trains ORDER BY departure_time, id`)
}

func (r *PGTrainRepository) Search(ctx context.Context, origin, destination string) ([]domain.Train, error) {
	return r.query(ctx, `SELECT `+trainColumns+` FROM trains
		WHERE origin=$1 AND destination=$2 AND seats_remaining > 0 AND is_operational
		ORDER BY departure_time, id`, domain.NormalizeStation(origin), domain.NormalizeStation(destination))
}

func (r *PGTrainRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Train, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trains := make([]domain.Train, 0)
	for rows.Next() {
		t, err := scanTrain(rows)
		if err != nil {
			return nil, err
		}
		trains = append(trains, *t)
	}
	return trains, rows.Err()
}

func (r *PGTrainRepository) GetByID(ctx context.Context, id int64) (*domain.Train, error) {
	t, err := scanTrain(r.db.QueryRow(ctx, `SELECT `+trainColumns+` FROM trains WHERE id=$1`, id))
	if err != nil {
		return nil, mapNoRows(err, domain.ErrTrainNotFound)
	}
	return t, nil
}

// ReserveSeats decrements only when enough seats remain, so concurrent callers cannot oversell.
func (r *PGTrainRepository) ReserveSeats(ctx context.Context, trainID int64, seats int) error {
	if seats <= 0 {
		return fmt.Errorf("%w: seats to reserve must be positive", domain.ErrValidation)
	}
	res, err := r.db.Exec(ctx, `UPDATE trains SET seats_remaining = seats_remaining - $2, updated_at = now()
		WHERE id=$1 AND is_operational AND seats_remaining >= $2`, trainID, seats)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, trainID); err != nil {
			return err
		}
		return domain.ErrInsufficientSeats
	}
	return nil
}

// ReleaseSeats clamps at total capacity.
func (r *PGTrainRepository) ReleaseSeats(ctx context.Context, trainID int64, seats int) error {
	if seats <= 0 {
		return nil
	}
	res, err := r.db.Exec(ctx, `UPDATE trains SET seats_remaining = LEAST(seats_remaining + $2, total_capacity), updated_at = now()
		WHERE id=$1`, trainID, seats)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrTrainNotFound
	}
	return nil
}

var _ TrainRepository = (*PGTrainRepository)(nil)
