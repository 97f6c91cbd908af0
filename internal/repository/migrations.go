package repository

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the tables when missing and loads the seed timetable.
// Existing trains keep their seat counters.
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	batch := &pgx.Batch{}
	for _, t := range SeedTrains() {
		batch.Queue(`INSERT INTO trains (id, name, origin, destination, departure_time, arrival_time, total_capacity, seats_remaining, train_type, is_operational)
			VALUES ($1, $2, $3, $4, $5::time, $6::time, $7, $8, $9, $10)
			ON CONFLICT (id) DO NOTHING`,
			t.ID, t.Name, t.Origin, t.Destination, t.DepartureTime, t.ArrivalTime, t.TotalCapacity, t.SeatsRemaining, t.TrainType, t.Operational)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed trains: %w", err)
	}
	return nil
}
