// Package storage persists workout records keyed by their numeric
// identifier and owns identifier allocation.
package storage

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/jmoiron/sqlx"

	"trainbot/internal/logger"
	"trainbot/internal/workout"

	"log/slog"
)

// createAttempts caps the random-id reservation loop. With the id space
// anywhere near healthy occupancy the loop ends on the first few draws;
// hitting the cap means the space is effectively exhausted.
const createAttempts = 1000

// Postgres stores records in the train_data table.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

type trainRow struct {
	ID       int    `db:"id"`
	Datetime string `db:"datetime"`
	Coords   string `db:"coords"`
	Dist     string `db:"dist"`
	Veloc    string `db:"veloc"`
	Comment  string `db:"comment"`
}

// Create reserves a free identifier and persists the record in a single
// insert-if-absent statement, so two concurrent creates can never claim
// the same id. The assigned id is written back into rec and returned.
func (s *Postgres) Create(ctx context.Context, rec *workout.Record) (int, error) {
	for attempt := 1; attempt <= createAttempts; attempt++ {
		id := rand.IntN(workout.MaxID) + 1
		res, err := s.db.ExecContext(ctx, `
            INSERT INTO train_data (id, datetime, coords, dist, veloc, comment)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (id) DO NOTHING`,
			id, rec.StoredTime(), rec.StoredCoords(), rec.StoredDist(), rec.StoredPace(), rec.Comment,
		)
		if err != nil {
			return 0, storeErr("insert record", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, storeErr("insert record", err)
		}
		if n == 1 {
			rec.ID = id
			logger.Debug(ctx, "db", "record.created",
				slog.Int("record_id", id),
				slog.Int("attempts", attempt),
			)
			return id, nil
		}
	}
	logger.Warn(ctx, "db", "record.create",
		slog.String("status", "fail"),
		slog.String("err_code", workout.ErrIDSpaceExhausted.Code()),
		slog.Int("attempts", createAttempts),
	)
	return 0, workout.ErrIDSpaceExhausted
}

// ListRecent returns at most n most-recent records by timestamp, ordered
// ascending for display.
func (s *Postgres) ListRecent(ctx context.Context, n int) ([]workout.Record, error) {
	if n <= 0 {
		n = workout.MaxID
	}
	rows, err := s.db.QueryxContext(ctx, `
        SELECT id, datetime, coords, dist, veloc, comment
        FROM (
            SELECT id, datetime, coords, dist, veloc, comment
            FROM train_data
            ORDER BY datetime DESC
            LIMIT $1
        ) q
        ORDER BY q.datetime ASC`, n)
	if err != nil {
		return nil, storeErr("list records", err)
	}
	defer rows.Close()

	var out []workout.Record
	for rows.Next() {
		var row trainRow
		if err := rows.StructScan(&row); err != nil {
			return nil, storeErr("scan record", err)
		}
		rec, err := workout.DecodeStored(row.ID, row.Datetime, row.Coords, row.Dist, row.Veloc, row.Comment)
		if err != nil {
			return nil, storeErr("decode record", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list records", err)
	}
	return out, nil
}

// IDs returns the set of identifiers currently in use.
func (s *Postgres) IDs(ctx context.Context) (map[int]struct{}, error) {
	var ids []int
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM train_data`); err != nil {
		return nil, storeErr("list ids", err)
	}
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Delete removes the record with the given id; deleting an absent id is a
// no-op. Existence is checked by the caller via IDs.
func (s *Postgres) Delete(ctx context.Context, id int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM train_data WHERE id = $1`, id); err != nil {
		return storeErr("delete record", err)
	}
	logger.Debug(ctx, "db", "record.deleted", slog.Int("record_id", id))
	return nil
}

// storeErr tags an I/O failure with the store-unavailable taxonomy value
// while preserving the cause for logs.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, workout.ErrStoreUnavailable, err)
}
