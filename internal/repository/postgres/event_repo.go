package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/calendar/internal/errs"
	"github.com/and161185/calendar/internal/model"
	"github.com/and161185/calendar/internal/repository"
)

// maxIDAttempts bounds retries when a generated id collides.
const maxIDAttempts = 3

const eventColumns = `id, title, description, location, start_at, end_at, all_day, color, attendees, recurrence, created_at, updated_at`

// EventRepo implements EventRepository using PostgreSQL.
type EventRepo struct {
	db    *DB
	newID func() (uuid.UUID, error)
}

var _ repository.EventRepository = (*EventRepo)(nil)

// NewEventRepo constructs an event repository.
func NewEventRepo(db *DB) *EventRepo { return &EventRepo{db: db, newID: uuid.NewV4} }

// Create inserts a new row; the database sets the timestamps.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
	const q = `
INSERT INTO events (id, title, description, location, start_at, end_at, all_day, color, attendees, recurrence)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at, updated_at`

	attendees, recurrence, err := encodeJSON(ev)
	if err != nil {
		return err
	}
	for attempt := 1; ; attempt++ {
		id, err := r.newID()
		if err != nil {
			return err
		}
		var created, updated time.Time
		err = r.db.Pool.QueryRow(ctx, q,
			id, ev.Title, ev.Description, ev.Location, ev.Start, ev.End, ev.AllDay, ev.Color, attendees, recurrence,
		).Scan(&created, &updated)
		if isUniqueViolation(err) && attempt < maxIDAttempts {
			continue
		}
		if err != nil {
			return err
		}
		ev.ID = id
		ev.CreatedAt = created.UTC()
		ev.UpdatedAt = updated.UTC()
		return nil
	}
}

// Get selects a single event by id.
func (r *EventRepo) Get(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id=$1`
	ev, err := scanEvent(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return ev, nil
}

// List returns events in insertion order, optionally limited to those
// overlapping the range.
func (r *EventRepo) List(ctx context.Context, rng repository.Range) ([]model.Event, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if rng.Bounded() {
		q := `SELECT ` + eventColumns + ` FROM events WHERE start_at < $1 AND end_at > $2 ORDER BY seq`
		rows, err = r.db.Pool.Query(ctx, q, *rng.End, *rng.Start)
	} else {
		q := `SELECT ` + eventColumns + ` FROM events ORDER BY seq`
		rows, err = r.db.Pool.Query(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

// Update overwrites every mutable column and bumps updated_at.
func (r *EventRepo) Update(ctx context.Context, ev *model.Event) error {
	const q = `
UPDATE events SET title=$2, description=$3, location=$4, start_at=$5, end_at=$6, all_day=$7,
color=$8, attendees=$9, recurrence=$10, updated_at=now()
WHERE id=$1
RETURNING created_at, updated_at`

	attendees, recurrence, err := encodeJSON(ev)
	if err != nil {
		return err
	}
	var created, updated time.Time
	err = r.db.Pool.QueryRow(ctx, q,
		ev.ID, ev.Title, ev.Description, ev.Location, ev.Start, ev.End, ev.AllDay, ev.Color, attendees, recurrence,
	).Scan(&created, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	ev.CreatedAt = created.UTC()
	ev.UpdatedAt = updated.UTC()
	return nil
}

// Delete removes a row and reports whether it existed.
func (r *EventRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Ping checks the pool.
func (r *EventRepo) Ping(ctx context.Context) error { return r.db.Pool.Ping(ctx) }

func encodeJSON(ev *model.Event) (attendees, recurrence []byte, err error) {
	list := ev.Attendees
	if list == nil {
		list = []string{}
	}
	if attendees, err = json.Marshal(list); err != nil {
		return nil, nil, fmt.Errorf("encode attendees: %w", err)
	}
	if ev.Recurrence != nil {
		if recurrence, err = json.Marshal(ev.Recurrence); err != nil {
			return nil, nil, fmt.Errorf("encode recurrence: %w", err)
		}
	}
	return attendees, recurrence, nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		ev         model.Event
		attendees  []byte
		recurrence []byte
	)
	if err := row.Scan(
		&ev.ID, &ev.Title, &ev.Description, &ev.Location, &ev.Start, &ev.End, &ev.AllDay,
		&ev.Color, &attendees, &recurrence, &ev.CreatedAt, &ev.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ev.Attendees = []string{}
	if len(attendees) > 0 {
		if err := json.Unmarshal(attendees, &ev.Attendees); err != nil {
			return nil, fmt.Errorf("decode attendees: %w", err)
		}
	}
	if len(recurrence) > 0 && string(recurrence) != "null" {
		var rec model.Recurrence
		if err := json.Unmarshal(recurrence, &rec); err != nil {
			return nil, fmt.Errorf("decode recurrence: %w", err)
		}
		ev.Recurrence = &rec
	}
	ev.Start = ev.Start.UTC()
	ev.End = ev.End.UTC()
	ev.CreatedAt = ev.CreatedAt.UTC()
	ev.UpdatedAt = ev.UpdatedAt.UTC()
	return &ev, nil
}
