package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"gorm.io/gorm"

	"github.com/and161185/calendar/internal/errs"
	"github.com/and161185/calendar/internal/model"
	"github.com/and161185/calendar/internal/repository"
)

// eventRow is the persisted shape of an event. Seq keeps insertion order.
type eventRow struct {
	Seq         uint   `gorm:"primaryKey;autoIncrement"`
	ID          string `gorm:"size:36;uniqueIndex"`
	Title       string `gorm:"not null"`
	Description string
	Location    string
	StartAt     time.Time `gorm:"index;not null"`
	EndAt       time.Time `gorm:"index;not null"`
	AllDay      bool      `gorm:"default:false"`
	Color       string
	Attendees   []string          `gorm:"serializer:json"`
	Recurrence  *model.Recurrence `gorm:"serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (eventRow) TableName() string { return "events" }

func (r *eventRow) fill(ev *model.Event) {
	r.Title = ev.Title
	r.Description = ev.Description
	r.Location = ev.Location
	r.StartAt = ev.Start.UTC()
	r.EndAt = ev.End.UTC()
	r.AllDay = ev.AllDay
	r.Color = ev.Color
	r.Attendees = ev.Attendees
	if r.Attendees == nil {
		r.Attendees = []string{}
	}
	r.Recurrence = ev.Recurrence
}

func (r *eventRow) toModel() (model.Event, error) {
	id, err := uuid.FromString(r.ID)
	if err != nil {
		return model.Event{}, fmt.Errorf("bad event id %q: %w", r.ID, err)
	}
	ev := model.Event{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Start:       r.StartAt.UTC(),
		End:         r.EndAt.UTC(),
		AllDay:      r.AllDay,
		Color:       r.Color,
		Attendees:   r.Attendees,
		Recurrence:  r.Recurrence,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if ev.Attendees == nil {
		ev.Attendees = []string{}
	}
	return ev, nil
}

// EventRepo implements EventRepository on top of gorm.
type EventRepo struct {
	db *gorm.DB
}

var _ repository.EventRepository = (*EventRepo)(nil)

func NewEventRepo(db *gorm.DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	row := eventRow{ID: id.String()}
	row.fill(ev)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	ev.ID = id
	ev.CreatedAt = row.CreatedAt.UTC()
	ev.UpdatedAt = row.UpdatedAt.UTC()
	return nil
}

func (r *EventRepo) Get(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var row eventRow
	if err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	ev, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *EventRepo) List(ctx context.Context, rng repository.Range) ([]model.Event, error) {
	q := r.db.WithContext(ctx).Order("seq")
	if rng.Bounded() {
		q = q.Where("start_at < ? AND end_at > ?", rng.End.UTC(), rng.Start.UTC())
	}
	var rows []eventRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Event, 0, len(rows))
	for i := range rows {
		ev, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func (r *EventRepo) Update(ctx context.Context, ev *model.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row eventRow
		if err := tx.Where("id = ?", ev.ID.String()).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		row.fill(ev)
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		ev.CreatedAt = row.CreatedAt.UTC()
		ev.UpdatedAt = row.UpdatedAt.UTC()
		return nil
	})
}

func (r *EventRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&eventRow{})
	if res.Error != nil {
		return false, fmt.Errorf("delete event: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *EventRepo) Ping(ctx context.Context) error { return ping(ctx, r.db) }
