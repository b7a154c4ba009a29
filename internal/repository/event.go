package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smakarov/eventreg/internal/model"
)

// EventRepository handles persistence and read paths for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event and returns it with a generated UUID.
func (r *EventRepository) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	event := &model.Event{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Datetime:  req.Datetime,
		Location:  req.Location,
		Capacity:  req.Capacity,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, datetime, location, capacity, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.Title, event.Datetime, event.Location, event.Capacity, event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := r.db.QueryRow(ctx,
		`SELECT id, title, datetime, location, capacity, created_at
		 FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Title, &e.Datetime, &e.Location, &e.Capacity, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// GetDetail returns the event with its full registrant list. A single query
// feeds both the list and the count, so they can never disagree.
func (r *EventRepository) GetDetail(ctx context.Context, id string) (*model.EventDetail, error) {
	rows, err := r.db.Query(ctx,
		`SELECT e.id, e.title, e.datetime, e.location, e.capacity, e.created_at,
		        u.id, u.name, u.email
		 FROM events e
		 LEFT JOIN event_registrations er ON er.event_id = e.id
		 LEFT JOIN users u ON u.id = er.user_id
		 WHERE e.id = $1
		 ORDER BY er.registered_at ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("get event detail: %w", err)
	}
	defer rows.Close()

	var detail *model.EventDetail
	for rows.Next() {
		var e model.Event
		var userID, userName, userEmail *string
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Datetime, &e.Location, &e.Capacity, &e.CreatedAt,
			&userID, &userName, &userEmail,
		); err != nil {
			return nil, fmt.Errorf("scan event detail: %w", err)
		}
		if detail == nil {
			detail = &model.EventDetail{Event: e, RegisteredUsers: []model.Registrant{}}
		}
		// The user columns are NULL when the event has no registrations.
		if userID != nil {
			detail.RegisteredUsers = append(detail.RegisteredUsers, model.Registrant{
				ID:    *userID,
				Name:  *userName,
				Email: *userEmail,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event detail: %w", err)
	}
	if detail == nil {
		return nil, ErrNotFound
	}
	detail.CurrentRegistrations = len(detail.RegisteredUsers)
	return detail, nil
}

// ListUpcoming returns all future events with their registration counts,
// ordered by scheduled time, then by location for events at the same time.
func (r *EventRepository) ListUpcoming(ctx context.Context) ([]model.EventSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT e.id, e.title, e.datetime, e.location, e.capacity, e.created_at,
		        COUNT(er.id) AS current_registrations
		 FROM events e
		 LEFT JOIN event_registrations er ON er.event_id = e.id
		 WHERE e.datetime > NOW()
		 GROUP BY e.id
		 ORDER BY e.datetime ASC, e.location ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	defer rows.Close()

	var events []model.EventSummary
	for rows.Next() {
		var s model.EventSummary
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Datetime, &s.Location, &s.Capacity, &s.CreatedAt,
			&s.CurrentRegistrations,
		); err != nil {
			return nil, fmt.Errorf("scan event summary: %w", err)
		}
		events = append(events, s)
	}
	return events, rows.Err()
}

// Stats returns aggregate registration statistics for an event, or
// ErrNotFound. Remaining capacity and the usage percentage are derived in
// the same query as the count.
func (r *EventRepository) Stats(ctx context.Context, id string) (*model.EventStats, error) {
	var s model.EventStats
	err := r.db.QueryRow(ctx,
		`SELECT e.capacity,
		        COUNT(er.id) AS total_registrations,
		        e.capacity - COUNT(er.id) AS remaining_capacity,
		        ROUND(COUNT(er.id)::DECIMAL / e.capacity * 100, 2)::FLOAT8 AS percentage_used
		 FROM events e
		 LEFT JOIN event_registrations er ON er.event_id = e.id
		 WHERE e.id = $1
		 GROUP BY e.id, e.capacity`,
		id,
	).Scan(&s.Capacity, &s.TotalRegistrations, &s.RemainingCapacity, &s.PercentageUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event stats: %w", err)
	}
	return &s, nil
}
