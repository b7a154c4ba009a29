// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/smakarov/eventreg/internal/model"
)

// ErrValidation marks malformed input. Specific messages wrap it, so callers
// can match the whole class with errors.Is.
var ErrValidation = errors.New("validation error")

const (
	maxTitleLen    = 255
	maxLocationLen = 255
	minCapacity    = 1
	maxCapacity    = 1000
)

// EventStore is the event persistence surface the service needs.
type EventStore interface {
	Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	GetDetail(ctx context.Context, id string) (*model.EventDetail, error)
	ListUpcoming(ctx context.Context) ([]model.EventSummary, error)
	Stats(ctx context.Context, id string) (*model.EventStats, error)
}

// RegistrationStore is the registration persistence surface the service needs.
type RegistrationStore interface {
	Register(ctx context.Context, eventID, userID string) (*model.Registration, error)
	Cancel(ctx context.Context, eventID, userID string) (*model.Registration, error)
}

// EventService orchestrates event and registration operations.
type EventService struct {
	events        EventStore
	registrations RegistrationStore
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, registrations RegistrationStore) *EventService {
	return &EventService{events: events, registrations: registrations}
}

// CreateEvent validates the request and delegates to the repository.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)

	switch {
	case req.Title == "":
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	case utf8.RuneCountInString(req.Title) > maxTitleLen:
		return nil, fmt.Errorf("%w: title cannot exceed %d characters", ErrValidation, maxTitleLen)
	case req.Location == "":
		return nil, fmt.Errorf("%w: location is required", ErrValidation)
	case utf8.RuneCountInString(req.Location) > maxLocationLen:
		return nil, fmt.Errorf("%w: location cannot exceed %d characters", ErrValidation, maxLocationLen)
	case req.Capacity < minCapacity || req.Capacity > maxCapacity:
		return nil, fmt.Errorf("%w: capacity must be between %d and %d", ErrValidation, minCapacity, maxCapacity)
	case !req.Datetime.After(time.Now()):
		return nil, fmt.Errorf("%w: datetime must be in the future", ErrValidation)
	}

	return s.events.Create(ctx, req)
}

// GetEvent returns the event with its registrant list.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.EventDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	return s.events.GetDetail(ctx, id)
}

// ListUpcoming returns all future events with their registration counts.
func (s *EventService) ListUpcoming(ctx context.Context) ([]model.EventSummary, error) {
	events, err := s.events.ListUpcoming(ctx)
	if err != nil {
		return nil, err
	}
	// Return an empty slice rather than nil for better client compatibility.
	if events == nil {
		events = []model.EventSummary{}
	}
	return events, nil
}

// GetStats returns aggregate registration statistics for an event.
func (s *EventService) GetStats(ctx context.Context, id string) (*model.EventStats, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	return s.events.Stats(ctx, id)
}

// Register delegates the concurrency-safe registration to the repository
// layer. Domain errors pass through untouched so handlers can map them.
func (s *EventService) Register(ctx context.Context, eventID, userID string) (*model.Registration, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return s.registrations.Register(ctx, eventID, userID)
}

// Cancel removes an active registration and returns the removed row.
func (s *EventService) Cancel(ctx context.Context, eventID, userID string) (*model.Registration, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return s.registrations.Cancel(ctx, eventID, userID)
}
