// Package model defines the core domain types for the event registration system.
package model

import "time"

// Event represents a capacity-bounded event scheduled at a future time.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Datetime  time.Time `json:"datetime"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

// User represents a person who can register for events.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Registration is a user's claim on one of an event's capacity slots.
type Registration struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Registrant is a user as shown in an event's attendee list.
type Registrant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EventDetail is an event together with its registrant list. The count and
// the list come from the same snapshot, so they always agree.
type EventDetail struct {
	Event
	CurrentRegistrations int          `json:"current_registrations"`
	RegisteredUsers      []Registrant `json:"registered_users"`
}

// EventSummary is a listing row: event attributes plus the live count.
type EventSummary struct {
	Event
	CurrentRegistrations int `json:"current_registrations"`
}

// EventStats summarises how full an event is.
type EventStats struct {
	Capacity           int     `json:"capacity"`
	TotalRegistrations int     `json:"total_registrations"`
	RemainingCapacity  int     `json:"remaining_capacity"`
	PercentageUsed     float64 `json:"percentage_used"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title    string    `json:"title"`
	Datetime time.Time `json:"datetime"`
	Location string    `json:"location"`
	Capacity int       `json:"capacity"`
}

// CreateUserRequest is the payload for creating a new user.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterRequest is the payload for registering a user for an event.
type RegisterRequest struct {
	UserID string `json:"user_id"`
}

// RecentCount is the response for a user's trailing-window registration count.
type RecentCount struct {
	UserID     string `json:"user_id"`
	WindowDays int    `json:"window_days"`
	Count      int    `json:"count"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
