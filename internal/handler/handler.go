// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/smakarov/eventreg/internal/model"
	"github.com/smakarov/eventreg/internal/repository"
	"github.com/smakarov/eventreg/internal/service"
)

// EventAPI is the service surface the event handlers call.
type EventAPI interface {
	CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.EventDetail, error)
	ListUpcoming(ctx context.Context) ([]model.EventSummary, error)
	GetStats(ctx context.Context, id string) (*model.EventStats, error)
	Register(ctx context.Context, eventID, userID string) (*model.Registration, error)
	Cancel(ctx context.Context, eventID, userID string) (*model.Registration, error)
}

// UserAPI is the service surface the user handlers call.
type UserAPI interface {
	CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CountRecentRegistrations(ctx context.Context, userID string, windowDays int) (int, error)
}

// EventHandler holds the HTTP handlers for events and registrations.
type EventHandler struct {
	svc EventAPI
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc EventAPI) *EventHandler {
	return &EventHandler{svc: svc}
}

// UserHandler holds the HTTP handlers for users.
type UserHandler struct {
	svc UserAPI
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc UserAPI) *UserHandler {
	return &UserHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// respondError maps domain errors to HTTP statuses. Storage internals never
// leak: anything outside the known set is logged and reported opaquely.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, repository.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, repository.ErrRegistrationNotFound):
		writeError(w, http.StatusNotFound, "registration not found")
	case errors.Is(err, repository.ErrPastEvent):
		writeError(w, http.StatusBadRequest, "cannot register for past events")
	case errors.Is(err, repository.ErrEventFull):
		writeError(w, http.StatusConflict, "event is fully booked")
	case errors.Is(err, repository.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, "user is already registered for this event")
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "user with this email already exists")
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "request conflicted with a concurrent update, please retry")
	default:
		logrus.WithError(err).Error("internal error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ─── Event handlers ───────────────────────────────────────────────────────────

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListUpcoming handles GET /events
// Returns future events ordered by scheduled time, then location.
func (h *EventHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListUpcoming(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
// Returns the event with its registration count and registrant list.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.svc.GetEvent(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// GetStats handles GET /events/{id}/stats
func (h *EventHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	stats, err := h.svc.GetStats(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Register handles POST /events/{id}/register
// Performs a concurrency-safe registration for the specified event.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reg, err := h.svc.Register(r.Context(), id, req.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

// Cancel handles DELETE /events/{id}/register
// Removes the active registration for (event, user) and returns it.
func (h *EventHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reg, err := h.svc.Cancel(r.Context(), id, req.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reg)
}

// ─── User handlers ────────────────────────────────────────────────────────────

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.svc.CreateUser(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// GetUser handles GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// CountRecentRegistrations handles GET /users/{id}/registrations/recent?days=N
func (h *UserHandler) CountRecentRegistrations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Only an absent parameter falls back to the default window; an explicit
	// days=0 is rejected by the service's lower bound.
	windowDays := service.DefaultRecentWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		windowDays = n
	}

	count, err := h.svc.CountRecentRegistrations(r.Context(), id, windowDays)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.RecentCount{
		UserID:     id,
		WindowDays: windowDays,
		Count:      count,
	})
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
