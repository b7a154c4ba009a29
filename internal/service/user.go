package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/smakarov/eventreg/internal/model"
)

// DefaultRecentWindowDays is the trailing window used when a recent
// registration count does not specify one.
const DefaultRecentWindowDays = 30

const maxNameLen = 255

// UserStore is the user persistence surface the service needs.
type UserStore interface {
	Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// RecentCounter counts a user's registrations within a trailing window.
type RecentCounter interface {
	CountRecentByUser(ctx context.Context, userID string, windowDays int) (int, error)
}

// UserService orchestrates user-related operations.
type UserService struct {
	users         UserStore
	registrations RecentCounter
}

// NewUserService constructs a UserService with its dependencies.
func NewUserService(users UserStore, registrations RecentCounter) *UserService {
	return &UserService{users: users, registrations: registrations}
}

// CreateUser validates the request and delegates to the repository.
func (s *UserService) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	switch {
	case req.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	case utf8.RuneCountInString(req.Name) > maxNameLen:
		return nil, fmt.Errorf("%w: name cannot exceed %d characters", ErrValidation, maxNameLen)
	case !isValidEmail(req.Email):
		return nil, fmt.Errorf("%w: email is not a valid email address", ErrValidation)
	}

	return s.users.Create(ctx, req)
}

// GetUser returns a single user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return s.users.GetByID(ctx, id)
}

// ListUsers returns all users ordered by name.
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// CountRecentRegistrations counts the user's registrations created within
// the trailing window. Callers choose the window; the handler substitutes
// DefaultRecentWindowDays when a request leaves it out.
func (s *UserService) CountRecentRegistrations(ctx context.Context, userID string, windowDays int) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if windowDays < 1 {
		return 0, fmt.Errorf("%w: window days must be a positive integer", ErrValidation)
	}
	return s.registrations.CountRecentByUser(ctx, userID, windowDays)
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
