// Package repository implements all database access for the event
// registration system. It uses pgx directly (no ORM) for transparency
// and performance.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by the repositories. Services propagate them
// verbatim and handlers switch on them with errors.Is.
var (
	// ErrNotFound is returned when a requested event does not exist.
	ErrNotFound = errors.New("event not found")

	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrPastEvent is returned when registering for an event already held.
	ErrPastEvent = errors.New("cannot register for past events")

	// ErrEventFull is returned when an event has no remaining capacity.
	ErrEventFull = errors.New("event is full")

	// ErrAlreadyRegistered is returned when the same user registers twice.
	ErrAlreadyRegistered = errors.New("user already registered for this event")

	// ErrRegistrationNotFound is returned when cancelling a registration
	// that does not exist.
	ErrRegistrationNotFound = errors.New("registration not found")

	// ErrDuplicateEmail is returned when a user's email is already taken.
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrConflict is returned after transient transaction contention
	// exhausts its retries.
	ErrConflict = errors.New("transaction conflict, please retry")
)

// Postgres error codes that need domain translation.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isRetryable reports whether a transaction failed on transient contention
// and may be attempted again.
func isRetryable(err error) bool {
	code := pgErrCode(err)
	return code == codeSerializationFailure || code == codeDeadlockDetected
}
