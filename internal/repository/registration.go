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

// registerAttempts bounds retries on transient transaction contention.
const registerAttempts = 3

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Register performs a concurrency-safe registration inside a single
// transaction.
//
// The event row is locked with SELECT … FOR UPDATE before any check runs, so
// concurrent attempts on the same event serialise at the row: when exactly
// one capacity slot remains, one of two racing calls commits and the other
// sees ErrEventFull. The registration count is derived with COUNT(*) inside
// the same transaction. There is no stored counter to go stale.
//
// Transient serialisation failures and deadlocks are retried a bounded
// number of times; on exhaustion the caller gets ErrConflict.
func (r *RegistrationRepository) Register(ctx context.Context, eventID, userID string) (*model.Registration, error) {
	return withRetry(func() (*model.Registration, error) {
		return r.register(ctx, eventID, userID)
	})
}

// withRetry runs fn up to registerAttempts times, backing off briefly between
// attempts that fail on transient contention. Once retries are exhausted the
// caller sees ErrConflict instead of the raw storage error.
func withRetry(fn func() (*model.Registration, error)) (*model.Registration, error) {
	for attempt := 1; ; attempt++ {
		reg, err := fn()
		if err != nil && isRetryable(err) {
			if attempt < registerAttempts {
				time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
				continue
			}
			return nil, ErrConflict
		}
		return reg, err
	}
}

func (r *RegistrationRepository) register(ctx context.Context, eventID, userID string) (_ *model.Registration, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	// Ensure the transaction is always resolved.
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Step 1: acquire an exclusive row-level lock on the event. Every check
	// below is evaluated while this lock is held, so no concurrent register
	// can interleave between the count and the insert.
	var capacity int
	var datetime time.Time
	err = tx.QueryRow(ctx,
		`SELECT capacity, datetime
		 FROM events
		 WHERE id = $1
		 FOR UPDATE`,
		eventID,
	).Scan(&capacity, &datetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	// Step 2: reject events that have already started.
	if !datetime.After(time.Now()) {
		return nil, ErrPastEvent
	}

	// Step 3: guard against overbooking. Count derived inside the
	// transaction, never read from a cached field.
	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`,
		eventID,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	if count >= capacity {
		return nil, ErrEventFull
	}

	// Step 4: check for duplicate registration.
	var dupCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	).Scan(&dupCount)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dupCount > 0 {
		return nil, ErrAlreadyRegistered
	}

	// Step 5: create the registration record.
	reg := &model.Registration{
		ID:           uuid.New().String(),
		EventID:      eventID,
		UserID:       userID,
		RegisteredAt: time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO event_registrations (id, event_id, user_id, registered_at)
		 VALUES ($1, $2, $3, $4)`,
		reg.ID, reg.EventID, reg.UserID, reg.RegisteredAt,
	)
	if err != nil {
		// The UNIQUE(event_id, user_id) constraint is the backstop for
		// duplicate races that slip past the pre-check; the user_id foreign
		// key catches registrations for users that do not exist.
		switch pgErrCode(err) {
		case codeUniqueViolation:
			return nil, ErrAlreadyRegistered
		case codeForeignKeyViolation:
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	// Step 6: commit. Only now does any other transaction see the change.
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return reg, nil
}

// Cancel deletes the registration for (eventID, userID) and returns the
// removed row. Cancellation is a hard delete, so the user may register for
// the same event again afterwards.
func (r *RegistrationRepository) Cancel(ctx context.Context, eventID, userID string) (*model.Registration, error) {
	var reg model.Registration
	err := r.db.QueryRow(ctx,
		`DELETE FROM event_registrations
		 WHERE event_id = $1 AND user_id = $2
		 RETURNING id, event_id, user_id, registered_at`,
		eventID, userID,
	).Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("cancel registration: %w", err)
	}
	return &reg, nil
}

// CountRecentByUser returns how many registrations the user created within
// the trailing window of windowDays days.
func (r *RegistrationRepository) CountRecentByUser(ctx context.Context, userID string, windowDays int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM event_registrations
		 WHERE user_id = $1
		   AND registered_at >= NOW() - ($2::INT * INTERVAL '1 day')`,
		userID, windowDays,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recent registrations: %w", err)
	}
	return count, nil
}
