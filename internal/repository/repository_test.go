package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/smakarov/eventreg/internal/database"
	"github.com/smakarov/eventreg/internal/model"
)

// testPool connects to the database named by TEST_DATABASE_URL, applies
// migrations, and truncates all tables. Tests are skipped when the variable
// is unset so the suite stays runnable without a database.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(pool))

	_, err = pool.Exec(context.Background(),
		`TRUNCATE event_registrations, events, users CASCADE`)
	require.NoError(t, err)

	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool, email string) *model.User {
	t.Helper()
	user, err := NewUserRepository(pool).Create(context.Background(), model.CreateUserRequest{
		Name:  "Test User",
		Email: email,
	})
	require.NoError(t, err)
	return user
}

func createTestEvent(t *testing.T, pool *pgxpool.Pool, capacity int, at time.Time, location string) *model.Event {
	t.Helper()
	event, err := NewEventRepository(pool).Create(context.Background(), model.CreateEventRequest{
		Title:    "Test Event",
		Datetime: at,
		Location: location,
		Capacity: capacity,
	})
	require.NoError(t, err)
	return event
}

func registrationCount(t *testing.T, pool *pgxpool.Pool, eventID string) int {
	t.Helper()
	var count int
	err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`,
		eventID,
	).Scan(&count)
	require.NoError(t, err)
	return count
}
