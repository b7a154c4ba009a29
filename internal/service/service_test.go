package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smakarov/eventreg/internal/model"
	"github.com/smakarov/eventreg/internal/repository"
)

type fakeEventStore struct {
	created     *model.CreateEventRequest
	detail      *model.EventDetail
	detailErr   error
	upcoming    []model.EventSummary
	upcomingErr error
	stats       *model.EventStats
	statsErr    error
}

func (f *fakeEventStore) Create(_ context.Context, req model.CreateEventRequest) (*model.Event, error) {
	f.created = &req
	return &model.Event{
		ID:       "ev-1",
		Title:    req.Title,
		Datetime: req.Datetime,
		Location: req.Location,
		Capacity: req.Capacity,
	}, nil
}

func (f *fakeEventStore) GetDetail(_ context.Context, _ string) (*model.EventDetail, error) {
	return f.detail, f.detailErr
}

func (f *fakeEventStore) ListUpcoming(_ context.Context) ([]model.EventSummary, error) {
	return f.upcoming, f.upcomingErr
}

func (f *fakeEventStore) Stats(_ context.Context, _ string) (*model.EventStats, error) {
	return f.stats, f.statsErr
}

type fakeRegistrationStore struct {
	registerErr error
	cancelErr   error
	reg         *model.Registration
}

func (f *fakeRegistrationStore) Register(_ context.Context, eventID, userID string) (*model.Registration, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	if f.reg != nil {
		return f.reg, nil
	}
	return &model.Registration{ID: "reg-1", EventID: eventID, UserID: userID}, nil
}

func (f *fakeRegistrationStore) Cancel(_ context.Context, eventID, userID string) (*model.Registration, error) {
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	return &model.Registration{ID: "reg-1", EventID: eventID, UserID: userID}, nil
}

func newEventService() (*EventService, *fakeEventStore, *fakeRegistrationStore) {
	events := &fakeEventStore{}
	regs := &fakeRegistrationStore{}
	return NewEventService(events, regs), events, regs
}

func futureTime() time.Time {
	return time.Now().Add(24 * time.Hour)
}

func TestCreateEventValidation(t *testing.T) {
	svc, _, _ := newEventService()
	ctx := context.Background()

	longText := strings.Repeat("x", 256)

	cases := []struct {
		name string
		req  model.CreateEventRequest
	}{
		{"empty title", model.CreateEventRequest{Title: "  ", Datetime: futureTime(), Location: "Hall A", Capacity: 10}},
		{"title too long", model.CreateEventRequest{Title: longText, Datetime: futureTime(), Location: "Hall A", Capacity: 10}},
		{"empty location", model.CreateEventRequest{Title: "GopherCon", Datetime: futureTime(), Location: "", Capacity: 10}},
		{"location too long", model.CreateEventRequest{Title: "GopherCon", Datetime: futureTime(), Location: longText, Capacity: 10}},
		{"zero capacity", model.CreateEventRequest{Title: "GopherCon", Datetime: futureTime(), Location: "Hall A", Capacity: 0}},
		{"capacity over limit", model.CreateEventRequest{Title: "GopherCon", Datetime: futureTime(), Location: "Hall A", Capacity: 1001}},
		{"past datetime", model.CreateEventRequest{Title: "GopherCon", Datetime: time.Now().Add(-time.Hour), Location: "Hall A", Capacity: 10}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateEvent(ctx, tc.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateEventTrimsFields(t *testing.T) {
	svc, events, _ := newEventService()

	event, err := svc.CreateEvent(context.Background(), model.CreateEventRequest{
		Title:    "  GopherCon  ",
		Datetime: futureTime(),
		Location: " Hall A ",
		Capacity: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, "GopherCon", event.Title)
	assert.Equal(t, "Hall A", event.Location)
	require.NotNil(t, events.created)
	assert.Equal(t, "GopherCon", events.created.Title)
}

func TestCreateEventLengthBoundsCountRunes(t *testing.T) {
	svc, _, _ := newEventService()
	ctx := context.Background()

	// 255 multibyte characters exceed 255 bytes but fit the character limit.
	atLimit := strings.Repeat("ü", 255)
	overLimit := strings.Repeat("ü", 256)

	_, err := svc.CreateEvent(ctx, model.CreateEventRequest{
		Title:    atLimit,
		Datetime: futureTime(),
		Location: atLimit,
		Capacity: 10,
	})
	assert.NoError(t, err)

	_, err = svc.CreateEvent(ctx, model.CreateEventRequest{
		Title:    overLimit,
		Datetime: futureTime(),
		Location: "Hall A",
		Capacity: 10,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateEventCapacityBounds(t *testing.T) {
	svc, _, _ := newEventService()
	ctx := context.Background()

	for _, capacity := range []int{1, 1000} {
		_, err := svc.CreateEvent(ctx, model.CreateEventRequest{
			Title:    "GopherCon",
			Datetime: futureTime(),
			Location: "Hall A",
			Capacity: capacity,
		})
		assert.NoError(t, err, "capacity %d should be accepted", capacity)
	}
}

func TestRegisterRequiresIDs(t *testing.T) {
	svc, _, _ := newEventService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "user-1")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, "ev-1", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterPassesThroughDomainErrors(t *testing.T) {
	domainErrs := []error{
		repository.ErrNotFound,
		repository.ErrUserNotFound,
		repository.ErrPastEvent,
		repository.ErrEventFull,
		repository.ErrAlreadyRegistered,
		repository.ErrConflict,
	}

	for _, want := range domainErrs {
		svc, _, regs := newEventService()
		regs.registerErr = want

		_, err := svc.Register(context.Background(), "ev-1", "user-1")
		assert.ErrorIs(t, err, want)
	}
}

func TestCancelPassesThroughNotFound(t *testing.T) {
	svc, _, regs := newEventService()
	regs.cancelErr = repository.ErrRegistrationNotFound

	_, err := svc.Cancel(context.Background(), "ev-1", "user-1")
	assert.ErrorIs(t, err, repository.ErrRegistrationNotFound)
}

func TestListUpcomingReturnsEmptySlice(t *testing.T) {
	svc, events, _ := newEventService()
	events.upcoming = nil

	got, err := svc.ListUpcoming(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetStatsRequiresID(t *testing.T) {
	svc, _, _ := newEventService()

	_, err := svc.GetStats(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetEventNotFound(t *testing.T) {
	svc, events, _ := newEventService()
	events.detailErr = repository.ErrNotFound

	_, err := svc.GetEvent(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
