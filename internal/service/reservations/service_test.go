package reservations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
	"github.com/m04kA/SMC-VenueBooking/internal/integrations/venuecatalog"
	"github.com/m04kA/SMC-VenueBooking/internal/service/availability"
	"github.com/m04kA/SMC-VenueBooking/internal/service/reservations/models"
	"github.com/m04kA/SMC-VenueBooking/internal/testutil"
	"github.com/m04kA/SMC-VenueBooking/pkg/logger"
	"github.com/m04kA/SMC-VenueBooking/pkg/ptr"
)

const (
	venueID   int64 = 7
	managerID int64 = 900
	ownerID   int64 = 100
	otherID   int64 = 101
)

var (
	june10 = time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	now    = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeVenues struct {
	err error
}

func (f *fakeVenues) GetVenue(_ context.Context, id int64) (*venuecatalog.Venue, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id != venueID {
		return nil, venuecatalog.ErrVenueNotFound
	}
	return &venuecatalog.Venue{ID: venueID, Name: "Main hall", OpenTime: "08:00", CloseTime: "22:00", IsActive: true, ManagerIDs: []int64{managerID}}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.LifecycleEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...domain.LifecycleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []int64
	err         error
}

func (c *recordingCache) Invalidate(_ context.Context, venueID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, venueID)
	return c.err
}

type recordingMetrics struct {
	mu          sync.Mutex
	transitions map[string]int
	conflicts   map[string]int
}

func (m *recordingMetrics) Transition(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[status]++
}

func (m *recordingMetrics) SlotConflict(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts[stage]++
}

type fixture struct {
	store     *testutil.MemStore
	venues    *fakeVenues
	publisher *recordingPublisher
	cache     *recordingCache
	metrics   *recordingMetrics
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     testutil.NewMemStore(),
		venues:    &fakeVenues{},
		publisher: &recordingPublisher{},
		cache:     &recordingCache{},
		metrics:   &recordingMetrics{transitions: map[string]int{}, conflicts: map[string]int{}},
	}
	f.svc = NewService(
		f.store,
		availability.NewChecker(f.store),
		f.venues,
		f.store,
		f.publisher,
		f.cache,
		f.metrics,
		logger.Nop(),
	).WithTimeProvider(fixedClock{now: now})
	return f
}

func (f *fixture) seed(t *testing.T, start, end string, status domain.ReservationStatus) int64 {
	t.Helper()
	w, err := domain.NewTimeWindow(june10, start, end)
	require.NoError(t, err)
	r := domain.NewPendingReservation(venueID, ownerID, w, "chess club", nil, now.Add(-time.Hour))
	r.Status = status
	return f.store.Seed(r)
}

func (f *fixture) stored(t *testing.T, id int64) *domain.Reservation {
	t.Helper()
	r, err := f.store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return r
}

func TestDecide_Approve(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, "10:00", "12:00", domain.StatusPending)

	resp, err := f.svc.Decide(context.Background(), id, &models.DecideRequest{UserID: managerID, Decision: "approve"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusApproved), resp.Status)
	assert.Equal(t, ptr.Ptr(managerID), resp.ApproverID)
	assert.Equal(t, now, resp.StatusChangedAt)

	stored := f.stored(t, id)
	assert.Equal(t, domain.StatusApproved, stored.Status)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.EventApproved, f.publisher.events[0].Type)
	assert.Equal(t, []int64{venueID}, f.cache.invalidated)
	assert.Equal(t, 1, f.metrics.transitions["approved"])
}

func TestDecide_DeclineRequiresReason(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, "10:00", "12:00", domain.StatusPending)

	_, err := f.svc.Decide(context.Background(), id, &models.DecideRequest{UserID: managerID, Decision: "decline"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrDeclineReasonRequired)
	assert.Equal(t, domain.StatusPending, f.stored(t, id).Status, "failed decision must not change status")
	assert.Empty(t, f.publisher.events)

	resp, err := f.svc.Decide(context.Background(), id, &models.DecideRequest{
		UserID:   managerID,
		Decision: "decline",
		Reason:   "venue under maintenance",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusDeclined), resp.Status)
	require.NotNil(t, resp.DeclineReason)
	assert.Equal(t, "venue under maintenance", *resp.DeclineReason)
	assert.Empty(t, f.cache.invalidated, "declining a pending request does not change occupancy")
}

func TestDecide_ApproveConflict(t *testing.T) {
	f := newFixture(t)
	holder := f.seed(t, "09:00", "11:00", domain.StatusApproved)
	id := f.seed(t, "10:00", "12:00", domain.StatusPending)

	_, err := f.svc.Decide(context.Background(), id, &models.DecideRequest{UserID: managerID, Decision: "approve"})
	require.Error(t, err)

	var conflict *domain.SlotConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []int64{holder}, conflict.BlockingIDs)
	assert.True(t, domain.SameDate(june10, conflict.Date))
	assert.Equal(t, domain.StatusPending, f.stored(t, id).Status)
	assert.Equal(t, 1, f.metrics.conflicts[stageApproval])
}

func TestDecide_ConcurrentApprovalsOfOverlappingRequests(t *testing.T) {
	f := newFixture(t)
	first := f.seed(t, "10:00", "12:00", domain.StatusPending)
	second := f.seed(t, "11:00", "13:00", domain.StatusPending)

	var g errgroup.Group
	errs := make([]error, 2)
	for i, id := range []int64{first, second} {
		i, id := i, id
		g.Go(func() error {
			_, errs[i] = f.svc.Decide(context.Background(), id, &models.DecideRequest{UserID: managerID, Decision: "approve"})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	approved := 0
	for _, err := range errs {
		if err == nil {
			approved++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrSlotConflict)
	}
	assert.Equal(t, 1, approved)
}

func TestDecide_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.ReservationStatus
		userID  int64
		id      func(f *fixture, seeded int64) int64
		req     string
		wantErr error
	}{
		{name: "not a manager", status: domain.StatusPending, userID: ownerID, req: "approve", wantErr: ErrAccessDenied},
		{name: "unknown decision", status: domain.StatusPending, userID: managerID, req: "maybe", wantErr: ErrInvalidInput},
		{name: "already approved", status: domain.StatusApproved, userID: managerID, req: "approve", wantErr: ErrInvalidTransition},
		{name: "decline approved", status: domain.StatusApproved, userID: managerID, req: "decline", wantErr: ErrInvalidTransition},
		{name: "cancelled is terminal", status: domain.StatusCancelled, userID: managerID, req: "approve", wantErr: ErrInvalidTransition},
		{
			name:    "unknown reservation",
			status:  domain.StatusPending,
			userID:  managerID,
			id:      func(_ *fixture, seeded int64) int64 { return seeded + 100 },
			req:     "approve",
			wantErr: ErrReservationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := f.seed(t, "10:00", "12:00", tt.status)
			if tt.id != nil {
				id = tt.id(f, id)
			}

			_, err := f.svc.Decide(context.Background(), id, &models.DecideRequest{UserID: tt.userID, Decision: tt.req, Reason: "reason"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestCancel(t *testing.T) {
	t.Run("requester cancels pending", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(t, "10:00", "12:00", domain.StatusPending)

		resp, err := f.svc.Cancel(context.Background(), id, &models.CancelRequest{UserID: ownerID, CancellationReason: "plans changed"})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCancelled), resp.Status)
		assert.Equal(t, ptr.Ptr(ownerID), resp.CancelledBy)
		require.NotNil(t, resp.CancellationReason)
		assert.Equal(t, "plans changed", *resp.CancellationReason)

		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, domain.EventCancelled, f.publisher.events[0].Type)
	})

	t.Run("manager cancels approved and frees the slot", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(t, "10:00", "12:00", domain.StatusApproved)

		_, err := f.svc.Cancel(context.Background(), id, &models.CancelRequest{UserID: managerID})
		require.NoError(t, err)
		assert.Equal(t, []int64{venueID}, f.cache.invalidated)

		results, err := availability.NewChecker(f.store).Check(context.Background(), venueID, []domain.TimeWindow{f.stored(t, id).Window()}, nil)
		require.NoError(t, err)
		assert.True(t, results[0].Available)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(t, "10:00", "12:00", domain.StatusPending)

		_, err := f.svc.Cancel(context.Background(), id, &models.CancelRequest{UserID: otherID})
		assert.ErrorIs(t, err, ErrAccessDenied)
		assert.Equal(t, domain.StatusPending, f.stored(t, id).Status)
	})

	t.Run("declined cannot be cancelled", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(t, "10:00", "12:00", domain.StatusDeclined)

		_, err := f.svc.Cancel(context.Background(), id, &models.CancelRequest{UserID: ownerID})
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("cache failure does not fail the cancellation", func(t *testing.T) {
		f := newFixture(t)
		f.cache.err = errors.New("redis down")
		id := f.seed(t, "10:00", "12:00", domain.StatusApproved)

		_, err := f.svc.Cancel(context.Background(), id, &models.CancelRequest{UserID: ownerID})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, f.stored(t, id).Status)
	})
}

func TestGetByID_Access(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, "10:00", "12:00", domain.StatusPending)

	resp, err := f.svc.GetByID(context.Background(), id, ownerID)
	require.NoError(t, err)
	assert.Equal(t, id, resp.ID)
	assert.Equal(t, "2024-06-10", resp.Date)
	assert.Equal(t, "10:00", resp.StartTime)

	_, err = f.svc.GetByID(context.Background(), id, managerID)
	require.NoError(t, err)

	_, err = f.svc.GetByID(context.Background(), id, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetByID(context.Background(), id+1, ownerID)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestGetUserReservations(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "10:00", "12:00", domain.StatusPending)
	f.seed(t, "13:00", "14:00", domain.StatusApproved)

	resp, err := f.svc.GetUserReservations(context.Background(), &models.GetUserReservationsRequest{UserID: ownerID, TargetUserID: ownerID})
	require.NoError(t, err)
	assert.Len(t, resp.Reservations, 2)

	resp, err = f.svc.GetUserReservations(context.Background(), &models.GetUserReservationsRequest{
		UserID:       ownerID,
		TargetUserID: ownerID,
		Status:       ptr.Ptr("approved"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Reservations, 1)
	assert.Equal(t, "13:00", resp.Reservations[0].StartTime)

	_, err = f.svc.GetUserReservations(context.Background(), &models.GetUserReservationsRequest{UserID: otherID, TargetUserID: ownerID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetUserReservations(context.Background(), &models.GetUserReservationsRequest{
		UserID:       ownerID,
		TargetUserID: ownerID,
		Status:       ptr.Ptr("archived"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetVenueReservations(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "10:00", "12:00", domain.StatusPending)
	f.seed(t, "13:00", "14:00", domain.StatusApproved)

	resp, err := f.svc.GetVenueReservations(context.Background(), &models.GetVenueReservationsRequest{
		UserID:  managerID,
		VenueID: venueID,
		Status:  ptr.Ptr("pending"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Reservations, 1)
	assert.Equal(t, "pending", resp.Reservations[0].Status)

	nextWeek := june10.AddDate(0, 0, 7)
	resp, err = f.svc.GetVenueReservations(context.Background(), &models.GetVenueReservationsRequest{
		UserID:    managerID,
		VenueID:   venueID,
		StartDate: &nextWeek,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Reservations)

	_, err = f.svc.GetVenueReservations(context.Background(), &models.GetVenueReservationsRequest{UserID: ownerID, VenueID: venueID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetVenueReservations(context.Background(), &models.GetVenueReservationsRequest{UserID: managerID, VenueID: 42})
	assert.ErrorIs(t, err, ErrVenueNotFound)

	_, err = f.svc.GetVenueReservations(context.Background(), &models.GetVenueReservationsRequest{
		UserID:    managerID,
		VenueID:   venueID,
		StartDate: &nextWeek,
		EndDate:   &june10,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
