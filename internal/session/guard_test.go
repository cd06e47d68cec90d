package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsvphub/internal/model"
)

// memSnapshots is an in-memory SnapshotStore for guard tests.
type memSnapshots struct {
	mu   sync.Mutex
	snap *Snapshot
}

func (m *memSnapshots) SaveSnapshot(_ context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *snap
	m.snap = &copied
	return nil
}

func (m *memSnapshots) LoadSnapshot(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, nil
	}
	copied := *m.snap
	return &copied, nil
}

func (m *memSnapshots) ClearSnapshot(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}

func (m *memSnapshots) stored() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func testUser() *model.User {
	return &model.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
}

func TestGuard_StartPersistsSnapshot(t *testing.T) {
	store := &memSnapshots{}
	guard := NewGuard(store, time.Hour, nil)

	require.NoError(t, guard.Start(context.Background(), &Snapshot{User: testUser()}))

	assert.True(t, guard.Active())
	require.NotNil(t, store.stored())
	assert.False(t, store.stored().LastActivity.IsZero())
}

func TestGuard_ExpiresAfterInactivity(t *testing.T) {
	store := &memSnapshots{}
	expired := make(chan struct{})
	guard := NewGuard(store, 20*time.Millisecond, func() { close(expired) })

	require.NoError(t, guard.Start(context.Background(), &Snapshot{User: testUser()}))

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("expiry callback never fired")
	}
	assert.False(t, guard.Active())
	assert.Nil(t, guard.Current())
	assert.Nil(t, store.stored())
}

func TestGuard_TouchPushesDeadline(t *testing.T) {
	store := &memSnapshots{}
	var mu sync.Mutex
	fired := false
	guard := NewGuard(store, 60*time.Millisecond, func() {
		mu.Lock()
		fired = true
		mu.Unlock()
	})

	require.NoError(t, guard.Start(context.Background(), &Snapshot{User: testUser()}))

	// Keep touching inside the window; the session must stay alive well past
	// the original deadline.
	for i := 0; i < 5; i++ {
		time.Sleep(25 * time.Millisecond)
		require.NoError(t, guard.Touch(context.Background()))
	}

	mu.Lock()
	assert.False(t, fired)
	mu.Unlock()
	assert.True(t, guard.Active())
}

func TestGuard_ResumeRestoresLiveSession(t *testing.T) {
	store := &memSnapshots{}
	user := testUser()
	community := &model.Community{ID: uuid.New(), Name: "Gophers", Code: "ABC123"}

	first := NewGuard(store, time.Hour, nil)
	require.NoError(t, first.Start(context.Background(), &Snapshot{User: user}))
	require.NoError(t, first.SetCommunity(context.Background(), community))

	// A new process picks the session back up.
	second := NewGuard(store, time.Hour, nil)
	snap, err := second.Resume(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, user.ID, snap.User.ID)
	require.NotNil(t, snap.Community)
	assert.Equal(t, "ABC123", snap.Community.Code)
	assert.True(t, second.Active())
}

func TestGuard_ResumeDiscardsStaleSession(t *testing.T) {
	store := &memSnapshots{}
	require.NoError(t, store.SaveSnapshot(context.Background(), &Snapshot{
		User:         testUser(),
		LastActivity: time.Now().Add(-time.Hour),
	}))

	guard := NewGuard(store, 30*time.Minute, nil)
	snap, err := guard.Resume(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Nil(t, store.stored())
	assert.False(t, guard.Active())
}

func TestGuard_ResumeWithNoSession(t *testing.T) {
	guard := NewGuard(&memSnapshots{}, time.Hour, nil)
	snap, err := guard.Resume(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestGuard_LogoutClearsEverything(t *testing.T) {
	store := &memSnapshots{}
	fired := make(chan struct{}, 1)
	guard := NewGuard(store, 20*time.Millisecond, func() { fired <- struct{}{} })

	require.NoError(t, guard.Start(context.Background(), &Snapshot{User: testUser()}))
	require.NoError(t, guard.Logout(context.Background()))

	assert.False(t, guard.Active())
	assert.Nil(t, store.stored())

	// The pending expiry must not fire after an explicit logout.
	select {
	case <-fired:
		t.Fatal("expiry fired after logout")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestGuard_SetCommunityWithoutSessionIsNoop(t *testing.T) {
	store := &memSnapshots{}
	guard := NewGuard(store, time.Hour, nil)

	require.NoError(t, guard.SetCommunity(context.Background(), &model.Community{Code: "ABC123"}))
	assert.Nil(t, store.stored())
}

func TestGuard_CurrentExpiresByClock(t *testing.T) {
	store := &memSnapshots{}
	guard := NewGuard(store, 30*time.Minute, nil)

	base := time.Now()
	guard.now = func() time.Time { return base }
	require.NoError(t, guard.Start(context.Background(), &Snapshot{User: testUser()}))
	require.NotNil(t, guard.Current())

	// Wind the clock past the window without waiting on the timer.
	guard.now = func() time.Time { return base.Add(31 * time.Minute) }
	assert.Nil(t, guard.Current())
	assert.False(t, guard.Active())
}
