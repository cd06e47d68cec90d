package session

import (
	"context"
	"sync"
	"time"

	"rsvphub/internal/model"
)

// DefaultInactivityTimeout matches the product's 30 minute session window.
const DefaultInactivityTimeout = 30 * time.Minute

// Guard tracks one inactivity deadline for the authenticated identity.
// Touch re-arms the deadline; when it lapses the snapshot is cleared and the
// expiry callback fires.
type Guard struct {
	store    SnapshotStore
	duration time.Duration
	onExpire func()
	now      func() time.Time

	mu    sync.Mutex
	snap  *Snapshot
	timer *time.Timer
}

func NewGuard(store SnapshotStore, duration time.Duration, onExpire func()) *Guard {
	if duration <= 0 {
		duration = DefaultInactivityTimeout
	}
	return &Guard{
		store:    store,
		duration: duration,
		onExpire: onExpire,
		now:      time.Now,
	}
}

// Start begins a session for a freshly authenticated identity.
func (g *Guard) Start(ctx context.Context, snap *Snapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap.LastActivity = g.now()
	g.snap = snap
	g.arm()
	return g.store.SaveSnapshot(ctx, snap)
}

// Resume restores a persisted session. A session whose last activity is
// older than the inactivity window is treated as already expired and
// cleared. Returns the live snapshot, or nil when there is none.
func (g *Guard) Resume(ctx context.Context) (*Snapshot, error) {
	snap, err := g.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil || snap.User == nil {
		return nil, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.now().Sub(snap.LastActivity) >= g.duration {
		_ = g.store.ClearSnapshot(ctx)
		return nil, nil
	}

	snap.LastActivity = g.now()
	g.snap = snap
	g.arm()
	return snap, g.store.SaveSnapshot(ctx, snap)
}

// Touch records user activity, pushing the deadline out to now + duration.
// No-op when no session is active.
func (g *Guard) Touch(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.snap == nil {
		return nil
	}
	g.snap.LastActivity = g.now()
	g.arm()
	return g.store.SaveSnapshot(ctx, g.snap)
}

// SetCommunity records the current community selection on the snapshot.
// Pass nil to clear the selection.
func (g *Guard) SetCommunity(ctx context.Context, community *model.Community) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.snap == nil {
		return nil
	}
	g.snap.Community = community
	return g.store.SaveSnapshot(ctx, g.snap)
}

// Active reports whether a session is live at the time of the call,
// independent of the timer.
func (g *Guard) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snap != nil && g.now().Sub(g.snap.LastActivity) < g.duration
}

// Current returns the active snapshot, or nil.
func (g *Guard) Current() *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snap == nil || g.now().Sub(g.snap.LastActivity) >= g.duration {
		return nil
	}
	return g.snap
}

// Logout clears the session synchronously and cancels the pending deadline.
func (g *Guard) Logout(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.snap = nil
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	return g.store.ClearSnapshot(ctx)
}

// arm re-arms the deadline timer. Callers must hold the mutex.
func (g *Guard) arm() {
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.duration, g.expire)
}

func (g *Guard) expire() {
	g.mu.Lock()
	if g.snap == nil {
		g.mu.Unlock()
		return
	}
	// A Touch between the timer firing and the lock being taken keeps the
	// session alive.
	if g.now().Sub(g.snap.LastActivity) < g.duration {
		g.mu.Unlock()
		return
	}
	g.snap = nil
	g.timer = nil
	g.mu.Unlock()

	_ = g.store.ClearSnapshot(context.Background())
	if g.onExpire != nil {
		g.onExpire()
	}
}
