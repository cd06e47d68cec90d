package gateway

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsvphub/internal/model"
	"rsvphub/internal/session"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	store, err := OpenLocal(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLocal_RegisterAndAuthenticate(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "Ada", "ada@example.com", "hunter22", true)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.True(t, user.IsAdmin)
	assert.Empty(t, user.PasswordHash)

	got, err := store.Authenticate(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	got, err = store.Authenticate(ctx, "ada@example.com", "wrong")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.Authenticate(ctx, "nobody@example.com", "hunter22")
	require.NoError(t, err)
	assert.Nil(t, got)

	users, err := store.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
}

func TestLocal_DuplicateEmailConflicts(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "Ada", "ada@example.com", "hunter22", false)
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, "Imposter", "ada@example.com", "other", false)
	require.ErrorIs(t, err, ErrConflict)
}

func TestLocal_CommunityLifecycle(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	admin, err := store.CreateUser(ctx, "Ada", "ada@example.com", "hunter22", true)
	require.NoError(t, err)

	community, err := store.CreateCommunity(ctx, &model.Community{
		Name:    "Gophers",
		Code:    "ABC123",
		AdminID: admin.ID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, community.ID)
	assert.Equal(t, []uuid.UUID{admin.ID}, community.Members)

	// Code collision rejected.
	_, err = store.CreateCommunity(ctx, &model.Community{Name: "Other", Code: "ABC123", AdminID: admin.ID})
	require.ErrorIs(t, err, ErrConflict)

	got, err := store.CommunityByCode(ctx, "ABC123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, community.ID, got.ID)

	got, err = store.CommunityByCode(ctx, "NOPE99")
	require.NoError(t, err)
	assert.Nil(t, got)

	member, err := store.CreateUser(ctx, "Ben", "ben@example.com", "pw", false)
	require.NoError(t, err)

	joined, err := store.JoinCommunity(ctx, "ABC123", member.ID)
	require.NoError(t, err)
	require.NotNil(t, joined)
	assert.True(t, joined.IsMember(member.ID))

	// Joining twice keeps one membership row.
	joined, err = store.JoinCommunity(ctx, "ABC123", member.ID)
	require.NoError(t, err)
	assert.Len(t, joined.Members, 2)

	missing, err := store.JoinCommunity(ctx, "NOPE99", member.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := store.Communities(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLocal_EventsScopedByCommunity(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	communityA := uuid.New()
	communityB := uuid.New()
	creator := uuid.New()

	_, err := store.CreateEvent(ctx, &model.Event{
		CommunityID: communityA, Name: "Meetup", Date: "2026-09-01", Time: "18:30", CreatedBy: creator,
	})
	require.NoError(t, err)
	_, err = store.CreateEvent(ctx, &model.Event{
		CommunityID: communityB, Name: "Other", Date: "2026-09-02", Time: "19:00", CreatedBy: creator,
	})
	require.NoError(t, err)

	events, err := store.EventsForCommunity(ctx, communityA)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Meetup", events[0].Name)
}

func TestLocal_RSVPIdempotentPerEventAndUser(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	eventID := uuid.New()
	userID := uuid.New()

	first, err := store.CreateRSVP(ctx, &model.RSVP{
		EventID: eventID, UserID: userID, UserName: "Ada", Code: "AAAAAA",
	})
	require.NoError(t, err)

	// Same pair again returns the original record, even with a new code.
	second, err := store.CreateRSVP(ctx, &model.RSVP{
		EventID: eventID, UserID: userID, UserName: "Ada", Code: "BBBBBB",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "AAAAAA", second.Code)

	// A different user colliding on the code conflicts.
	_, err = store.CreateRSVP(ctx, &model.RSVP{
		EventID: eventID, UserID: uuid.New(), UserName: "Ben", Code: "AAAAAA",
	})
	require.ErrorIs(t, err, ErrConflict)

	rsvps, err := store.RSVPsForEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Len(t, rsvps, 1)

	got, err := store.RSVPForUser(ctx, eventID, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
}

func TestLocal_RSVPByCodeJoinsEvent(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	communityID := uuid.New()
	event, err := store.CreateEvent(ctx, &model.Event{
		CommunityID: communityID, Name: "Meetup", Date: "2026-09-01", Time: "18:30", CreatedBy: uuid.New(),
	})
	require.NoError(t, err)

	_, err = store.CreateRSVP(ctx, &model.RSVP{
		EventID: event.ID, UserID: uuid.New(), UserName: "Ada", Code: "AAAAAA",
	})
	require.NoError(t, err)

	detail, err := store.RSVPByCode(ctx, "AAAAAA")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "Meetup", detail.EventName)
	assert.Equal(t, communityID, detail.CommunityID)

	detail, err = store.RSVPByCode(ctx, "ZZZZZZ")
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestLocal_ScanTransitionsOnce(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	eventID := uuid.New()
	doorA := uuid.New()
	doorB := uuid.New()

	_, err := store.CreateRSVP(ctx, &model.RSVP{
		EventID: eventID, UserID: uuid.New(), UserName: "Ada", Code: "AAAAAA",
	})
	require.NoError(t, err)

	result, err := store.ScanRSVP(ctx, "AAAAAA", doorA)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Transitioned)
	require.NotNil(t, result.RSVP.ScanTimestamp)
	assert.Equal(t, doorA, *result.RSVP.ScannedBy)
	firstScan := *result.RSVP.ScanTimestamp

	result, err = store.ScanRSVP(ctx, "AAAAAA", doorB)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Transitioned)
	assert.WithinDuration(t, firstScan, *result.RSVP.ScanTimestamp, time.Millisecond)
	assert.Equal(t, doorA, *result.RSVP.ScannedBy)

	result, err = store.ScanRSVP(ctx, "ZZZZZZ", doorA)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestLocal_SnapshotRoundTrip(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	none, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	user := &model.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
	community := &model.Community{ID: uuid.New(), Name: "Gophers", Code: "ABC123"}
	snap := &session.Snapshot{
		User:         user,
		Community:    community,
		LastActivity: time.Now().UTC().Truncate(time.Second),
		Token:        "bearer-token",
	}
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	got, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.User.ID)
	require.NotNil(t, got.Community)
	assert.Equal(t, community.Code, got.Community.Code)
	assert.True(t, snap.LastActivity.Equal(got.LastActivity))
	assert.Equal(t, "bearer-token", got.Token)

	// Dropping the community clears the stored selection.
	snap.Community = nil
	snap.Token = ""
	require.NoError(t, store.SaveSnapshot(ctx, snap))
	got, err = store.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Community)
	assert.Empty(t, got.Token)

	require.NoError(t, store.ClearSnapshot(ctx))
	got, err = store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLocal_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	store, err := OpenLocal(path)
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, "Ada", "ada@example.com", "hunter22", false)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenLocal(path)
	require.NoError(t, err)
	defer reopened.Close()

	user, err := reopened.Authenticate(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ada", user.Name)
}
