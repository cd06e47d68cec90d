package checkin_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsvphub/internal/checkin"
	"rsvphub/internal/gateway"
	"rsvphub/internal/model"
)

// Full check-in flow over the embedded store: community, event, issuance,
// then every verification outcome in sequence.
func TestCheckInFlow_LocalStore(t *testing.T) {
	store, err := gateway.OpenLocal(filepath.Join(t.TempDir(), "flow.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	admin, err := store.CreateUser(ctx, "Ada", "ada@example.com", "hunter22", true)
	require.NoError(t, err)
	attendee, err := store.CreateUser(ctx, "Ben", "ben@example.com", "password1", false)
	require.NoError(t, err)

	code, err := checkin.UniqueCode(ctx, checkin.DefaultCodeLength,
		func(ctx context.Context, code string) (bool, error) {
			existing, err := store.CommunityByCode(ctx, code)
			return existing != nil, err
		})
	require.NoError(t, err)
	community, err := store.CreateCommunity(ctx, &model.Community{
		Name: "Gophers", Code: code, AdminID: admin.ID,
	})
	require.NoError(t, err)

	_, err = store.JoinCommunity(ctx, community.Code, attendee.ID)
	require.NoError(t, err)

	event, err := store.CreateEvent(ctx, &model.Event{
		CommunityID: community.ID, Name: "Go Meetup",
		Date: "2026-09-01", Time: "18:30", Location: "Room 4",
		CreatedBy: admin.ID,
	})
	require.NoError(t, err)

	issuer := checkin.NewIssuer(store)
	rsvp, err := issuer.Issue(ctx, event, attendee)
	require.NoError(t, err)
	require.Len(t, rsvp.Code, checkin.DefaultCodeLength)

	// Issuing again hands back the same RSVP.
	again, err := issuer.Issue(ctx, event, attendee)
	require.NoError(t, err)
	assert.Equal(t, rsvp.Code, again.Code)
	assert.Equal(t, rsvp.ID, again.ID)

	verifier := checkin.NewVerifier(store)

	result, err := verifier.Verify(ctx, rsvp.Code, community.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, checkin.StatusVerified, result.Status)
	assert.Equal(t, "Ben", result.RSVP.UserName)
	assert.Equal(t, "Go Meetup", result.EventName)
	require.NotNil(t, result.RSVP.ScanTimestamp)
	firstScan := *result.RSVP.ScanTimestamp

	result, err = verifier.Verify(ctx, rsvp.Code, community.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, checkin.StatusAlreadyVerified, result.Status)
	assert.True(t, firstScan.Equal(*result.RSVP.ScanTimestamp))

	result, err = verifier.Verify(ctx, rsvp.Code, uuid.New(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, checkin.StatusWrongScope, result.Status)

	result, err = verifier.Verify(ctx, "ZZ9999", community.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, checkin.StatusCodeNotFound, result.Status)
}
