// Package gateway is the client-side persistence layer. The same Store
// contract is served by two backends: an embedded sqlite store (Local) and
// the HTTP API (Remote), selected once at startup. Callers never branch on
// the backend.
package gateway

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"rsvphub/internal/model"
)

var (
	// ErrBackendUnavailable reports a failed remote write. Reads degrade to
	// empty or nil results instead of returning it.
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Store is the uniform persistence contract over the four record types.
// Lookups return (nil, nil) when the record does not exist; errors are
// reserved for real failures.
type Store interface {
	// Users
	Users(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, name, email, password string, isAdmin bool) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)

	// Communities
	Communities(ctx context.Context) ([]model.Community, error)
	CreateCommunity(ctx context.Context, community *model.Community) (*model.Community, error)
	CommunityByCode(ctx context.Context, code string) (*model.Community, error)
	JoinCommunity(ctx context.Context, code string, userID uuid.UUID) (*model.Community, error)

	// Events
	CreateEvent(ctx context.Context, event *model.Event) (*model.Event, error)
	EventsForCommunity(ctx context.Context, communityID uuid.UUID) ([]model.Event, error)

	// RSVPs
	CreateRSVP(ctx context.Context, rsvp *model.RSVP) (*model.RSVP, error)
	RSVPsForEvent(ctx context.Context, eventID uuid.UUID) ([]model.RSVP, error)
	RSVPForUser(ctx context.Context, eventID, userID uuid.UUID) (*model.RSVP, error)
	RSVPByCode(ctx context.Context, code string) (*model.RSVPDetail, error)
	// ScanRSVP performs the conditional issued->scanned transition and
	// reports whether it happened. (nil, nil) when the code is unknown.
	ScanRSVP(ctx context.Context, code string, scannedBy uuid.UUID) (*model.ScanResult, error)

	Close() error
}
