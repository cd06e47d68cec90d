package session

import (
	"context"
	"time"

	"rsvphub/internal/model"
)

// Snapshot is the persisted session state: who is logged in, which community
// they are working in, and when they last did anything.
type Snapshot struct {
	User         *model.User      `json:"user"`
	Community    *model.Community `json:"community,omitempty"`
	LastActivity time.Time        `json:"lastActivity"`
	// Token is the remote backend's bearer token, empty in local mode.
	Token string `json:"token,omitempty"`
}

// SnapshotStore persists the session snapshot across process restarts.
// Load returns (nil, nil) when no session is stored.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	ClearSnapshot(ctx context.Context) error
}
