package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rsvphub/internal/model"
)

type RSVPRepository interface {
	Create(ctx context.Context, rsvp *model.RSVP) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.RSVP, error)
	GetByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*model.RSVP, error)
	// GetDetailByCode returns the RSVP joined with its event's name and
	// community id.
	GetDetailByCode(ctx context.Context, code string) (*model.RSVPDetail, error)
	// Scan flips scanned false->true and stamps the scan, as one conditional
	// update. It reports whether the transition occurred; a false result with
	// a nil error means the code had already been redeemed.
	Scan(ctx context.Context, code string, scannedBy uuid.UUID, at time.Time) (bool, error)
	GetByCode(ctx context.Context, code string) (*model.RSVP, error)
}
