package checkin

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rsvphub/internal/model"
)

// IssuerStore is the slice of the persistence gateway the issuer needs.
// Lookups return (nil, nil) when no record matches.
type IssuerStore interface {
	RSVPForUser(ctx context.Context, eventID, userID uuid.UUID) (*model.RSVP, error)
	RSVPByCode(ctx context.Context, code string) (*model.RSVPDetail, error)
	CreateRSVP(ctx context.Context, rsvp *model.RSVP) (*model.RSVP, error)
}

// Issuer hands out attendance codes. Issuing is idempotent per (event, user):
// asking again returns the RSVP from the first ask, same code, no new record.
type Issuer struct {
	store IssuerStore
}

func NewIssuer(store IssuerStore) *Issuer {
	return &Issuer{store: store}
}

// Issue returns the user's RSVP for the event, creating one with a fresh
// unique code on first call.
func (i *Issuer) Issue(ctx context.Context, event *model.Event, user *model.User) (*model.RSVP, error) {
	existing, err := i.store.RSVPForUser(ctx, event.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	code, err := UniqueCode(ctx, DefaultCodeLength, func(ctx context.Context, code string) (bool, error) {
		detail, err := i.store.RSVPByCode(ctx, code)
		if err != nil {
			return false, err
		}
		return detail != nil, nil
	})
	if err != nil {
		return nil, err
	}

	return i.store.CreateRSVP(ctx, &model.RSVP{
		EventID:   event.ID,
		UserID:    user.ID,
		UserName:  user.Name,
		Code:      code,
		Timestamp: time.Now().UTC(),
	})
}
