package checkin

import (
	"context"

	"github.com/google/uuid"

	"rsvphub/internal/model"
)

// Status is the outcome of verifying a scanned attendance code.
type Status string

const (
	// StatusVerified means this scan redeemed the code.
	StatusVerified Status = "verified"
	// StatusAlreadyVerified means the code was valid but had been redeemed
	// before this scan.
	StatusAlreadyVerified Status = "already_verified"
	// StatusCodeNotFound means no RSVP carries the code.
	StatusCodeNotFound Status = "code_not_found"
	// StatusWrongScope means the code belongs to an event outside the
	// verifier's community.
	StatusWrongScope Status = "wrong_scope"
)

// Result describes a verification attempt. RSVP and EventName are set for
// every outcome except StatusCodeNotFound; for StatusAlreadyVerified the RSVP
// carries the scan stamps from the first redemption.
type Result struct {
	Status    Status
	RSVP      *model.RSVP
	EventName string
}

// VerifierStore is the slice of the persistence gateway the verifier needs.
type VerifierStore interface {
	RSVPByCode(ctx context.Context, code string) (*model.RSVPDetail, error)
	ScanRSVP(ctx context.Context, code string, scannedBy uuid.UUID) (*model.ScanResult, error)
}

// Verifier redeems attendance codes scanned at the door. Redemption is a
// single conditional transition in the store, so two racing scans of the same
// code resolve to exactly one StatusVerified.
type Verifier struct {
	store VerifierStore
}

func NewVerifier(store VerifierStore) *Verifier {
	return &Verifier{store: store}
}

// Verify checks the code against the verifier's community and, when it
// matches, attempts to redeem it.
func (v *Verifier) Verify(ctx context.Context, code string, communityID, verifierID uuid.UUID) (*Result, error) {
	detail, err := v.store.RSVPByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return &Result{Status: StatusCodeNotFound}, nil
	}
	if detail.CommunityID == uuid.Nil {
		// Orphan: the event row is gone, so the code has no community to
		// match against.
		return &Result{Status: StatusCodeNotFound}, nil
	}
	if detail.CommunityID != communityID {
		rsvp := detail.RSVP
		return &Result{Status: StatusWrongScope, RSVP: &rsvp, EventName: detail.EventName}, nil
	}

	scan, err := v.store.ScanRSVP(ctx, code, verifierID)
	if err != nil {
		return nil, err
	}
	if scan == nil {
		// Deleted between lookup and redemption.
		return &Result{Status: StatusCodeNotFound}, nil
	}

	status := StatusAlreadyVerified
	if scan.Transitioned {
		status = StatusVerified
	}
	return &Result{Status: status, RSVP: &scan.RSVP, EventName: detail.EventName}, nil
}
