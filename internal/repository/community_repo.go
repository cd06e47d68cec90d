package repository

import (
	"context"

	"github.com/google/uuid"

	"rsvphub/internal/model"
)

type CommunityRepository interface {
	// Create stores the community and records the admin as its first member.
	Create(ctx context.Context, community *model.Community) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Community, error)
	GetByCode(ctx context.Context, code string) (*model.Community, error)
	List(ctx context.Context) ([]model.Community, error)
	// AddMember is idempotent: adding an existing member is a no-op.
	AddMember(ctx context.Context, communityID, userID uuid.UUID) error
}
