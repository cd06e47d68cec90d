package repository

import (
	"context"

	"github.com/google/uuid"

	"rsvphub/internal/model"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]model.Event, error)
}
