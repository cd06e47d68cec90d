package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rsvphub/internal/model"
)

type pgEventRepository struct {
	db *gorm.DB
}

func NewPGEventRepository(db *gorm.DB) EventRepository {
	return &pgEventRepository{db: db}
}

func (r *pgEventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *pgEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *pgEventRepository) ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).
		Order("date, time").
		Find(&events, "community_id = ?", communityID).Error; err != nil {
		return nil, err
	}
	return events, nil
}
