package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rsvphub/internal/model"
)

type pgRSVPRepository struct {
	db *gorm.DB
}

func NewPGRSVPRepository(db *gorm.DB) RSVPRepository {
	return &pgRSVPRepository{db: db}
}

func (r *pgRSVPRepository) Create(ctx context.Context, rsvp *model.RSVP) error {
	return r.db.WithContext(ctx).Create(rsvp).Error
}

func (r *pgRSVPRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.RSVP, error) {
	var rsvps []model.RSVP
	if err := r.db.WithContext(ctx).
		Order("timestamp").
		Find(&rsvps, "event_id = ?", eventID).Error; err != nil {
		return nil, err
	}
	return rsvps, nil
}

func (r *pgRSVPRepository) GetByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*model.RSVP, error) {
	var rsvp model.RSVP
	if err := r.db.WithContext(ctx).
		First(&rsvp, "event_id = ? AND user_id = ?", eventID, userID).Error; err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *pgRSVPRepository) GetByCode(ctx context.Context, code string) (*model.RSVP, error) {
	var rsvp model.RSVP
	if err := r.db.WithContext(ctx).First(&rsvp, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *pgRSVPRepository) GetDetailByCode(ctx context.Context, code string) (*model.RSVPDetail, error) {
	rsvp, err := r.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	var event model.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", rsvp.EventID).Error; err != nil {
		return nil, err
	}
	return &model.RSVPDetail{
		RSVP:        *rsvp,
		EventName:   event.Name,
		CommunityID: event.CommunityID,
	}, nil
}

func (r *pgRSVPRepository) Scan(ctx context.Context, code string, scannedBy uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.RSVP{}).
		Where("code = ? AND scanned = ?", code, false).
		Updates(map[string]interface{}{
			"scanned":        true,
			"scan_timestamp": at,
			"scanned_by":     scannedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
