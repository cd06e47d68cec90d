package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rsvphub/internal/model"
)

type pgCommunityRepository struct {
	db *gorm.DB
}

func NewPGCommunityRepository(db *gorm.DB) CommunityRepository {
	return &pgCommunityRepository{db: db}
}

func (r *pgCommunityRepository) Create(ctx context.Context, community *model.Community) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		member := model.CommunityMember{
			CommunityID: community.ID,
			UserID:      community.AdminID,
			JoinedAt:    time.Now(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		community.Members = []uuid.UUID{community.AdminID}
		return nil
	})
}

func (r *pgCommunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Community, error) {
	var community model.Community
	if err := r.db.WithContext(ctx).First(&community, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return r.withMembers(ctx, &community)
}

func (r *pgCommunityRepository) GetByCode(ctx context.Context, code string) (*model.Community, error) {
	var community model.Community
	if err := r.db.WithContext(ctx).First(&community, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return r.withMembers(ctx, &community)
}

func (r *pgCommunityRepository) List(ctx context.Context) ([]model.Community, error) {
	var communities []model.Community
	if err := r.db.WithContext(ctx).Order("created_at").Find(&communities).Error; err != nil {
		return nil, err
	}
	for i := range communities {
		if _, err := r.withMembers(ctx, &communities[i]); err != nil {
			return nil, err
		}
	}
	return communities, nil
}

func (r *pgCommunityRepository) AddMember(ctx context.Context, communityID, userID uuid.UUID) error {
	member := model.CommunityMember{
		CommunityID: communityID,
		UserID:      userID,
		JoinedAt:    time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&member).Error
}

func (r *pgCommunityRepository) withMembers(ctx context.Context, community *model.Community) (*model.Community, error) {
	var members []model.CommunityMember
	if err := r.db.WithContext(ctx).
		Order("joined_at").
		Find(&members, "community_id = ?", community.ID).Error; err != nil {
		return nil, err
	}
	community.Members = make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		community.Members = append(community.Members, m.UserID)
	}
	return community, nil
}
