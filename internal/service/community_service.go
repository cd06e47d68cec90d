package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rsvphub/internal/checkin"
	"rsvphub/internal/model"
	"rsvphub/internal/repository"
)

type CommunityService interface {
	// Create makes a new community with a fresh unique invite code. Only
	// admin users may create communities.
	Create(ctx context.Context, name, description string, adminID uuid.UUID) (*model.Community, error)
	// Join adds the user to the community matching the invite code.
	Join(ctx context.Context, code string, userID uuid.UUID) (*model.Community, error)
	GetByCode(ctx context.Context, code string) (*model.Community, error)
	List(ctx context.Context) ([]model.Community, error)
}

type communityService struct {
	communityRepo repository.CommunityRepository
	userRepo      repository.UserRepository
}

func NewCommunityService(communityRepo repository.CommunityRepository, userRepo repository.UserRepository) CommunityService {
	return &communityService{communityRepo: communityRepo, userRepo: userRepo}
}

func (s *communityService) Create(ctx context.Context, name, description string, adminID uuid.UUID) (*model.Community, error) {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	if !admin.IsAdmin {
		return nil, ErrForbidden
	}

	code, err := checkin.UniqueCode(ctx, checkin.DefaultCodeLength, func(ctx context.Context, code string) (bool, error) {
		_, err := s.communityRepo.GetByCode(ctx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate community code: %w", err)
	}

	community := &model.Community{
		Name:        name,
		Description: description,
		Code:        code,
		AdminID:     adminID,
	}
	if err := s.communityRepo.Create(ctx, community); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCodeTaken
		}
		return nil, fmt.Errorf("create community: %w", err)
	}
	return community, nil
}

func (s *communityService) Join(ctx context.Context, code string, userID uuid.UUID) (*model.Community, error) {
	community, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !community.IsMember(userID) {
		if err := s.communityRepo.AddMember(ctx, community.ID, userID); err != nil {
			return nil, fmt.Errorf("add member: %w", err)
		}
		community.Members = append(community.Members, userID)
	}
	return community, nil
}

func (s *communityService) GetByCode(ctx context.Context, code string) (*model.Community, error) {
	community, err := s.communityRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get community: %w", err)
	}
	return community, nil
}

func (s *communityService) List(ctx context.Context) ([]model.Community, error) {
	communities, err := s.communityRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	return communities, nil
}
