package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rsvphub/internal/model"
	"rsvphub/internal/repository"
)

type EventService interface {
	// Create makes an event under a community. Only the community's admin of
	// record may create events.
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	ListForCommunity(ctx context.Context, communityID uuid.UUID) ([]model.Event, error)
}

type eventService struct {
	eventRepo     repository.EventRepository
	communityRepo repository.CommunityRepository
}

func NewEventService(eventRepo repository.EventRepository, communityRepo repository.CommunityRepository) EventService {
	return &eventService{eventRepo: eventRepo, communityRepo: communityRepo}
}

func (s *eventService) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	community, err := s.communityRepo.GetByID(ctx, event.CommunityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get community: %w", err)
	}
	if community.AdminID != event.CreatedBy {
		return nil, ErrForbidden
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListForCommunity(ctx context.Context, communityID uuid.UUID) ([]model.Event, error) {
	events, err := s.eventRepo.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
