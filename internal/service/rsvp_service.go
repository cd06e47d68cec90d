package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rsvphub/internal/model"
	"rsvphub/internal/repository"
)

type RSVPService interface {
	// Create stores a freshly issued RSVP. If the (event, user) pair already
	// holds one, the existing record is returned unchanged, keeping issuance
	// idempotent on the server side as well.
	Create(ctx context.Context, rsvp *model.RSVP) (*model.RSVP, error)
	// ListForEvent returns all RSVPs for an event. Only the admin of the
	// event's community may see the aggregate.
	ListForEvent(ctx context.Context, eventID, requesterID uuid.UUID) ([]model.RSVP, error)
	// GetForEventAndUser returns the requester's own RSVP for an event, so
	// attendees can check for an existing code without admin rights.
	GetForEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*model.RSVP, error)
	GetDetailByCode(ctx context.Context, code string) (*model.RSVPDetail, error)
	// Scan performs the conditional issued->scanned transition.
	Scan(ctx context.Context, code string, scannedBy uuid.UUID) (*model.ScanResult, error)
}

type rsvpService struct {
	rsvpRepo      repository.RSVPRepository
	eventRepo     repository.EventRepository
	communityRepo repository.CommunityRepository
}

func NewRSVPService(
	rsvpRepo repository.RSVPRepository,
	eventRepo repository.EventRepository,
	communityRepo repository.CommunityRepository,
) RSVPService {
	return &rsvpService{
		rsvpRepo:      rsvpRepo,
		eventRepo:     eventRepo,
		communityRepo: communityRepo,
	}
}

func (s *rsvpService) Create(ctx context.Context, rsvp *model.RSVP) (*model.RSVP, error) {
	existing, err := s.rsvpRepo.GetByEventAndUser(ctx, rsvp.EventID, rsvp.UserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing rsvp: %w", err)
	}

	if rsvp.Timestamp.IsZero() {
		rsvp.Timestamp = time.Now()
	}
	rsvp.Scanned = false
	if err := s.rsvpRepo.Create(ctx, rsvp); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race on either unique index. If the pair now has a
			// record, hand that back; otherwise the code collided.
			if existing, getErr := s.rsvpRepo.GetByEventAndUser(ctx, rsvp.EventID, rsvp.UserID); getErr == nil {
				return existing, nil
			}
			return nil, ErrCodeTaken
		}
		return nil, fmt.Errorf("create rsvp: %w", err)
	}
	return rsvp, nil
}

func (s *rsvpService) ListForEvent(ctx context.Context, eventID, requesterID uuid.UUID) ([]model.RSVP, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	community, err := s.communityRepo.GetByID(ctx, event.CommunityID)
	if err != nil {
		return nil, fmt.Errorf("get community: %w", err)
	}
	if community.AdminID != requesterID {
		return nil, ErrForbidden
	}

	rsvps, err := s.rsvpRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	return rsvps, nil
}

func (s *rsvpService) GetForEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*model.RSVP, error) {
	rsvp, err := s.rsvpRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get rsvp for user: %w", err)
	}
	return rsvp, nil
}

func (s *rsvpService) GetDetailByCode(ctx context.Context, code string) (*model.RSVPDetail, error) {
	detail, err := s.rsvpRepo.GetDetailByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get rsvp by code: %w", err)
	}
	return detail, nil
}

func (s *rsvpService) Scan(ctx context.Context, code string, scannedBy uuid.UUID) (*model.ScanResult, error) {
	transitioned, err := s.rsvpRepo.Scan(ctx, code, scannedBy, time.Now())
	if err != nil {
		return nil, fmt.Errorf("scan rsvp: %w", err)
	}

	rsvp, err := s.rsvpRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get rsvp: %w", err)
	}
	return &model.ScanResult{RSVP: *rsvp, Transitioned: transitioned}, nil
}
