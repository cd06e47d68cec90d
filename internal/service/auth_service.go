package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"rsvphub/internal/model"
	"rsvphub/internal/repository"
	"rsvphub/pkg/crypto"
	jwtpkg "rsvphub/pkg/jwt"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string, isAdmin bool) (*model.User, error)
	// Login returns the authenticated user and a signed access token.
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	stateStore  repository.StateStore
	jwtManager  *jwtpkg.Manager
	maxAttempts int
	lockout     time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	stateStore repository.StateStore,
	jwtManager *jwtpkg.Manager,
	maxAttempts int,
	lockout time.Duration,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		stateStore:  stateStore,
		jwtManager:  jwtManager,
		maxAttempts: maxAttempts,
		lockout:     lockout,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string, isAdmin bool) (*model.User, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	key := attemptsKey(email)

	if data, err := s.stateStore.Get(ctx, key); err == nil && len(data) > 0 {
		var n int64
		fmt.Sscanf(string(data), "%d", &n)
		if n >= int64(s.maxAttempts) {
			return nil, "", ErrTooManyAttempts
		}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordFailure(ctx, key)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if !crypto.CheckPassword(password, user.PasswordHash) {
		s.recordFailure(ctx, key)
		return nil, "", ErrInvalidCredentials
	}

	// Successful login clears the failure counter.
	_ = s.stateStore.Delete(ctx, key)

	token, err := s.jwtManager.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users, nil
}

func (s *authService) recordFailure(ctx context.Context, key string) {
	n, err := s.stateStore.Incr(ctx, key, s.lockout)
	if err == nil && n >= int64(s.maxAttempts) {
		// Lockout window restarts at the last failure.
		_ = s.stateStore.Set(ctx, key, []byte(fmt.Sprintf("%d", n)), s.lockout)
	}
}

func attemptsKey(email string) string {
	return "login_attempts:" + email
}
