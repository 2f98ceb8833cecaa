package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/venue-booking-backend/internal/auth"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/validate"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
)

// Service defines business logic related to users.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (User, error)
	Login(ctx context.Context, email, password string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	// Provision creates the account if its id is unused. It reports whether it did.
	Provision(ctx context.Context, req ProvisionRequest) (User, bool, error)
}

type service struct {
	store  store.Store
	repo   Repository
	hasher auth.PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new user Service.
func NewService(st store.Store, repo Repository, hasher auth.PasswordHasher, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		store:  st,
		repo:   repo,
		hasher: hasher,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Role == "" {
		req.Role = RoleCustomer
	}
	if err := validate.Struct(req); err != nil {
		return User{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return User{}, ErrPasswordTooLong
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         req.Role,
		IsActive:     true,
		CreatedAt:    s.now(),
	}

	err = s.store.Atomic(ctx, func(p store.Partitions) error {
		_, exists, err := s.repo.GetByEmail(ctx, p, u.Email)
		if err != nil {
			return fmt.Errorf("failed to check existing email: %w", err)
		}
		if exists {
			return ErrEmailAlreadyUsed
		}
		return s.repo.Save(ctx, p, u)
	})
	if err != nil {
		return User{}, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *service) Provision(ctx context.Context, req ProvisionRequest) (User, bool, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return User{}, false, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return User{}, false, ErrPasswordTooLong
	}
	if err != nil {
		return User{}, false, fmt.Errorf("failed to hash password: %w", err)
	}

	var (
		u       User
		created bool
	)
	err = s.store.Atomic(ctx, func(p store.Partitions) error {
		existing, ok, err := s.repo.GetByID(ctx, p, req.ID)
		if err != nil {
			return err
		}
		if ok {
			u = existing
			return nil
		}
		if _, taken, err := s.repo.GetByEmail(ctx, p, req.Email); err != nil {
			return fmt.Errorf("failed to check existing email: %w", err)
		} else if taken {
			return ErrEmailAlreadyUsed
		}

		u = User{
			ID:           req.ID,
			Email:        req.Email,
			PasswordHash: hash,
			Name:         req.Name,
			Role:         req.Role,
			IsActive:     true,
			CreatedAt:    s.now(),
		}
		created = true
		return s.repo.Save(ctx, p, u)
	})
	if err != nil {
		return User{}, false, err
	}
	if created {
		s.logger.InfoContext(ctx, "user provisioned", "user_id", u.ID, "role", u.Role)
	}
	return u, created, nil
}

func (s *service) Login(ctx context.Context, email, password string) (User, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" || strings.TrimSpace(password) == "" {
		return User{}, ErrInvalidCredentials
	}

	u, ok, err := s.repo.GetByEmail(ctx, s.store, cleanEmail)
	if err != nil {
		return User{}, fmt.Errorf("failed to fetch user by email: %w", err)
	}
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return User{}, ErrInactiveUser
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}

	// Best effort: a failed stamp or rehash does not fail the login.
	now := s.now()
	u.LastLoginAt = &now
	if s.hasher.NeedsRehash(u.PasswordHash) {
		if hash, err := s.hasher.Hash(password); err == nil {
			u.PasswordHash = hash
		}
	}
	err = s.store.Atomic(ctx, func(p store.Partitions) error {
		return s.repo.Save(ctx, p, u)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to update last login", "user_id", u.ID, "error", err)
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (User, error) {
	u, ok, err := s.repo.GetByID(ctx, s.store, id)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
