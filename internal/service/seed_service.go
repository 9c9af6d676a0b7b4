package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/models"
	"github.com/noah-isme/exam-portal-api/internal/repository"
)

// AdminSeed describes the bootstrap administrator account. Seeding is
// skipped entirely when Email or Password is empty.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

// SeedService provisions the bootstrap data the portal needs before the
// first request.
type SeedService interface {
	EnsureAdmin(ctx context.Context, seed AdminSeed) error
}

type seedService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewSeedService constructs a seed service.
func NewSeedService(userRepo repository.UserRepository, logger zerolog.Logger) SeedService {
	return &seedService{
		users:  userRepo,
		logger: logger.With().Str("component", "seed_service").Logger(),
	}
}

// EnsureAdmin creates the configured administrator account if it does not
// exist yet. Safe to run on every startup; a concurrent replica creating
// the same account is treated as success.
func (s *seedService) EnsureAdmin(ctx context.Context, seed AdminSeed) error {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" || seed.Password == "" {
		s.logger.Debug().Msg("admin seed not configured, skipping")
		return nil
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(seed.Name)
	if name == "" {
		name = "Administrator"
	}

	admin := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsVerified:   true,
	}
	if err := s.users.Create(ctx, &admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}

	s.logger.Info().Uint("user_id", admin.ID).Str("email", email).Msg("bootstrap admin created")
	return nil
}
