package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/models"
	"github.com/noah-isme/exam-portal-api/internal/repository"
)

// AuthService registers accounts and exchanges credentials for signed
// tokens. Students are usable immediately; teacher accounts stay locked
// until an admin verifies them.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
}

// AuthConfig carries token signing parameters.
type AuthConfig struct {
	JWTSecret string
	// TokenTTL bounds token lifetime; zero falls back to 24h.
	TokenTTL time.Duration
	// Now supplies claim timestamps; defaults to time.Now.
	Now func() time.Time
}

type authService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
	secret    string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService constructs an auth service.
func NewAuthService(userRepo repository.UserRepository, validate *validator.Validate, logger zerolog.Logger, cfg AuthConfig) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &authService{
		users:     userRepo,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		secret:    cfg.JWTSecret,
		tokenTTL:  cfg.TokenTTL,
		now:       cfg.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:         strings.TrimSpace(payload.Name),
		Email:        strings.ToLower(strings.TrimSpace(payload.Email)),
		PasswordHash: string(hash),
		Role:         payload.Role,
		// Teachers need an admin sign-off before they can author exams.
		IsVerified: payload.Role == models.RoleStudent,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailAlreadyRegistered
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("account registered")
	return dto.NewUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return dto.AuthResponse{}, ErrAccountNotVerified
	}

	token, err := s.signToken(user)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("login succeeded")
	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) signToken(user models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"role":     user.Role,
		"name":     user.Name,
		"verified": user.IsVerified,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
}
