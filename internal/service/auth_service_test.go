package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/models"
)

type userRepoStub struct {
	users     map[string]models.User
	createErr error
	updated   []models.User
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: map[string]models.User{}}
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.users[user.Email]; exists {
		return gorm.ErrDuplicatedKey
	}
	user.ID = uint(len(s.users) + 1)
	s.users[user.Email] = *user
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	s.updated = append(s.updated, *user)
	s.users[user.Email] = *user
	return nil
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *userRepoStub) List(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	for _, user := range s.users {
		if role == "" || user.Role == role {
			users = append(users, user)
		}
	}
	return users, nil
}

func (s *userRepoStub) Count(ctx context.Context, role string) (int64, error) {
	users, _ := s.List(ctx, role)
	return int64(len(users)), nil
}

func newAuth(users *userRepoStub) AuthService {
	return NewAuthService(users, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop(), AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		Now:       func() time.Time { return examStart },
	})
}

func TestRegisterNormalisesEmailAndGatesTeachers(t *testing.T) {
	users := newUserRepoStub()
	svc := newAuth(users)

	student, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Asha Rao", Email: "  Asha@Example.COM ", Password: "correct-horse", Role: models.RoleStudent,
	})
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", student.Email)
	require.True(t, student.IsVerified)

	teacher, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Vikram Shah", Email: "vikram@example.com", Password: "correct-horse", Role: models.RoleTeacher,
	})
	require.NoError(t, err)
	require.False(t, teacher.IsVerified, "teachers wait for admin verification")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newUserRepoStub()
	svc := newAuth(users)

	payload := dto.RegisterRequest{Name: "Asha Rao", Email: "asha@example.com", Password: "correct-horse", Role: models.RoleStudent}
	_, err := svc.Register(context.Background(), payload)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), payload)
	require.ErrorIs(t, err, ErrEmailAlreadyRegistered)
}

func TestLoginIssuesTokenWithRoleClaims(t *testing.T) {
	users := newUserRepoStub()
	svc := newAuth(users)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Asha Rao", Email: "asha@example.com", Password: "correct-horse", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	auth, err := svc.Login(context.Background(), dto.LoginRequest{Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", auth.User.Email)

	token, err := jwt.Parse(auth.Token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, float64(auth.User.ID), claims["sub"])
	require.Equal(t, models.RoleStudent, claims["role"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := newUserRepoStub()
	svc := newAuth(users)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Asha Rao", Email: "asha@example.com", Password: "correct-horse", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBlocksUnverifiedTeacher(t *testing.T) {
	users := newUserRepoStub()
	svc := newAuth(users)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Vikram Shah", Email: "vikram@example.com", Password: "correct-horse", Role: models.RoleTeacher,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "vikram@example.com", Password: "correct-horse"})
	require.ErrorIs(t, err, ErrAccountNotVerified)
}

func TestRegisterStoresBcryptHash(t *testing.T) {
	users := newUserRepoStub()
	svc := newAuth(users)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Asha Rao", Email: "asha@example.com", Password: "correct-horse", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	stored := users.users["asha@example.com"]
	require.True(t, strings.HasPrefix(stored.PasswordHash, "$2"))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")))
}
