package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/exam-portal-api/internal/models"
)

func TestEnsureAdminCreatesAccount(t *testing.T) {
	users := newUserRepoStub()
	seed := NewSeedService(users, zerolog.Nop())

	err := seed.EnsureAdmin(context.Background(), AdminSeed{
		Name:     "Portal Admin",
		Email:    "  Admin@Example.COM ",
		Password: "bootstrap-secret",
	})
	require.NoError(t, err)

	admin, ok := users.users["admin@example.com"]
	require.True(t, ok)
	require.Equal(t, models.RoleAdmin, admin.Role)
	require.True(t, admin.IsVerified)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("bootstrap-secret")))
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	users := newUserRepoStub()
	seed := NewSeedService(users, zerolog.Nop())
	spec := AdminSeed{Name: "Portal Admin", Email: "admin@example.com", Password: "bootstrap-secret"}

	require.NoError(t, seed.EnsureAdmin(context.Background(), spec))
	first := users.users["admin@example.com"]

	require.NoError(t, seed.EnsureAdmin(context.Background(), spec))
	require.Equal(t, first, users.users["admin@example.com"])
	require.Len(t, users.users, 1)
}

func TestEnsureAdminSkipsWhenUnconfigured(t *testing.T) {
	users := newUserRepoStub()
	seed := NewSeedService(users, zerolog.Nop())

	require.NoError(t, seed.EnsureAdmin(context.Background(), AdminSeed{}))
	require.Empty(t, users.users)
}
