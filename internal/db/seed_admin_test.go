package db

import (
	"context"
	"testing"

	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/repo/memory"
	"github.com/geocoder89/storeratings/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	users := memory.NewDB().Users()
	seed := AdminSeed{Email: "Admin@Example.com", Password: "Admin#123"}

	created, err := EnsureAdminUser(ctx, users, seed)
	require.NoError(t, err)
	assert.True(t, created)

	admin, err := users.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, admin.Role)
	assert.NoError(t, security.CheckPassword(admin.PasswordHash, "Admin#123"))

	created, err = EnsureAdminUser(ctx, users, seed)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureAdminUserSkipsWithoutCredentials(t *testing.T) {
	created, err := EnsureAdminUser(context.Background(), memory.NewDB().Users(), AdminSeed{})
	require.NoError(t, err)
	assert.False(t, created)
}
