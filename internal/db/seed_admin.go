package db

import (
	"context"
	"errors"

	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/security"
)

type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// AdminStore is the slice of the user repository seeding needs.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

// EnsureAdminUser creates the admin account once. Admins cannot register
// through the API, this is the only way one comes into existence.
// It reports whether a user was created.
func EnsureAdminUser(ctx context.Context, users AdminStore, seed AdminSeed) (bool, error) {
	if seed.Email == "" || seed.Password == "" {
		return false, nil
	}

	_, err := users.GetByEmail(ctx, seed.Email)
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := security.HashPassword(seed.Password)
	if err != nil {
		return false, err
	}

	name := seed.Name
	if name == "" {
		name = "System Administrator"
	}

	_, err = users.Create(ctx, user.User{
		Email:        seed.Email,
		PasswordHash: hash,
		Name:         name,
		Role:         user.RoleAdmin,
	})
	if errors.Is(err, user.ErrEmailTaken) {
		// another instance seeded it first
		return false, nil
	}

	return err == nil, err
}
