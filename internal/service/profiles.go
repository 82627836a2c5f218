package service

import (
	"context"

	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/geocoder89/storeratings/internal/policy"
	"github.com/geocoder89/storeratings/internal/validation"
)

type ProfileService struct {
	users UserRepository
	prom  *observability.Prom
}

func NewProfileService(users UserRepository, prom *observability.Prom) *ProfileService {
	return &ProfileService{users: users, prom: prom}
}

func (s *ProfileService) Get(ctx context.Context, p user.Principal, userID string) (user.Profile, error) {
	if err := authorize(s.prom, p, policy.ProfileRead, policy.Target{UserID: userID}); err != nil {
		return user.Profile{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.Profile{}, translate(ctx, "profiles.get", err)
	}
	return u.Profile(), nil
}

// Update changes only the fields present in patch.
func (s *ProfileService) Update(ctx context.Context, p user.Principal, userID string, patch user.ProfilePatch) (user.Profile, error) {
	if err := authorize(s.prom, p, policy.ProfileUpdate, policy.Target{UserID: userID}); err != nil {
		return user.Profile{}, err
	}

	patch = patch.Normalized()
	if err := validation.Struct(user.UpdateProfileRequest{Name: patch.Name, Address: patch.Address}); err != nil {
		return user.Profile{}, err
	}

	if patch.Empty() {
		return s.Get(ctx, p, userID)
	}

	u, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return user.Profile{}, translate(ctx, "profiles.update", err)
	}
	return u.Profile(), nil
}
