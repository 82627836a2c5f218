package service

import (
	"context"

	"github.com/geocoder89/storeratings/internal/apperr"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/geocoder89/storeratings/internal/policy"
)

// UserAdminService is the admin's view over all accounts.
type UserAdminService struct {
	users   UserRepository
	listing *StoreListing
	prom    *observability.Prom
}

func NewUserAdminService(users UserRepository, listing *StoreListing, prom *observability.Prom) *UserAdminService {
	return &UserAdminService{users: users, listing: listing, prom: prom}
}

func (s *UserAdminService) List(ctx context.Context, p user.Principal, filter user.ListFilter) ([]user.Profile, error) {
	if err := authorize(s.prom, p, policy.UserList, policy.Target{}); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, translate(ctx, "users.list", err)
	}

	out := make([]user.Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out, nil
}

// Delete removes an account with its ratings and sessions. Accounts that
// still own stores are refused, as is deleting oneself.
func (s *UserAdminService) Delete(ctx context.Context, p user.Principal, id string) error {
	if err := authorize(s.prom, p, policy.UserDelete, policy.Target{UserID: id}); err != nil {
		return err
	}

	if id == p.ID {
		return apperr.Validation("cannot_delete_self", "You cannot delete your own account")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return translate(ctx, "users.delete", err)
	}

	// their ratings are gone, so listed averages changed
	s.listing.Invalidate(ctx)
	return nil
}
