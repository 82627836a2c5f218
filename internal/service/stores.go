package service

import (
	"context"

	"github.com/geocoder89/storeratings/internal/domain/store"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/geocoder89/storeratings/internal/policy"
	"github.com/geocoder89/storeratings/internal/validation"
)

type StoreService struct {
	stores  StoreRepository
	listing *StoreListing
	prom    *observability.Prom
}

func NewStoreService(stores StoreRepository, listing *StoreListing, prom *observability.Prom) *StoreService {
	return &StoreService{stores: stores, listing: listing, prom: prom}
}

// Create registers a store owned by the calling store owner.
func (s *StoreService) Create(ctx context.Context, p user.Principal, req store.CreateRequest) (store.Store, error) {
	if err := authorize(s.prom, p, policy.StoreCreate, policy.Target{}); err != nil {
		return store.Store{}, err
	}
	req = req.Normalized()
	if err := validation.Struct(req); err != nil {
		return store.Store{}, err
	}

	created, err := s.stores.Create(ctx, store.NewFromCreateRequest(p.ID, req))
	if err != nil {
		return store.Store{}, translate(ctx, "stores.create", err)
	}

	s.listing.Invalidate(ctx)
	return created, nil
}

// Update patches name, email and address. The owner never changes.
func (s *StoreService) Update(ctx context.Context, p user.Principal, id string, patch store.Patch) (store.Store, error) {
	current, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return store.Store{}, translate(ctx, "stores.update.load", err)
	}

	if err := authorize(s.prom, p, policy.StoreUpdate, policy.Target{OwnerID: current.OwnerID}); err != nil {
		return store.Store{}, err
	}

	patch = patch.Normalized()
	if err := validation.Struct(store.UpdateRequest{Name: patch.Name, Email: patch.Email, Address: patch.Address}); err != nil {
		return store.Store{}, err
	}
	if patch.Empty() {
		return current, nil
	}

	updated, err := s.stores.Update(ctx, id, patch)
	if err != nil {
		return store.Store{}, translate(ctx, "stores.update", err)
	}

	s.listing.Invalidate(ctx)
	return updated, nil
}

// Delete removes the store together with all of its ratings.
func (s *StoreService) Delete(ctx context.Context, p user.Principal, id string) error {
	current, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return translate(ctx, "stores.delete.load", err)
	}

	if err := authorize(s.prom, p, policy.StoreDelete, policy.Target{OwnerID: current.OwnerID}); err != nil {
		return err
	}

	if err := s.stores.DeleteWithRatings(ctx, id); err != nil {
		return translate(ctx, "stores.delete", err)
	}

	s.listing.Invalidate(ctx)
	return nil
}

func (s *StoreService) Get(ctx context.Context, id string) (store.WithStats, error) {
	out, err := s.stores.GetWithStats(ctx, id)
	if err != nil {
		return store.WithStats{}, translate(ctx, "stores.get", err)
	}
	return out, nil
}

func (s *StoreService) ForOwner(ctx context.Context, ownerID string) ([]store.WithStats, error) {
	return s.List(ctx, store.ListFilter{OwnerID: &ownerID})
}

func (s *StoreService) List(ctx context.Context, filter store.ListFilter) ([]store.WithStats, error) {
	out, err := s.listing.Get(ctx, filter, func() ([]store.WithStats, error) {
		return s.stores.List(ctx, filter)
	})
	if err != nil {
		return nil, translate(ctx, "stores.list", err)
	}
	return out, nil
}
