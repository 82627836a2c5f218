package service

import (
	"context"
	"strings"

	"github.com/geocoder89/storeratings/internal/domain/rating"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/geocoder89/storeratings/internal/policy"
)

type RatingService struct {
	ratings RatingRepository
	stores  StoreRepository
	listing *StoreListing
	prom    *observability.Prom
}

func NewRatingService(ratings RatingRepository, stores StoreRepository, listing *StoreListing, prom *observability.Prom) *RatingService {
	return &RatingService{ratings: ratings, stores: stores, listing: listing, prom: prom}
}

// Upsert creates the caller's rating for a store or replaces its value and
// comment. A blank comment is stored as no comment.
func (s *RatingService) Upsert(ctx context.Context, p user.Principal, storeID string, value int, comment *string) (rating.Rating, error) {
	if err := authorize(s.prom, p, policy.RatingUpsert, policy.Target{UserID: p.ID}); err != nil {
		return rating.Rating{}, err
	}

	comment = normalizeComment(comment)
	if err := rating.Validate(value, comment); err != nil {
		return rating.Rating{}, translate(ctx, "ratings.upsert", err)
	}

	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		return rating.Rating{}, translate(ctx, "ratings.upsert.store", err)
	}

	rt, err := s.ratings.Upsert(ctx, p.ID, storeID, value, comment)
	if err != nil {
		return rating.Rating{}, translate(ctx, "ratings.upsert", err)
	}

	s.prom.IncRatingMutation("upsert")
	s.listing.Invalidate(ctx)

	return rt, nil
}

func (s *RatingService) Delete(ctx context.Context, p user.Principal, ratingID string) error {
	rt, err := s.ratings.GetByID(ctx, ratingID)
	if err != nil {
		return translate(ctx, "ratings.delete.load", err)
	}

	if err := authorize(s.prom, p, policy.RatingDelete, policy.Target{UserID: rt.UserID}); err != nil {
		return err
	}

	if err := s.ratings.Delete(ctx, ratingID); err != nil {
		return translate(ctx, "ratings.delete", err)
	}

	s.prom.IncRatingMutation("delete")
	s.listing.Invalidate(ctx)

	return nil
}

// AverageAndCount returns the full-precision mean; Average is nil for an unrated store.
// Over HTTP the same figures are served on the store views (StoreService.Get and List).
func (s *RatingService) AverageAndCount(ctx context.Context, storeID string) (rating.Aggregate, error) {
	agg, err := s.ratings.Aggregate(ctx, storeID)
	if err != nil {
		return rating.Aggregate{}, translate(ctx, "ratings.aggregate", err)
	}
	return agg, nil
}

// ForStore lists a store's ratings newest first. Unknown stores have none.
func (s *RatingService) ForStore(ctx context.Context, storeID string) ([]rating.Rating, error) {
	out, err := s.ratings.ListByStore(ctx, storeID)
	if err != nil {
		return nil, translate(ctx, "ratings.list_by_store", err)
	}
	return out, nil
}

// ForUserAndStore returns the caller's own rating for a store.
func (s *RatingService) ForUserAndStore(ctx context.Context, p user.Principal, storeID string) (rating.Rating, error) {
	if p.ID == "" {
		return rating.Rating{}, policy.Authorize(p, policy.RatingUpsert, policy.Target{})
	}

	rt, err := s.ratings.GetByUserAndStore(ctx, p.ID, storeID)
	if err != nil {
		return rating.Rating{}, translate(ctx, "ratings.get_by_user_and_store", err)
	}
	return rt, nil
}

func normalizeComment(c *string) *string {
	if c == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*c)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
