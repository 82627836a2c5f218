package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/geocoder89/storeratings/internal/apperr"
	"github.com/geocoder89/storeratings/internal/domain/rating"
	"github.com/geocoder89/storeratings/internal/domain/session"
	"github.com/geocoder89/storeratings/internal/domain/store"
	"github.com/geocoder89/storeratings/internal/domain/user"
)

var (
	errStoreNotFound  = apperr.NotFound("store_not_found", "Store not found")
	errRatingNotFound = apperr.NotFound("rating_not_found", "Rating not found")
	errUserNotFound   = apperr.NotFound("user_not_found", "User not found")
)

// translate maps repository and domain sentinels onto apperr kinds. Anything
// unrecognised is logged with its cause and surfaced as an opaque internal error.
func translate(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return errStoreNotFound
	case errors.Is(err, rating.ErrNotFound):
		return errRatingNotFound
	case errors.Is(err, user.ErrNotFound):
		return errUserNotFound
	case errors.Is(err, store.ErrEmailTaken):
		return apperr.Conflict("store_email_taken", "A store with this email already exists")
	case errors.Is(err, user.ErrEmailTaken):
		return apperr.Conflict("email_taken", "Email is already in use")
	case errors.Is(err, user.ErrOwnsStores):
		return apperr.Conflict("user_owns_stores", "User still owns stores; delete them first")
	case errors.Is(err, rating.ErrValueOutOfRange):
		return apperr.Validation("invalid_rating", "Rating must be between 1 and 5", apperr.FieldError{
			Field:   "rating",
			Rule:    "range",
			Param:   strconv.Itoa(rating.MinValue) + "-" + strconv.Itoa(rating.MaxValue),
			Message: "must be between 1 and 5",
		})
	case errors.Is(err, rating.ErrCommentTooLong):
		return apperr.Validation("invalid_comment", "Comment is too long", apperr.FieldError{
			Field:   "comment",
			Rule:    "max",
			Param:   strconv.Itoa(rating.MaxCommentLength),
			Message: "must be at most " + strconv.Itoa(rating.MaxCommentLength) + " characters",
		})
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrRevoked), errors.Is(err, session.ErrMismatch):
		return apperr.Unauthenticated("invalid_refresh", "Invalid refresh token")
	case errors.Is(err, session.ErrExpired):
		return apperr.Unauthenticated("expired_refresh", "Refresh token expired")
	}

	slog.Default().ErrorContext(ctx, "operation failed", "op", op, "err", err)
	return apperr.Internal("Internal server error", err)
}
