package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/storeratings/internal/config"
	"github.com/geocoder89/storeratings/internal/domain/rating"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type Ratings interface {
	Upsert(ctx context.Context, p user.Principal, storeID string, value int, comment *string) (rating.Rating, error)
	Delete(ctx context.Context, p user.Principal, ratingID string) error
	ForStore(ctx context.Context, storeID string) ([]rating.Rating, error)
	ForUserAndStore(ctx context.Context, p user.Principal, storeID string) (rating.Rating, error)
}

type RatingsHandler struct {
	ratings Ratings
}

func NewRatingsHandler(ratings Ratings) *RatingsHandler {
	return &RatingsHandler{ratings: ratings}
}

// SubmitRating creates the caller's rating for a store or replaces it.
func (h *RatingsHandler) SubmitRating(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req rating.SubmitRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	r, err := h.ratings.Upsert(cctx, p, req.StoreID, req.Rating, req.Comment)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, r)
}

func (h *RatingsHandler) ListStoreRatings(ctx *gin.Context) {
	storeID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.ratings.ForStore(cctx, storeID)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// GetMyRating returns the caller's rating for a store, 404 when none exists.
func (h *RatingsHandler) GetMyRating(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	storeID, ok := uuidParam(ctx, "storeId")
	if !ok {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	r, err := h.ratings.ForUserAndStore(cctx, p, storeID)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, r)
}

func (h *RatingsHandler) DeleteRating(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.ratings.Delete(cctx, p, id); err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
