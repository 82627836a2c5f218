package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/storeratings/internal/config"
	"github.com/geocoder89/storeratings/internal/domain/store"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/utils"
	"github.com/gin-gonic/gin"
)

type Stores interface {
	Create(ctx context.Context, p user.Principal, req store.CreateRequest) (store.Store, error)
	Update(ctx context.Context, p user.Principal, id string, patch store.Patch) (store.Store, error)
	Delete(ctx context.Context, p user.Principal, id string) error
	Get(ctx context.Context, id string) (store.WithStats, error)
	ForOwner(ctx context.Context, ownerID string) ([]store.WithStats, error)
	List(ctx context.Context, filter store.ListFilter) ([]store.WithStats, error)
}

type StoresHandler struct {
	stores Stores
}

func NewStoresHandler(stores Stores) *StoresHandler {
	return &StoresHandler{stores: stores}
}

func (h *StoresHandler) CreateStore(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req store.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	s, err := h.stores.Create(cctx, p, req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, s)
}

// ListStores supports ?name=&email=&address= substring filters and ?ownerId=.
func (h *StoresHandler) ListStores(ctx *gin.Context) {
	filter := store.ListFilter{
		Name:    optionalQuery(ctx, "name"),
		Email:   optionalQuery(ctx, "email"),
		Address: optionalQuery(ctx, "address"),
		OwnerID: optionalQuery(ctx, "ownerId"),
	}
	if filter.OwnerID != nil && !utils.IsUUID(*filter.OwnerID) {
		RespondBadRequest(ctx, "Invalid query parameters", gin.H{
			"fields": []FieldError{{Field: "ownerId", Rule: "uuid", Message: "must be a valid UUID"}},
		})
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	stores, err := h.stores.List(cctx, filter)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"items": stores, "count": len(stores)})
}

// ListOwnStores is the store_owner dashboard view.
func (h *StoresHandler) ListOwnStores(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	stores, err := h.stores.ForOwner(cctx, p.ID)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"items": stores, "count": len(stores)})
}

func (h *StoresHandler) GetStore(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	s, err := h.stores.Get(cctx, id)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	RespondJSONWithETag(ctx, http.StatusOK, s)
}

func (h *StoresHandler) UpdateStore(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	var req store.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	s, err := h.stores.Update(cctx, p, id, req.Patch())
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, s)
}

func (h *StoresHandler) DeleteStore(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.stores.Delete(cctx, p, id); err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
