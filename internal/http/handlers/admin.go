package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/storeratings/internal/config"
	"github.com/geocoder89/storeratings/internal/domain/stats"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type Dashboard interface {
	Dashboard(ctx context.Context, p user.Principal) (stats.Dashboard, error)
}

type UserAdmin interface {
	List(ctx context.Context, p user.Principal, filter user.ListFilter) ([]user.Profile, error)
	Delete(ctx context.Context, p user.Principal, id string) error
}

type AdminHandler struct {
	stats Dashboard
	users UserAdmin
}

func NewAdminHandler(stats Dashboard, users UserAdmin) *AdminHandler {
	return &AdminHandler{stats: stats, users: users}
}

func (h *AdminHandler) Stats(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	d, err := h.stats.Dashboard(cctx, p)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, d)
}

// ListUsers accepts an optional ?role= filter.
func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var filter user.ListFilter
	if raw := optionalQuery(ctx, "role"); raw != nil {
		role, ok := user.ParseRole(*raw)
		if !ok {
			RespondBadRequest(ctx, "Invalid query parameters", gin.H{
				"fields": []FieldError{{Field: "role", Rule: "oneof", Param: "user store_owner admin", Message: "must be one of user, store_owner, admin"}},
			})
			return
		}
		filter.Role = &role
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	users, err := h.users.List(cctx, p, filter)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"items": users, "count": len(users)})
}

func (h *AdminHandler) DeleteUser(ctx *gin.Context) {
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

	if err := h.users.Delete(cctx, p, id); err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
