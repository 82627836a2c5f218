package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/storeratings/internal/config"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type Profiles interface {
	Get(ctx context.Context, p user.Principal, userID string) (user.Profile, error)
	Update(ctx context.Context, p user.Principal, userID string, patch user.ProfilePatch) (user.Profile, error)
}

type ProfileHandler struct {
	profiles Profiles
}

func NewProfileHandler(profiles Profiles) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetProfile returns the caller's own profile. There is no id in the path.
func (h *ProfileHandler) GetProfile(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	profile, err := h.profiles.Get(cctx, p, p.ID)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	profile, err := h.profiles.Update(cctx, p, p.ID, req.Patch())
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}
