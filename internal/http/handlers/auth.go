package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/storeratings/internal/config"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/auth"
)

type Identity interface {
	Register(ctx context.Context, req user.RegisterRequest) (user.Profile, service.Tokens, error)
	Login(ctx context.Context, email, password string) (user.Profile, service.Tokens, error)
	Refresh(ctx context.Context, raw string) (service.Tokens, error)
	Logout(ctx context.Context, raw string) error
	ChangePassword(ctx context.Context, p user.Principal, current, next string) error
}

type AuthHandler struct {
	identity      Identity
	secureCookies bool
}

func NewAuthHandler(identity Identity, secureCookies bool) *AuthHandler {
	return &AuthHandler{identity: identity, secureCookies: secureCookies}
}

type authResponse struct {
	User        *user.Profile `json:"user,omitempty"`
	AccessToken string        `json:"accessToken"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	profile, tokens, err := h.identity.Register(cctx, req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	h.setRefreshCookie(ctx, tokens.RefreshToken, tokens.RefreshExpiresAt)
	ctx.JSON(http.StatusCreated, authResponse{User: &profile, AccessToken: tokens.AccessToken})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	profile, tokens, err := h.identity.Login(cctx, req.Email, req.Password)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	h.setRefreshCookie(ctx, tokens.RefreshToken, tokens.RefreshExpiresAt)
	ctx.JSON(http.StatusOK, authResponse{User: &profile, AccessToken: tokens.AccessToken})
}

// Refresh rotates the refresh cookie and hands out a new access token.
func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, _ := ctx.Cookie(refreshCookieName)

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	tokens, err := h.identity.Refresh(cctx, raw)
	if err != nil {
		h.clearRefreshCookie(ctx)
		RespondAppError(ctx, err)
		return
	}

	h.setRefreshCookie(ctx, tokens.RefreshToken, tokens.RefreshExpiresAt)
	ctx.JSON(http.StatusOK, authResponse{AccessToken: tokens.AccessToken})
}

// Logout always clears the cookie, even when the token was already invalid.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, _ := ctx.Cookie(refreshCookieName)

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	err := h.identity.Logout(cctx, raw)
	h.clearRefreshCookie(ctx)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) UpdatePassword(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req user.ChangePasswordRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithParentTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.identity.ChangePassword(cctx, p, req.CurrentPassword, req.NewPassword); err != nil {
		RespondAppError(ctx, err)
		return
	}

	// every session was revoked, including this one
	h.clearRefreshCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) setRefreshCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(refreshCookieName, raw, maxAge, refreshCookiePath, "", h.secureCookies, true)
}

func (h *AuthHandler) clearRefreshCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", h.secureCookies, true)
}
