package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/storeratings/internal/apperr"
	"github.com/geocoder89/storeratings/internal/auth"
	"github.com/geocoder89/storeratings/internal/domain/session"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/geocoder89/storeratings/internal/policy"
	"github.com/geocoder89/storeratings/internal/security"
	"github.com/geocoder89/storeratings/internal/validation"
)

// TokenIssuer is implemented by *auth.Manager.
type TokenIssuer interface {
	GenerateAccessToken(u user.User) (string, error)
	GenerateRefreshToken(u user.User) (raw string, jti string, expiresAt time.Time, err error)
	VerifyRefreshToken(raw string) (*auth.Claims, error)
	HashRefreshToken(raw string) string
}

type Tokens struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

var errInvalidCredentials = apperr.Unauthenticated("invalid_credentials", "Email or password is incorrect.")

// IdentityService owns credentials and sessions. Password hashes never leave it.
type IdentityService struct {
	users    UserRepository
	sessions SessionStore
	tokens   TokenIssuer
	prom     *observability.Prom
	now      func() time.Time
}

func NewIdentityService(users UserRepository, sessions SessionStore, tokens TokenIssuer, prom *observability.Prom) *IdentityService {
	return &IdentityService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		prom:     prom,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user or store_owner account and signs it in.
// Admin accounts only come from seeding.
func (s *IdentityService) Register(ctx context.Context, req user.RegisterRequest) (user.Profile, Tokens, error) {
	if req.Role == "" {
		req.Role = user.RoleUser
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)

	if err := validation.Struct(req); err != nil {
		return user.Profile{}, Tokens{}, err
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return user.Profile{}, Tokens{}, translate(ctx, "identity.register.hash", err)
	}

	u, err := s.users.Create(ctx, user.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Address:      req.Address,
		Role:         req.Role,
	})
	if err != nil {
		return user.Profile{}, Tokens{}, translate(ctx, "identity.register", err)
	}

	tokens, err := s.issue(ctx, u)
	if err != nil {
		return user.Profile{}, Tokens{}, err
	}
	return u.Profile(), tokens, nil
}

// VerifyCredential resolves an email/password pair into a principal.
func (s *IdentityService) VerifyCredential(ctx context.Context, email, password string) (user.Principal, error) {
	u, err := s.verify(ctx, email, password)
	if err != nil {
		return user.Principal{}, err
	}
	return user.Principal{ID: u.ID, Role: u.Role}, nil
}

func (s *IdentityService) Login(ctx context.Context, email, password string) (user.Profile, Tokens, error) {
	u, err := s.verify(ctx, email, password)
	if err != nil {
		return user.Profile{}, Tokens{}, err
	}

	tokens, err := s.issue(ctx, u)
	if err != nil {
		return user.Profile{}, Tokens{}, err
	}
	return u.Profile(), tokens, nil
}

// Refresh rotates a refresh token. The presented token is revoked and can
// never be used again.
func (s *IdentityService) Refresh(ctx context.Context, raw string) (Tokens, error) {
	if raw == "" {
		return Tokens{}, apperr.Unauthenticated("no_refresh", "Missing refresh token")
	}

	claims, err := s.tokens.VerifyRefreshToken(raw)
	if err != nil {
		return Tokens{}, apperr.Unauthenticated("invalid_refresh", "Invalid refresh token")
	}

	// reload so a role change or deletion takes effect on the next access token
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Tokens{}, apperr.Unauthenticated("invalid_refresh", "Invalid refresh token")
		}
		return Tokens{}, translate(ctx, "identity.refresh.user", err)
	}

	newRaw, newJTI, expiresAt, err := s.tokens.GenerateRefreshToken(u)
	if err != nil {
		return Tokens{}, translate(ctx, "identity.refresh.generate", err)
	}

	next := session.RefreshToken{
		ID:        newJTI,
		UserID:    u.ID,
		TokenHash: s.tokens.HashRefreshToken(newRaw),
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}

	if err := s.sessions.Rotate(ctx, claims.JTI, s.tokens.HashRefreshToken(raw), next, s.now()); err != nil {
		return Tokens{}, translate(ctx, "identity.refresh.rotate", err)
	}

	access, err := s.tokens.GenerateAccessToken(u)
	if err != nil {
		return Tokens{}, translate(ctx, "identity.refresh.access", err)
	}

	return Tokens{AccessToken: access, RefreshToken: newRaw, RefreshExpiresAt: expiresAt}, nil
}

// Logout revokes the presented refresh token. Unknown or invalid tokens are ignored.
func (s *IdentityService) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}

	claims, err := s.tokens.VerifyRefreshToken(raw)
	if err != nil {
		return nil
	}

	if err := s.sessions.Revoke(ctx, claims.JTI); err != nil {
		return translate(ctx, "identity.logout", err)
	}
	return nil
}

// ChangePassword re-verifies the current password, stores the new hash and
// ends every session of the user.
func (s *IdentityService) ChangePassword(ctx context.Context, p user.Principal, current, next string) error {
	if err := authorize(s.prom, p, policy.PasswordChange, policy.Target{UserID: p.ID}); err != nil {
		return err
	}

	if err := validation.Struct(user.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}); err != nil {
		return err
	}

	u, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		return translate(ctx, "identity.change_password.load", err)
	}

	if err := security.CheckPassword(u.PasswordHash, current); err != nil {
		return apperr.Unauthenticated("invalid_current_password", "Current password is incorrect.")
	}

	return s.rehashAndStore(ctx, u.ID, next)
}

func (s *IdentityService) rehashAndStore(ctx context.Context, userID, password string) error {
	hash, err := security.HashPassword(password)
	if err != nil {
		return translate(ctx, "identity.rehash", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return translate(ctx, "identity.rehash.store", err)
	}

	if err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
		return translate(ctx, "identity.rehash.revoke_sessions", err)
	}
	return nil
}

func (s *IdentityService) verify(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, errInvalidCredentials
		}
		return user.User{}, translate(ctx, "identity.verify", err)
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return user.User{}, errInvalidCredentials
	}
	return u, nil
}

func (s *IdentityService) issue(ctx context.Context, u user.User) (Tokens, error) {
	access, err := s.tokens.GenerateAccessToken(u)
	if err != nil {
		return Tokens{}, translate(ctx, "identity.issue.access", err)
	}

	raw, jti, expiresAt, err := s.tokens.GenerateRefreshToken(u)
	if err != nil {
		return Tokens{}, translate(ctx, "identity.issue.refresh", err)
	}

	err = s.sessions.Create(ctx, session.RefreshToken{
		ID:        jti,
		UserID:    u.ID,
		TokenHash: s.tokens.HashRefreshToken(raw),
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	})
	if err != nil {
		return Tokens{}, translate(ctx, "identity.issue.session", err)
	}

	return Tokens{AccessToken: access, RefreshToken: raw, RefreshExpiresAt: expiresAt}, nil
}
