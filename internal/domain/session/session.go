package session

import (
	"errors"
	"time"
)

// RefreshToken is the persisted side of a refresh token. Only the hash is stored.
type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	ReplacedBy *string
	CreatedAt  time.Time
}

var (
	ErrNotFound = errors.New("refresh token not found")
	ErrRevoked  = errors.New("refresh token revoked")
	ErrExpired  = errors.New("refresh token expired")
	ErrMismatch = errors.New("refresh token hash mismatch")
)

// CheckRotatable reports why row cannot be rotated for the presented hash, if at all.
func (row RefreshToken) CheckRotatable(presentedHash string, now time.Time) error {
	if row.RevokedAt != nil {
		return ErrRevoked
	}
	if now.After(row.ExpiresAt) {
		return ErrExpired
	}
	if row.TokenHash != presentedHash {
		return ErrMismatch
	}
	return nil
}
