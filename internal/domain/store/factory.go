package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Normalized trims surrounding whitespace and lowercases the email.
func (r CreateRequest) Normalized() CreateRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Address = strings.TrimSpace(r.Address)
	return r
}

func (p Patch) Normalized() Patch {
	return Patch{Name: trimmed(p.Name), Email: lowered(trimmed(p.Email)), Address: trimmed(p.Address)}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func lowered(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToLower(*s)
	return &v
}

func NewFromCreateRequest(ownerID string, req CreateRequest) Store {
	now := time.Now().UTC()

	return Store{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Address:   strings.TrimSpace(req.Address),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply returns s with the patch applied. UpdatedAt is bumped by the caller.
func (p Patch) Apply(s Store) Store {
	if p.Name != nil {
		s.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		s.Email = strings.ToLower(strings.TrimSpace(*p.Email))
	}
	if p.Address != nil {
		s.Address = strings.TrimSpace(*p.Address)
	}
	return s
}
