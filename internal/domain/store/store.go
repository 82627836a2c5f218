package store

import (
	"errors"
	"time"
)

type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WithStats is a store annotated with its derived rating figures.
// AverageRating is nil when the store has no ratings.
type WithStats struct {
	Store
	OwnerName     string   `json:"ownerName,omitempty"`
	AverageRating *float64 `json:"averageRating"`
	TotalRatings  int      `json:"totalRatings"`
}

// with pointers if optional, it will be nil
type ListFilter struct {
	Name    *string
	Email   *string
	Address *string
	OwnerID *string
}

// nil fields are left untouched, ownerId is never patchable
type Patch struct {
	Name    *string
	Email   *string
	Address *string
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Address == nil
}

var (
	ErrNotFound   = errors.New("store not found")
	ErrEmailTaken = errors.New("store email already in use")
)

type CreateRequest struct {
	Name    string `json:"name" binding:"required,min=20,max=60"`
	Email   string `json:"email" binding:"required,email,max=254"`
	Address string `json:"address" binding:"omitempty,max=400"`
}

type UpdateRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=20,max=60"`
	Email   *string `json:"email" binding:"omitempty,email,max=254"`
	Address *string `json:"address" binding:"omitempty,max=400"`
}

func (r UpdateRequest) Patch() Patch {
	return Patch{Name: r.Name, Email: r.Email, Address: r.Address}
}
