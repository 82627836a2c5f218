package rating

import (
	"errors"
	"time"
	"unicode/utf8"
)

const (
	MinValue         = 1
	MaxValue         = 5
	MaxCommentLength = 500
)

type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	StoreID   string    `json:"storeId"`
	Value     int       `json:"rating"`
	Comment   *string   `json:"comment"`
	UserName  string    `json:"userName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound        = errors.New("rating not found")
	ErrValueOutOfRange = errors.New("rating must be between 1 and 5")
	ErrCommentTooLong  = errors.New("comment must be at most 500 characters")
)

type SubmitRequest struct {
	StoreID string  `json:"storeId" binding:"required,uuid"`
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty"`
}

// Validate checks the value range and the comment length in characters.
func Validate(value int, comment *string) error {
	if value < MinValue || value > MaxValue {
		return ErrValueOutOfRange
	}
	if comment != nil && utf8.RuneCountInString(*comment) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}

// Aggregate is the derived view of every current rating of one store.
type Aggregate struct {
	StoreID string   `json:"storeId"`
	Average *float64 `json:"averageRating"`
	Count   int      `json:"totalRatings"`
}

// NewAggregate computes the full-precision mean. Average is nil iff values is empty.
func NewAggregate(storeID string, values []int) Aggregate {
	agg := Aggregate{StoreID: storeID, Count: len(values)}
	if len(values) == 0 {
		return agg
	}

	sum := 0
	for _, v := range values {
		sum += v
	}
	avg := float64(sum) / float64(len(values))
	agg.Average = &avg

	return agg
}
