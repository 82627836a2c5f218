package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKindSentinels(t *testing.T) {
	err := NotFound("store_not_found", "Store not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err), ErrNotFound))
}

func TestIsMatchesCodes(t *testing.T) {
	err := Conflict("store_email_taken", "Store email is already in use")

	assert.True(t, errors.Is(err, Conflict("store_email_taken", "")))
	assert.False(t, errors.Is(err, Conflict("user_owns_stores", "")))
}

func TestAsWrapsPlainErrorsAsInternal(t *testing.T) {
	cause := errors.New("connection reset by peer")

	appErr := As(cause)

	assert.Equal(t, KindInternal, appErr.Kind)
	assert.NotContains(t, appErr.Message, "connection reset")
	assert.ErrorIs(t, appErr, cause)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("invalid_rating", "bad")))
	assert.Equal(t, KindAuthorization, KindOf(fmt.Errorf("ctx: %w", Forbidden("forbidden", "no"))))
	assert.Equal(t, "not_found", KindNotFound.String())
}
