package apperrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorChaining(t *testing.T) {
	base := New("base error").SetStatusCode(http.StatusInternalServerError)
	child := base.New("child error").SetStatusCode(http.StatusBadRequest)

	assert.Equal(t, "child error", child.Error())
	assert.Equal(t, http.StatusBadRequest, child.StatusCode())
	assert.Equal(t, http.StatusInternalServerError, base.StatusCode())
	assert.True(t, child.Is(base))
	assert.False(t, base.Is(child))
}

func TestErrorWrapping(t *testing.T) {
	base := New("db error").SetStatusCode(http.StatusInternalServerError)
	cause := errors.New("connection refused")

	wrapped := base.Err(cause)
	assert.True(t, wrapped.Is(cause))
	assert.True(t, wrapped.Is(base))

	// wrapping must not leak into the base error
	assert.False(t, base.Is(cause))
}

func TestErrorAllExpansion(t *testing.T) {
	base := New("query failed")
	cause := errors.New("no rows")

	e := base.Err(cause)
	assert.Equal(t, "query failed", e.ErrorAll())

	e = e.SetExpandError(true)
	assert.Equal(t, "query failed: no rows", e.ErrorAll())
}

func TestMsgDoesNotMutateParent(t *testing.T) {
	base := New("not found").SetStatusCode(http.StatusNotFound)
	derived := base.Msg("tenant not found")

	assert.Equal(t, "not found", base.Error())
	assert.Equal(t, "tenant not found", derived.Error())
	assert.Equal(t, http.StatusNotFound, derived.StatusCode())
	assert.True(t, derived.Is(base))
}
