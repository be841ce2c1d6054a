package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactoriesAssignCodeAndStatus(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"validation", NewValidation("bad input"), CodeValidation, http.StatusBadRequest},
		{"not found", NewNotFound("post", "p1"), CodeNotFound, http.StatusNotFound},
		{"internal", NewInternal(cause), CodeInternal, http.StatusInternalServerError},
		{"database", NewDatabase(cause), CodeDatabase, http.StatusInternalServerError},
		{"blob store", NewBlobStore(cause), CodeBlobStore, http.StatusBadGateway},
		{"unauthorized", NewUnauthorized("no"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", NewForbidden("no"), CodeForbidden, http.StatusForbidden},
		{"conflict", NewConflict("clash"), CodeConflict, http.StatusConflict},
		{"duplicate", NewDuplicate("user", "username"), CodeDuplicate, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.status, GetHTTPStatus(tt.err))
		})
	}
}

func TestWithDetailAccumulates(t *testing.T) {
	err := NewValidation("bad input").
		WithDetail("field", "title").
		WithDetail("max", 200)

	assert.Equal(t, "title", err.Details["field"])
	assert.Equal(t, 200, err.Details["max"])
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabase(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAsAppErrorWalksWrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("listing posts: %w", NewNotFound("post", "p1"))

	appErr, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.True(t, IsNotFound(wrapped))
}

func TestPredicatesRejectPlainErrors(t *testing.T) {
	plain := errors.New("nope")

	assert.False(t, IsAppError(plain))
	assert.False(t, IsNotFound(plain))
	assert.False(t, IsUnauthorized(plain))
	assert.False(t, IsDuplicate(plain))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(plain))
}

func TestNotFoundCarriesEntityDetails(t *testing.T) {
	err := NewNotFound("user", "alice")

	assert.Equal(t, "user not found", err.Message)
	assert.Equal(t, "user", err.Details["entity"])
	assert.Equal(t, "alice", err.Details["id"])
}
