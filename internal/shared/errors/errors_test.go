package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		kind   error
	}{
		{"not found", NotFound(""), http.StatusNotFound, ErrNotFound},
		{"unauthorized", Unauthorized(""), http.StatusUnauthorized, ErrUnauthorized},
		{"bad request", BadRequest("bad limit"), http.StatusBadRequest, ErrBadRequest},
		{"conflict", Conflict("taken"), http.StatusConflict, ErrConflict},
		{"internal", Internal("", nil), http.StatusInternalServerError, ErrInternal},
		{"rate limited", RateLimited(""), http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.True(t, errors.Is(tt.err, tt.kind))
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestAppError_JSON(t *testing.T) {
	data, err := json.Marshal(NotFound(""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"not_found","message":"route not found"}`, string(data))
}

func TestGetStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusConflict, GetStatusCode(fmt.Errorf("wrap: %w", Conflict("x"))))
	assert.Equal(t, http.StatusNotFound, GetStatusCode(fmt.Errorf("wrap: %w", ErrNotFound)))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(errors.New("boom")))
}
