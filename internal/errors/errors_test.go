package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"duplicate email", ErrEmailRegistered, http.StatusBadRequest, "Email already registered"},
		{"user limit", ErrUserLimitReached, http.StatusBadRequest, "Maximum user limit reached"},
		{"bad credentials", ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
		{"wrapped not found", fmt.Errorf("lookup: %w", ErrSessionNotFound), http.StatusNotFound, "Session not found"},
		{"invalid url", ErrInvalidURL, http.StatusBadRequest, "Invalid URL"},
		{"unknown error is hidden", errors.New("dial tcp 10.0.0.1: refused"), http.StatusInternalServerError, "Something went wrong!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantMsg, httpErr.ToErrorResponse().Message)
		})
	}
}
