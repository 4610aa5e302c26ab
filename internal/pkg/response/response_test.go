// internal/pkg/response/response_test.go
package response

import (
	"errors"
	"net/http"
	"testing"

	xerrors "loyaltystudio-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", xerrors.ErrNotFound, http.StatusNotFound},
		{"invalid input", xerrors.ErrInvalidInput, http.StatusBadRequest},
		{"unauthorized", xerrors.ErrUnauthorized, http.StatusUnauthorized},
		{"session expired", xerrors.ErrSessionExpired, http.StatusUnauthorized},
		{"key revoked", xerrors.ErrKeyRevoked, http.StatusUnauthorized},
		{"forbidden", xerrors.ErrForbidden, http.StatusForbidden},
		{"conflict", xerrors.ErrConflict, http.StatusConflict},
		{"rate limited", xerrors.ErrRateLimited, http.StatusTooManyRequests},
		{"insufficient points", xerrors.ErrInsufficientPoints, http.StatusUnprocessableEntity},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped sentinel", xerrors.Wrap(xerrors.ErrConflict, "shop is already set up"), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
