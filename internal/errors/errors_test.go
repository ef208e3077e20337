package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"wrapped invalid", Invalid("title is required"), http.StatusBadRequest, "INVALID_INPUT"},
		{"forbidden", Forbidden("not yours"), http.StatusForbidden, "FORBIDDEN"},
		{"not found", NotFound("issue"), http.StatusNotFound, "NOT_FOUND"},
		{"profile missing", ErrProfileNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"conflict", Conflict("staff"), http.StatusConflict, "CONFLICT"},
		{"joined resolves by precedence", errors.Join(Forbidden("a"), NotFound("b")), http.StatusForbidden, "FORBIDDEN"},
		{"unknown", fmt.Errorf("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.ToErrorResponse().Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalDetail(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("dial tcp 10.0.0.3:3306: refused"))
	assert.Equal(t, "internal server error", httpErr.Message)
}

func TestFromStore(t *testing.T) {
	assert.NoError(t, FromStore(nil, "issue"))
	assert.ErrorIs(t, FromStore(gorm.ErrRecordNotFound, "issue"), ErrNotFound)
	assert.ErrorIs(t, FromStore(gorm.ErrDuplicatedKey, "user"), ErrConflict)

	other := errors.New("boom")
	assert.Equal(t, other, FromStore(other, "issue"))
}
