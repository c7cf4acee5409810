package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("dup"), http.StatusBadRequest},
		{Auth("no"), http.StatusUnauthorized},
		{NotFound("gone"), http.StatusNotFound},
		{Wrap(KindRateLimited, "slow down", nil), http.StatusTooManyRequests},
		{Internal("boom", errors.New("db down")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), tt.err.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("update story: %w", NotFound("Story not found"))
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindAuth))
	assert.Equal(t, "Story not found", PublicMessage(err))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("Failed to load stories", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to load stories", PublicMessage(err))
	assert.Equal(t, "Something went wrong", PublicMessage(cause))
}
