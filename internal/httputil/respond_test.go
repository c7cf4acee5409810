package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/travel-journal/backend/internal/apperr"
	"github.com/ayush/travel-journal/backend/internal/logging"
	"github.com/ayush/travel-journal/backend/internal/models"
)

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a","password":"b","admin":true}`))
	var req models.LoginRequest
	err := DecodeJSON(r, &req)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestDecodeJSONEmptyBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(""))
	var req models.LoginRequest
	err := DecodeJSON(r, &req)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestDecodeJSONValidates(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com"}`))
	var req models.LoginRequest
	err := DecodeJSON(r, &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/get-all-stories", nil)

	WriteError(rec, r, logging.Discard(), apperr.Internal("Failed to load stories", assert.AnError))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	raw := rec.Body.String()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Failed to load stories", body["message"])
	assert.NotContains(t, raw, assert.AnError.Error())
}
