package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/travel-journal/backend/internal/apperr"
)

func TestEpochMillisAcceptsNumberAndString(t *testing.T) {
	var req StoryRequest
	require.NoError(t, json.Unmarshal([]byte(`{"visitedDate": 1700000000000}`), &req))
	require.NotNil(t, req.VisitedDate)
	assert.Equal(t, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC), req.VisitedDate.Time())

	req = StoryRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"visitedDate": "1700000000000"}`), &req))
	assert.Equal(t, EpochMillis(1700000000000), *req.VisitedDate)

	req = StoryRequest{}
	assert.Error(t, json.Unmarshal([]byte(`{"visitedDate": "yesterday"}`), &req))
}

func TestValidateStoryRequest(t *testing.T) {
	ms := EpochMillis(1700000000000)
	ok := StoryRequest{
		Title:           "Trip",
		Story:           "fun",
		VisitedLocation: []string{},
		VisitedDate:     &ms,
	}
	assert.NoError(t, Validate(ok), "an empty but present location list is accepted")

	missing := ok
	missing.VisitedLocation = nil
	missing.VisitedDate = nil
	err := Validate(missing)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "visitedLocation")
	assert.Contains(t, err.Error(), "visitedDate")
}

func TestValidateCreateAccountRequest(t *testing.T) {
	err := Validate(CreateAccountRequest{Email: "alice@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fullName")
	assert.Contains(t, err.Error(), "password")
}

func TestUserPasswordNeverSerialized(t *testing.T) {
	b, err := json.Marshal(User{ID: "1", FullName: "Alice", Email: "alice@x.com", Password: "$2a$10$hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hash")
	assert.NotContains(t, string(b), "password")
}
