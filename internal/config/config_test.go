package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/journal")
	t.Setenv("TRUST_PROXY", "")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "http://localhost:8000/assets/placeholder.jpg", cfg.PlaceholderImageURL())
	assert.False(t, cfg.MediaRequireAuth)
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestValidateRequiresSecret(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	t.Setenv("ACCOUNT_DB_DRIVER", "sqlite3")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_SECRET")
}

func TestValidateRejectsUnknownDrivers(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("ACCOUNT_DB_DRIVER", "sqlite3")
	t.Setenv("STORY_STORE", "couch")
	t.Setenv("MEDIA_BACKEND", "ftp")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORY_STORE")
	assert.Contains(t, err.Error(), "MEDIA_BACKEND")
}

func TestDurationsAndBaseURL(t *testing.T) {
	t.Setenv("TOKEN_TTL", "108h")
	t.Setenv("MEDIA_BASE_URL", "https://cdn.example.com/")

	cfg := Load()
	assert.Equal(t, 108*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "https://cdn.example.com", cfg.MediaBaseURL)
}
