package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	AccessTokenSecret string
	TokenTTL          time.Duration

	AccountDBDriver string
	PostgresDSN     string
	SQLitePath      string

	StoryStore string
	MongoURI   string
	MongoDB    string

	RedisAddr     string
	RedisPassword string

	MediaBackend     string
	UploadDir        string
	AssetsDir        string
	MediaBaseURL     string
	MediaWorkers     int
	MediaMaxBytes    int64
	MediaRequireAuth bool

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	OrphanSweepSchedule string
	OrphanGrace         time.Duration

	AllowedOrigins []string
	AuthRateLimit  int
	TrustProxy     bool
}

func Load() *Config {
	return &Config{
		Port:        getenv("PORT", "8000"),
		Environment: strings.ToLower(getenv("ENV", "development")),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		AccessTokenSecret: getenv("ACCESS_TOKEN_SECRET", ""),
		TokenTTL:          getduration("TOKEN_TTL", 72*time.Hour),

		AccountDBDriver: getenv("ACCOUNT_DB_DRIVER", "pgx"),
		PostgresDSN:     getenv("POSTGRES_DSN", ""),
		SQLitePath:      getenv("SQLITE_PATH", "journal.db"),

		StoryStore: getenv("STORY_STORE", "mongo"),
		MongoURI:   getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:    getenv("MONGO_DB", "travel_journal"),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		MediaBackend:     getenv("MEDIA_BACKEND", "disk"),
		UploadDir:        getenv("UPLOAD_DIR", "uploads"),
		AssetsDir:        getenv("ASSETS_DIR", "assets"),
		MediaBaseURL:     strings.TrimRight(getenv("MEDIA_BASE_URL", "http://localhost:8000"), "/"),
		MediaWorkers:     getint("MEDIA_WORKERS", 8),
		MediaMaxBytes:    int64(getint("MEDIA_MAX_BYTES", 10<<20)),
		MediaRequireAuth: getenv("MEDIA_REQUIRE_AUTH", "false") == "true",

		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "travel-images"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",

		OrphanSweepSchedule: getenv("ORPHAN_SWEEP_SCHEDULE", "@every 1h"),
		OrphanGrace:         getduration("ORPHAN_GRACE", 24*time.Hour),

		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		AuthRateLimit:  getint("AUTH_RATE_LIMIT", 20),
		TrustProxy:     getenv("TRUST_PROXY", "false") == "true",
	}
}

// Validate reports configuration the process cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.AccessTokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is not set"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	switch c.AccountDBDriver {
	case "pgx":
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the pgx driver"))
		}
	case "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("unknown ACCOUNT_DB_DRIVER %q", c.AccountDBDriver))
	}
	switch c.StoryStore {
	case "mongo", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown STORY_STORE %q", c.StoryStore))
	}
	switch c.MediaBackend {
	case "disk", "minio":
	default:
		errs = append(errs, fmt.Errorf("unknown MEDIA_BACKEND %q", c.MediaBackend))
	}
	if c.MediaWorkers <= 0 {
		errs = append(errs, errors.New("MEDIA_WORKERS must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// PlaceholderImageURL is substituted when an edited story has no image.
func (c *Config) PlaceholderImageURL() string {
	return c.MediaBaseURL + "/assets/placeholder.jpg"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getduration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
