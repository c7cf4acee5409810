package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ayush/travel-journal/backend/internal/auth"
	"github.com/ayush/travel-journal/backend/internal/config"
	"github.com/ayush/travel-journal/backend/internal/logging"
	"github.com/ayush/travel-journal/backend/internal/media"
	"github.com/ayush/travel-journal/backend/internal/middleware"
	"github.com/ayush/travel-journal/backend/internal/routes"
	"github.com/ayush/travel-journal/backend/internal/store"
	"github.com/ayush/travel-journal/backend/internal/stories"
)

// storyBackend is what both the story service and the orphan sweep need.
type storyBackend interface {
	stories.Store
	media.References
}

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.Environment, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	ctx := context.Background()

	// ── Accounts (PostgreSQL / SQLite) ───────────────────────
	dsn := cfg.PostgresDSN
	if cfg.AccountDBDriver == string(store.SQLite) {
		dsn = cfg.SQLitePath
	}
	accounts, err := store.OpenAccountStore(ctx, cfg.AccountDBDriver, dsn)
	if err != nil {
		log.WithError(err).Fatal("account store connect")
	}
	defer accounts.Close()
	if err := accounts.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("account store migrate")
	}

	// ── Stories (MongoDB / memory) ───────────────────────────
	var storyStore storyBackend
	var mongoClient *mongo.Client
	switch cfg.StoryStore {
	case "memory":
		log.Warn("using in-memory story store; stories are lost on restart")
		storyStore = store.NewMemoryStore()
	default:
		mongoClient, err = store.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			log.WithError(err).Fatal("mongo connect")
		}
		mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			log.WithError(err).Fatal("mongo indexes")
		}
		storyStore = mongoStore
	}

	// ── Redis (token revocation) ─────────────────────────────
	var revoker auth.Revoker = auth.NopRevoker{}
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.WithError(err).Fatal("redis connect")
		}
		defer rdb.Close()
		revoker = auth.NewRedisRevoker(rdb)
	} else {
		log.Warn("REDIS_ADDR not set; logout will not revoke tokens")
	}

	// ── Media (disk / MinIO) ─────────────────────────────────
	var backend media.Backend
	switch cfg.MediaBackend {
	case "minio":
		backend, err = store.NewMinioStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
	default:
		backend, err = store.NewDiskStore(cfg.UploadDir)
	}
	if err != nil {
		log.WithError(err).Fatal("media backend")
	}
	mediaMgr := media.NewManager(backend, cfg.MediaBaseURL, cfg.MediaWorkers, cfg.MediaMaxBytes, log)

	// ── Services ─────────────────────────────────────────────
	tokens, err := auth.NewTokens(cfg.AccessTokenSecret, cfg.TokenTTL)
	if err != nil {
		log.WithError(err).Fatal("token issuer")
	}
	authSvc := auth.NewService(accounts, tokens, revoker, log)
	storySvc := stories.NewService(storyStore, mediaMgr, cfg.PlaceholderImageURL(), log)

	// ── Background jobs ──────────────────────────────────────
	var sweeper *cron.Cron
	if cfg.OrphanSweepSchedule != "" {
		rec := media.NewReconciler(mediaMgr, storyStore, cfg.OrphanGrace, log)
		sweeper, err = rec.Start(cfg.OrphanSweepSchedule)
		if err != nil {
			log.WithError(err).Fatal("orphan sweep schedule")
		}
	}

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, log)
	stopCleanup := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				limiter.Cleanup()
			case <-stopCleanup:
				return
			}
		}
	}()

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: routes.New(routes.Deps{
			Config:  cfg,
			Log:     log,
			Auth:    authSvc,
			Stories: storySvc,
			Media:   mediaMgr,
			Limiter: limiter,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":          cfg.Port,
			"story_store":   cfg.StoryStore,
			"media_backend": cfg.MediaBackend,
		}).Info("backend listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	close(stopCleanup)
	if sweeper != nil {
		<-sweeper.Stop().Done()
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutCtx); err != nil {
			log.WithError(err).Error("mongo disconnect")
		}
	}
}
