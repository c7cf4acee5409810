// Package routes assembles the HTTP surface of the journal service.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/ayush/travel-journal/backend/internal/auth"
	"github.com/ayush/travel-journal/backend/internal/config"
	"github.com/ayush/travel-journal/backend/internal/media"
	"github.com/ayush/travel-journal/backend/internal/metrics"
	"github.com/ayush/travel-journal/backend/internal/middleware"
	"github.com/ayush/travel-journal/backend/internal/stories"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Config  *config.Config
	Log     *logrus.Logger
	Auth    *auth.Service
	Stories *stories.Service
	Media   *media.Manager
	Limiter *middleware.RateLimiter
}

// New builds the router.
func New(d Deps) http.Handler {
	authHandler := auth.NewHandler(d.Auth, d.Log)
	storyHandler := stories.NewHandler(d.Stories, d.Log)
	mediaHandler := media.NewHandler(d.Media, d.Log)

	requireAuth := middleware.RequireAuth(d.Auth, d.Log)
	limiter := d.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(d.Config.AuthRateLimit, d.Log)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// Forwarded headers are client-controlled unless a proxy overwrites them.
	if d.Config.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	// Accounts
	r.With(limiter.Handler).Post("/create-account", authHandler.CreateAccount)
	r.With(limiter.Handler).Post("/login", authHandler.Login)
	r.With(requireAuth).Post("/logout", authHandler.Logout)
	r.With(requireAuth).Get("/get-user", authHandler.GetUser)

	// Media
	r.Group(func(r chi.Router) {
		if d.Config.MediaRequireAuth {
			r.Use(requireAuth)
		}
		r.Post("/image-upload", mediaHandler.Upload)
		r.Delete("/delete-image", mediaHandler.Delete)
	})
	r.Get("/uploads/{name}", mediaHandler.Serve)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(d.Config.AssetsDir))))

	// Stories
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/add-travel-story", storyHandler.Add)
		r.Get("/get-all-stories", storyHandler.List)
		r.Post("/edit-story/{id}", storyHandler.Edit)
		r.Put("/edit-story/{id}", storyHandler.Edit)
		r.Delete("/delete-story/{id}", storyHandler.Delete)
		r.Put("/update-is-favourite/{id}", storyHandler.SetFavourite)
		r.Get("/search-stories", storyHandler.Search)
		r.Get("/travel-stories/filter", storyHandler.Filter)
	})

	return r
}
