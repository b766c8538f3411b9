package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	appauth "github.com/bryanwahyu/finsight/internal/application/auth"
	appcompare "github.com/bryanwahyu/finsight/internal/application/comparisons"
	appprefs "github.com/bryanwahyu/finsight/internal/application/preferences"
	appprojects "github.com/bryanwahyu/finsight/internal/application/projects"
	"github.com/bryanwahyu/finsight/internal/middleware"
)

// Deps are the services and cross-cutting pieces the router needs.
// Metrics, Limiter and Health are optional.
type Deps struct {
	Projects    *appprojects.Service
	Comparisons *appcompare.Service
	Preferences *appprefs.Service
	Auth        *appauth.Service

	Logger      zerolog.Logger
	Metrics     *middleware.Metrics
	Limiter     *middleware.RateLimiter
	Health      map[string]middleware.HealthChecker
	CORSOrigins []string
	MaxUpload   int64
}

type Router struct {
	projects    *appprojects.Service
	comparisons *appcompare.Service
	prefs       *appprefs.Service
	auth        *appauth.Service
	maxUpload   int64
}

func NewRouter(d Deps) http.Handler {
	r := &Router{
		projects:    d.Projects,
		comparisons: d.Comparisons,
		prefs:       d.Preferences,
		auth:        d.Auth,
		maxUpload:   d.MaxUpload,
	}
	if r.maxUpload <= 0 {
		r.maxUpload = middleware.MaxUploadSize
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(middleware.Logging(d.Logger))
	mux.Use(chimw.Recoverer)
	if d.Metrics != nil {
		mux.Use(d.Metrics.Middleware)
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         int((12 * time.Hour).Seconds()),
	}))

	mux.Get("/health", middleware.HealthHandler(d.Health))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	if d.Metrics != nil {
		mux.Get("/metrics", d.Metrics.Handler)
	}

	protect := func(rt chi.Router) {
		rt.Use(middleware.BearerAuth(r.auth))
		if d.Limiter != nil {
			rt.Use(d.Limiter.Middleware)
		}
	}

	mux.Route("/api/auth", func(rt chi.Router) {
		rt.Post("/signup", r.wrap(r.handleSignup))
		rt.Post("/login", r.wrap(r.handleLogin))
		rt.Group(func(rt chi.Router) {
			protect(rt)
			rt.Get("/me", r.wrap(r.handleMe))
		})
	})

	mux.Route("/api/projects", func(rt chi.Router) {
		protect(rt)
		rt.Post("/", r.wrap(r.handleUpload))
		rt.Get("/", r.wrap(r.handleList))
		rt.Get("/form", r.wrap(r.handleGetPreferences))
		rt.Post("/form", r.wrap(r.handleSavePreferences))
		rt.Post("/analyze/{id}", r.wrap(r.handleAnalyze))
		rt.Get("/charts/{id}", r.wrap(r.handleCharts))
		rt.Get("/predictions/{id}", r.wrap(r.handlePredictions))
		rt.Get("/search/{id}", r.wrap(r.handleSearch))
		rt.Get("/failures/{id}", r.wrap(r.handleFailures))
		rt.Get("/{id}", r.wrap(r.handleGet))
		rt.Patch("/{id}", r.wrap(r.handleUpdate))
		rt.Patch("/{id}/status", r.wrap(r.handleUpdateStatus))
		rt.Delete("/{id}", r.wrap(r.handleDelete))
	})

	compare := func(rt chi.Router) {
		protect(rt)
		rt.Get("/", r.handleCompare)
		rt.Get("/history", r.wrap(r.handleCompareHistory))
		rt.Get("/{id}", r.wrap(r.handleCompareGet))
	}
	mux.Route("/api/compare", compare)
	mux.Route("/api/comparing", compare)

	return mux
}
