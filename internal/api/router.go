package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soaringjerry/Rasch/internal/middleware"
	"github.com/soaringjerry/Rasch/internal/services"
)

// Options wires the router. Zero values get in-memory or permissive
// defaults, except Auth and Queue which are required.
type Options struct {
	Store          Store
	Auth           *middleware.Authenticator
	Queue          services.TaskQueue
	Analysis       services.AnalysisConfig
	TokenTTL       time.Duration
	MaxUploadBytes int64
	CORSOrigins    []string
	StaticDir      string
	Version        string
	Logger         *slog.Logger
}

type Router struct {
	store     Store
	auth      *middleware.Authenticator
	authSvc   *services.AuthService
	datasets  *services.DatasetService
	analyses  *services.AnalysisService
	exports   *services.ExportService
	logger    *slog.Logger
	maxUpload int64
	cors      []string
	staticDir string
	version   string
}

func NewRouter(opts Options) *Router {
	store := opts.Store
	if store == nil {
		store = newMemoryStore()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 8 << 20
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	return &Router{
		store:     store,
		auth:      opts.Auth,
		authSvc:   services.NewAuthService(newAuthStoreAdapter(store), opts.Auth.SignToken, opts.TokenTTL),
		datasets:  services.NewDatasetService(newDatasetStoreAdapter(store)),
		analyses:  services.NewAnalysisService(newAnalysisStoreAdapter(store), opts.Queue, opts.Analysis, logger),
		exports:   services.NewExportService(newExportStoreAdapter(store)),
		logger:    logger,
		maxUpload: maxUpload,
		cors:      opts.CORSOrigins,
		staticDir: opts.StaticDir,
		version:   version,
	}
}

// Handler builds the chi route tree.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Observe(rt.logger))
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LocaleMiddleware)

	r.Get("/health", rt.handleHealth)
	r.Get("/version", rt.handleVersion)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(rt.cors))
		r.Use(middleware.NoStore)
		r.Use(rt.auth.WithAuth)

		r.Post("/auth/register", rt.handleRegister)
		r.Post("/auth/login", rt.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/datasets", rt.handleCreateDataset)
			r.Get("/datasets", rt.handleListDatasets)
			r.Get("/datasets/{id}", rt.handleGetDataset)
			r.Delete("/datasets/{id}", rt.handleDeleteDataset)
			r.Post("/datasets/{id}/analyses", rt.handleSubmitAnalysis)
			r.Get("/analyses/{id}", rt.handleGetAnalysis)
			r.Get("/analyses/{id}/summary", rt.handleAnalysisSummary)
			r.Get("/analyses/{id}/export", rt.handleExport)
		})
	})

	if rt.staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(rt.staticDir)))
	}
	return r
}
