// Package handlers serves the gallery page and the photo API
package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"photo-gallery/internal/domain/photo"
	"photo-gallery/internal/observability"
	"photo-gallery/internal/services"
)

// multipart bodies above this size spill to temp files
const maxMemoryPerUpload = 1 << 20

// CheckFunc reports the health of one dependency
type CheckFunc func(ctx context.Context) error

// Options configures a Handler
type Options struct {
	Photos        photo.Service
	CSRF          *CSRF
	Logger        *observability.Logger
	Tracer        trace.Tracer
	Metrics       *observability.HTTPMetrics
	Checks        map[string]CheckFunc
	MaxUploadSize int64
	LegacyUpload  bool
}

type Handler struct {
	photos        photo.Service
	csrf          *CSRF
	logger        *observability.Logger
	tracer        trace.Tracer
	metrics       *observability.HTTPMetrics
	checks        map[string]CheckFunc
	maxUploadSize int64
	legacyUpload  bool
}

func New(opts Options) *Handler {
	h := &Handler{
		photos:        opts.Photos,
		csrf:          opts.CSRF,
		logger:        opts.Logger,
		tracer:        opts.Tracer,
		metrics:       opts.Metrics,
		checks:        opts.Checks,
		maxUploadSize: opts.MaxUploadSize,
		legacyUpload:  opts.LegacyUpload,
	}
	if h.logger == nil {
		h.logger = observability.NewNopLogger()
	}
	if h.tracer == nil {
		h.tracer = observability.GetTracer()
	}
	if h.maxUploadSize <= 0 {
		h.maxUploadSize = 10 << 20
	}
	return h
}

// NewWithContainer builds a Handler over the container's services, with
// readiness checks for the database, the bucket and, when enabled, the cache
func NewWithContainer(c *services.Container, csrf *CSRF, logger *observability.Logger, metrics *observability.HTTPMetrics) *Handler {
	checks := map[string]CheckFunc{}
	if db := c.DB(); db != nil {
		checks["database"] = db.PingContext
	}
	if s := c.StorageClient(); s != nil {
		checks["storage"] = s.Health
	}
	if rc := c.RedisClient(); rc != nil {
		checks["cache"] = rc.Health
	}

	cfg := c.Config()
	return New(Options{
		Photos:        c.PhotoService(),
		CSRF:          csrf,
		Logger:        logger,
		Metrics:       metrics,
		Checks:        checks,
		MaxUploadSize: cfg.Storage.MaxUploadSize,
		LegacyUpload:  cfg.LegacyUploadEnabled,
	})
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.TracingMiddleware(h.tracer))
	if h.metrics != nil {
		r.Use(observability.MetricsMiddleware(h.metrics))
	}

	r.Get("/healthz", h.healthzHandler)
	r.Get("/readyz", h.readyzHandler)

	r.Group(func(r chi.Router) {
		r.Use(h.csrf.Protect)

		r.Get("/", h.galleryHandler)

		r.Route("/api", func(r chi.Router) {
			r.Route("/photos", func(r chi.Router) {
				r.Get("/", h.listPhotosHandler)
				r.Post("/", h.uploadPhotoHandler)
				r.Get("/{id}", h.getPhotoHandler)
				r.Put("/{id}", h.replacePhotoHandler)
				r.Delete("/{id}", h.deletePhotoHandler)
				r.Get("/{id}/content", h.photoContentHandler)
				r.Get("/{id}/thumbnail", h.thumbnailHandler)
			})

			if h.legacyUpload {
				r.Post("/upload", h.legacyUploadHandler)
			}
		})
	})

	return r
}
