package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/benpsk/stockview/internal/config"
	"github.com/benpsk/stockview/internal/inventory"
	webstatic "github.com/benpsk/stockview/static"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// Pinger is the slice of *pgxpool.Pool the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	View     *inventory.View
	Upstream inventory.Client
	// DB is nil when no database is configured.
	DB     Pinger
	Logger logrus.FieldLogger
}

func NewRouter(cfg config.Config, deps Deps) *chi.Mux {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appOrigins(cfg.AppURL),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "HX-Request", "HX-Target", "HX-Current-URL", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(limitBodies(maxFormBytes))

	h := newHandler(deps, strings.TrimSpace(cfg.AppName), strings.TrimSpace(cfg.AppURL), log)

	r.Handle("/static/*", http.StripPrefix("/static/", webstatic.Handler("static")))
	r.Get("/healthz", h.healthz)
	r.Get("/api/health", h.healthz)
	r.Get("/api/items", h.apiItems)

	r.Group(func(r chi.Router) {
		r.Use(csrfProtection)
		r.Get("/", h.inventoryPage)
		r.Post("/items/add", h.addItem)
		r.Post("/items/delete", h.deleteItem)
		r.Post("/items/refresh", h.refreshItems)
		r.Get("/activity", h.activityPage)
	})

	return r
}

func appOrigins(appURL string) []string {
	appURL = strings.TrimSpace(appURL)
	if appURL == "" {
		return nil
	}
	parsed, err := url.Parse(appURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil
	}
	return []string{parsed.Scheme + "://" + parsed.Host}
}
