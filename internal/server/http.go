package server

import (
	"context"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/quizforge/packadmin/internal/auth"
	"github.com/quizforge/packadmin/internal/catalog"
	"github.com/quizforge/packadmin/internal/config"
	"github.com/quizforge/packadmin/internal/editor"
	"github.com/quizforge/packadmin/internal/logging"
)

// NewUpgrader returns the WebSocket upgrader for the catalog feed. Browser
// origins are checked against the CORS allow list.
func NewUpgrader(cors config.CORS) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(cors.AllowedOrigins, origin) || slices.Contains(cors.AllowedOrigins, "*")
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

// Handlers bundles the route handlers mounted by NewHTTPServer.
type Handlers struct {
	Auth      *auth.HTTPHandlers
	AuthSvc   *auth.Service
	Catalog   *catalog.HTTPHandler
	Editor    *editor.HTTPHandler
	CatalogWS http.Handler
}

// NewHTTPServer wires every route of the admin API.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, h Handlers, deps map[string]Pinger) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewRouter(cfg, logger, h, deps),
	}
}

// NewRouter builds the handler tree; split out of NewHTTPServer for tests.
func NewRouter(cfg *config.App, logger zerolog.Logger, h Handlers, deps map[string]Pinger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if name, err := pingDependencies(r.Context(), deps); err != nil {
			l := logging.FromContext(r.Context())
			l.Error().Err(err).Str("dependency", name).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	mux.HandleFunc("POST /v1/auth/login", h.Auth.Login)

	admin := auth.RequireAdmin(h.AuthSvc, logger)
	protect := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, admin(fn))
	}

	protect("GET /v1/categories", h.Catalog.ListCategories)
	protect("POST /v1/categories", h.Catalog.CreateCategory)
	protect("PUT /v1/categories/{id}", h.Catalog.RenameCategory)
	protect("DELETE /v1/categories/{id}", h.Catalog.DeleteCategory)

	protect("GET /v1/packs", h.Catalog.ListPacks)
	protect("GET /v1/packs/{id}", h.Catalog.GetPack)
	protect("DELETE /v1/packs/{id}", h.Catalog.DeletePack)

	protect("POST /v1/sessions", h.Editor.Open)
	protect("GET /v1/sessions/{id}", h.Editor.Get)
	protect("DELETE /v1/sessions/{id}", h.Editor.Discard)
	protect("POST /v1/sessions/{id}/commands", h.Editor.Apply)
	protect("POST /v1/sessions/{id}/save", h.Editor.Save)

	if h.CatalogWS != nil {
		mux.Handle("GET /ws/catalog", admin(h.CatalogWS))
	}

	return logging.Middleware(logger)(CORS(cfg.CORS)(mux))
}

func pingDependencies(ctx context.Context, deps map[string]Pinger) (string, error) {
	for name, ping := range deps {
		if err := ping(ctx); err != nil {
			return name, err
		}
	}
	return "", nil
}
