package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"registrar-factura/internal/app"
)

// Options configures the HTTP handler.
type Options struct {
	AllowedOrigins []string
	MaxBodyBytes   int64

	// Ping reports store health for /api/health. Nil skips the check.
	Ping func(ctx context.Context) error
}

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
	ping   func(ctx context.Context) error
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, log *zap.Logger, opts Options) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	h := &Handler{svc: svc, ping: opts.Ping}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(opts.AllowedOrigins))

	r.Get("/api/health", h.health)

	r.Route("/api/facturas", func(r chi.Router) {
		r.Get("/schema", h.schema)
		r.Get("/{ruc}/{codigo}", h.getInvoice)

		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(maxBody))
			r.Post("/registrarFactura", h.registerInvoice)
			r.Post("/validar", h.validateInvoice)
		})
	})

	h.router = r
	return r
}

// health returns service status, including the store when a ping is configured.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
		Store  string `json:"store,omitempty"`
	}

	if h.ping == nil {
		writeJSON(w, response{Status: "ok"})
		return
	}
	if err := h.ping(r.Context()); err != nil {
		writeJSONStatus(w, http.StatusServiceUnavailable, response{Status: "degraded", Store: "unavailable"})
		return
	}
	writeJSON(w, response{Status: "ok", Store: "ok"})
}
