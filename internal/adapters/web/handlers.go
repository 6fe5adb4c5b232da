package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"pharmacy-erp/internal/app"

	"github.com/go-chi/chi/v5"
)

// Options configures the HTTP adapter.
type Options struct {
	AllowedOrigins []string
	JWTSecret      string
	BodyLimit      int64
	// Ping reports backing store health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// Handler serves the HTTP API over an ApplicationService.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
	ping      func(ctx context.Context) error
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 1 << 20
	}
	h := &Handler{
		svc:       svc,
		jwtSecret: opts.JWTSecret,
		ping:      opts.Ping,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(opts.AllowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(opts.BodyLimit))

		r.Get("/api/auth/me", h.me)

		// ── Catalog ───────────────────────────────────────────────────────────
		r.Get("/api/medicines", h.apiListMedicines)
		r.Post("/api/medicines", h.apiCreateMedicine)
		r.Post("/api/batches", h.apiCreateBatch)
		r.Get("/api/batches/{id}/stock", h.apiBatchStock)
		r.Get("/api/batches/{id}/ledger", h.apiBatchLedger)

		// ── Sales & purchases ─────────────────────────────────────────────────
		r.Post("/api/sales", h.apiCreateSale)
		r.Get("/api/sales/{id}", h.apiGetSale)
		r.Post("/api/purchases", h.apiCreatePurchase)
		r.Get("/api/purchases/{id}", h.apiGetPurchase)

		// ── Inventory & reports ───────────────────────────────────────────────
		r.Get("/api/inventory/stock", h.apiStockLevels)
		r.Get("/api/inventory/search", h.apiSearch)
		r.Get("/api/inventory/low-stock", h.apiLowStock)
		r.Get("/api/inventory/expiring", h.apiExpiring)
		r.Get("/api/reports/sales-summary", h.apiSalesSummary)
	})

	return r
}

// health returns service status and whether the store answers.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}

	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(response{Status: "degraded", Database: "unreachable"})
			return
		}
	}
	writeJSON(w, response{Status: "ok", Database: "ok"})
}

// pathID extracts the {id} URL parameter.
func pathID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
