package web

import (
	"net/http"
	"strconv"
)

// apiStockLevels handles GET /api/inventory/stock.
func (h *Handler) apiStockLevels(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetStockLevels(r.Context(), tenantOf(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiSearch handles GET /api/inventory/search?q=term.
func (h *Handler) apiSearch(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SearchMedicines(r.Context(), tenantOf(r), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiLowStock handles GET /api/inventory/low-stock.
func (h *Handler) apiLowStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetLowStock(r.Context(), tenantOf(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiExpiring handles GET /api/inventory/expiring?days=N.
func (h *Handler) apiExpiring(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, "days must be a non-negative integer", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		days = n
	}
	result, err := h.svc.GetExpiringBatches(r.Context(), tenantOf(r), days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiSalesSummary handles GET /api/reports/sales-summary?since=YYYY-MM-DD.
func (h *Handler) apiSalesSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetSalesSummary(r.Context(), tenantOf(r), r.URL.Query().Get("since"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
