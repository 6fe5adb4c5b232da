package web

import (
	"net/http"

	"pharmacy-erp/internal/app"
	"pharmacy-erp/internal/core"
)

// apiCreateSale handles POST /api/sales.
// Body: { customer_id?, items: [{medicine_id, quantity_in_units}] }
// The selling staff member is taken from the token.
func (h *Handler) apiCreateSale(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerID string               `json:"customer_id"`
		Items      []core.SaleLineInput `json:"items"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	claims := authFromContext(r.Context())
	result, err := h.svc.CreateSale(r.Context(), app.CreateSaleRequest{
		TenantID:   claims.TenantID,
		StaffID:    claims.StaffID,
		CustomerID: body.CustomerID,
		Lines:      body.Items,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, result.Sale)
}

// apiGetSale handles GET /api/sales/{id}.
func (h *Handler) apiGetSale(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetSale(r.Context(), tenantOf(r), pathID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Sale)
}

// apiCreatePurchase handles POST /api/purchases.
// Body: { supplier_id, items: [{batch_id, quantity_in_packs, unit_purchase_price}] }
func (h *Handler) apiCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SupplierID string                   `json:"supplier_id"`
		Items      []core.PurchaseLineInput `json:"items"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.CreatePurchase(r.Context(), app.CreatePurchaseRequest{
		TenantID:   tenantOf(r),
		SupplierID: body.SupplierID,
		Lines:      body.Items,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, result.Purchase)
}

// apiGetPurchase handles GET /api/purchases/{id}.
func (h *Handler) apiGetPurchase(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetPurchase(r.Context(), tenantOf(r), pathID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Purchase)
}
