package web

import (
	"net/http"

	"pharmacy-erp/internal/app"
	"pharmacy-erp/internal/core"

	"github.com/shopspring/decimal"
)

// apiListMedicines handles GET /api/medicines.
func (h *Handler) apiListMedicines(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListMedicines(r.Context(), tenantOf(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreateMedicine handles POST /api/medicines.
// Body: { brand_name, manufacturer?, dosage_form?, composition: [{drug, strength}], tax_rate }
func (h *Handler) apiCreateMedicine(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BrandName    string             `json:"brand_name"`
		Manufacturer string             `json:"manufacturer"`
		DosageForm   string             `json:"dosage_form"`
		Composition  []core.Composition `json:"composition"`
		TaxRate      decimal.Decimal    `json:"tax_rate"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	m, err := h.svc.CreateMedicine(r.Context(), app.CreateMedicineRequest{
		TenantID:     tenantOf(r),
		BrandName:    body.BrandName,
		Manufacturer: body.Manufacturer,
		DosageForm:   body.DosageForm,
		Composition:  body.Composition,
		TaxRate:      body.TaxRate,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, m)
}

// apiCreateBatch handles POST /api/batches.
// Body: { medicine_id, batch_number, expiry_date: "YYYY-MM-DD", price_per_unit, units_per_pack }
func (h *Handler) apiCreateBatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MedicineID   string          `json:"medicine_id"`
		BatchNumber  string          `json:"batch_number"`
		ExpiryDate   string          `json:"expiry_date"`
		PricePerUnit decimal.Decimal `json:"price_per_unit"`
		UnitsPerPack int64           `json:"units_per_pack"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	b, err := h.svc.CreateBatch(r.Context(), app.CreateBatchRequest{
		TenantID:     tenantOf(r),
		MedicineID:   body.MedicineID,
		BatchNumber:  body.BatchNumber,
		ExpiryDate:   body.ExpiryDate,
		PricePerUnit: body.PricePerUnit,
		UnitsPerPack: body.UnitsPerPack,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, b)
}

// apiBatchStock handles GET /api/batches/{id}/stock.
func (h *Handler) apiBatchStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetBatchStock(r.Context(), tenantOf(r), pathID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiBatchLedger handles GET /api/batches/{id}/ledger.
func (h *Handler) apiBatchLedger(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetBatchLedger(r.Context(), tenantOf(r), pathID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
