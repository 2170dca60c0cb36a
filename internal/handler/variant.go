package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/pricing"
	"github.com/rgoulet/pricebook/internal/store"
	"github.com/rgoulet/pricebook/internal/unit"
)

type VariantHandler struct {
	catalog *store.CatalogStore
	logger  *slog.Logger
}

func NewVariantHandler(cs *store.CatalogStore, logger *slog.Logger) *VariantHandler {
	return &VariantHandler{catalog: cs, logger: logger}
}

type variantRequest struct {
	BrandID  *int64 `json:"brand_id"`
	Detail   string `json:"detail"`
	BaseUnit string `json:"base_unit"`
}

func (h *VariantHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.PathValue("product_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product_id"})
		return
	}
	variants, err := h.catalog.ListVariantsByProduct(productID)
	if err != nil {
		h.logger.Error("list variants", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list variants"})
		return
	}
	if variants == nil {
		variants = []model.ProductVariant{}
	}
	writeJSON(w, http.StatusOK, variants)
}

func (h *VariantHandler) Create(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.PathValue("product_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product_id"})
		return
	}

	var req variantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	baseUnit, ok := unit.Parse(req.BaseUnit)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid base_unit"})
		return
	}

	variant, err := h.catalog.CreateVariant(productID, req.BrandID, strings.TrimSpace(req.Detail), baseUnit)
	if err != nil {
		h.logger.Error("create variant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create variant"})
		return
	}
	writeJSON(w, http.StatusCreated, variant)
}

func (h *VariantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	variant, err := h.catalog.GetVariantByID(id)
	if err != nil {
		h.logger.Error("get variant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get variant"})
		return
	}
	if variant == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "variant not found"})
		return
	}
	writeJSON(w, http.StatusOK, variant)
}

func (h *VariantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req variantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	variant, err := h.catalog.UpdateVariant(id, req.BrandID, strings.TrimSpace(req.Detail))
	if err != nil {
		h.logger.Error("update variant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update variant"})
		return
	}
	if variant == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "variant not found"})
		return
	}
	writeJSON(w, http.StatusOK, variant)
}

// ChangeBaseUnit swaps the variant's canonical unit. All purchase units of the
// variant are deleted in the same transaction because their stored conversions
// are expressed against the old base.
func (h *VariantHandler) ChangeBaseUnit(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		BaseUnit string `json:"base_unit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	baseUnit, ok := unit.Parse(req.BaseUnit)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid base_unit"})
		return
	}

	variant, err := h.catalog.ChangeBaseUnit(id, baseUnit)
	if err != nil {
		h.logger.Error("change base unit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to change base unit"})
		return
	}
	if variant == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "variant not found"})
		return
	}
	writeJSON(w, http.StatusOK, variant)
}

func (h *VariantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.catalog.DeleteVariant(id); err != nil {
		h.logger.Error("delete variant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete variant"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type purchaseUnitRequest struct {
	Name       string  `json:"name"`
	Unit       string  `json:"unit"`
	Conversion float64 `json:"conversion"`
	IsInverted bool    `json:"is_inverted"`
}

// purchaseUnitResponse augments the stored row with the value as the user
// entered it and a human-readable rendering of the conversion.
type purchaseUnitResponse struct {
	model.PurchaseUnit
	EnteredValue      float64 `json:"entered_value"`
	ConversionDisplay string  `json:"conversion_display"`
}

func (h *VariantHandler) purchaseUnitResponse(pu model.PurchaseUnit, baseUnit unit.Unit) purchaseUnitResponse {
	return purchaseUnitResponse{
		PurchaseUnit: pu,
		EnteredValue: pricing.DisplayConversion(pu.ConversionToBase, pu.IsInverted),
		ConversionDisplay: pricing.FormatConversion(
			pu.ConversionToBase, baseUnit.Symbol(), pu.Name, pu.IsInverted),
	}
}

func (h *VariantHandler) ListPurchaseUnits(w http.ResponseWriter, r *http.Request) {
	variantID, err := strconv.ParseInt(r.PathValue("variant_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid variant_id"})
		return
	}

	variant, err := h.catalog.GetVariantByID(variantID)
	if err != nil {
		h.logger.Error("get variant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get variant"})
		return
	}
	if variant == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "variant not found"})
		return
	}

	units, err := h.catalog.ListPurchaseUnitsByVariant(variantID)
	if err != nil {
		h.logger.Error("list purchase units", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list purchase units"})
		return
	}

	out := make([]purchaseUnitResponse, 0, len(units))
	for _, pu := range units {
		out = append(out, h.purchaseUnitResponse(pu, variant.BaseUnit))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *VariantHandler) CreatePurchaseUnit(w http.ResponseWriter, r *http.Request) {
	variantID, err := strconv.ParseInt(r.PathValue("variant_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid variant_id"})
		return
	}

	variant, err := h.catalog.GetVariantByID(variantID)
	if err != nil {
		h.logger.Error("get variant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get variant"})
		return
	}
	if variant == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "variant not found"})
		return
	}

	var req purchaseUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Conversion <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "conversion must be positive"})
		return
	}
	u, ok := unit.Parse(req.Unit)
	if !ok {
		u = variant.BaseUnit
	}

	conversion := pricing.ConversionFromInput(req.Conversion, req.IsInverted)
	pu, err := h.catalog.CreatePurchaseUnit(variantID, req.Name, u, conversion, req.IsInverted)
	if err != nil {
		h.logger.Error("create purchase unit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create purchase unit"})
		return
	}
	writeJSON(w, http.StatusCreated, h.purchaseUnitResponse(*pu, variant.BaseUnit))
}

func (h *VariantHandler) UpdatePurchaseUnit(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.catalog.GetPurchaseUnitByID(id)
	if err != nil {
		h.logger.Error("get purchase unit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get purchase unit"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "purchase unit not found"})
		return
	}

	variant, err := h.catalog.GetVariantByID(existing.VariantID)
	if err != nil || variant == nil {
		h.logger.Error("get variant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get variant"})
		return
	}

	var req purchaseUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Conversion <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "conversion must be positive"})
		return
	}
	u, ok := unit.Parse(req.Unit)
	if !ok {
		u = existing.Unit
	}

	conversion := pricing.ConversionFromInput(req.Conversion, req.IsInverted)
	pu, err := h.catalog.UpdatePurchaseUnit(id, req.Name, u, conversion, req.IsInverted)
	if err != nil {
		h.logger.Error("update purchase unit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update purchase unit"})
		return
	}
	writeJSON(w, http.StatusOK, h.purchaseUnitResponse(*pu, variant.BaseUnit))
}

// DeletePurchaseUnit removes a purchase unit. Price records that used it for
// pricing keep their captured conversion snapshot; line items referencing it
// fall back to base-unit display.
func (h *VariantHandler) DeletePurchaseUnit(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.catalog.DeletePurchaseUnit(id); err != nil {
		h.logger.Error("delete purchase unit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete purchase unit"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
