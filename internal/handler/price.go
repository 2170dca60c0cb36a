package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/pricing"
	"github.com/rgoulet/pricebook/internal/store"
	ws "github.com/rgoulet/pricebook/internal/websocket"
)

type PriceHandler struct {
	prices  *store.PriceStore
	catalog *store.CatalogStore
	hub     *ws.Hub
	logger  *slog.Logger
}

func NewPriceHandler(ps *store.PriceStore, cs *store.CatalogStore, hub *ws.Hub, logger *slog.Logger) *PriceHandler {
	return &PriceHandler{prices: ps, catalog: cs, hub: hub, logger: logger}
}

func (h *PriceHandler) broadcast(msg ws.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type priceRequest struct {
	Price         *string `json:"price"`
	PricingUnitID *int64  `json:"pricing_unit_id"`
}

// priceResponse augments the stored record with the derived per-base-unit
// price when it can be computed.
type priceResponse struct {
	model.StoreVariantInfo
	PricePerBaseUnit *string `json:"price_per_base_unit"`
}

func buildPriceResponse(rec model.StoreVariantInfo) priceResponse {
	resp := priceResponse{StoreVariantInfo: rec}
	if base, ok := pricing.PricePerBaseUnit(rec); ok {
		s := base.String()
		resp.PricePerBaseUnit = &s
	}
	return resp
}

func (h *PriceHandler) ListByVariant(w http.ResponseWriter, r *http.Request) {
	variantID, err := strconv.ParseInt(r.PathValue("variant_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid variant_id"})
		return
	}

	records, err := h.prices.ListByVariant(variantID)
	if err != nil {
		h.logger.Error("list prices", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list prices"})
		return
	}

	out := make([]priceResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, buildPriceResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// Upsert creates or updates the price record for a (variant, store) pair. The
// pricing unit's conversion factor is snapshotted at write time.
func (h *PriceHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	variantID, err := strconv.ParseInt(r.PathValue("variant_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid variant_id"})
		return
	}
	storeID, err := strconv.ParseInt(r.PathValue("store_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store_id"})
		return
	}

	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	var price *decimal.Decimal
	if req.Price != nil {
		d, err := decimal.NewFromString(*req.Price)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
			return
		}
		price = &d
	}

	existing, err := h.prices.GetByVariantAndStore(variantID, storeID)
	if err != nil {
		h.logger.Error("get price record", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get price record"})
		return
	}

	var rec *model.StoreVariantInfo
	status := http.StatusOK
	if existing == nil {
		rec, err = h.prices.Create(variantID, storeID, price, req.PricingUnitID)
		status = http.StatusCreated
	} else {
		rec, err = h.prices.UpdatePrice(existing.ID, price, req.PricingUnitID)
	}
	if err != nil {
		h.logger.Error("upsert price record", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save price"})
		return
	}

	h.broadcast(ws.NewMessage("price", "updated", rec.ID, map[string]any{
		"variant_id": rec.VariantID,
		"store_id":   rec.StoreID,
	}))
	writeJSON(w, status, buildPriceResponse(*rec))
}

func (h *PriceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	rec, err := h.prices.GetByID(id)
	if err != nil {
		h.logger.Error("get price record", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get price record"})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "price record not found"})
		return
	}
	writeJSON(w, http.StatusOK, buildPriceResponse(*rec))
}

func (h *PriceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.prices.Delete(id); err != nil {
		h.logger.Error("delete price record", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete price record"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PriceHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	points, err := h.prices.History(id)
	if err != nil {
		h.logger.Error("list price history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list history"})
		return
	}
	if points == nil {
		points = []model.PricePoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

// UnitPrice answers "what does one of this purchase unit cost" for a price
// record. Responds 200 with a null price when the conversion degenerates; the
// UI shows that as no price available.
func (h *PriceHandler) UnitPrice(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	puID, err := strconv.ParseInt(r.URL.Query().Get("purchase_unit_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid purchase_unit_id"})
		return
	}

	rec, err := h.prices.GetByID(id)
	if err != nil {
		h.logger.Error("get price record", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get price record"})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "price record not found"})
		return
	}
	pu, err := h.catalog.GetPurchaseUnitByID(puID)
	if err != nil {
		h.logger.Error("get purchase unit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get purchase unit"})
		return
	}
	if pu == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "purchase unit not found"})
		return
	}

	var priceStr *string
	if price, ok := pricing.PriceForPurchaseUnit(*rec, *pu); ok {
		s := price.StringFixed(2)
		priceStr = &s
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"purchase_unit_id": pu.ID,
		"price":            priceStr,
	})
}
