package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/pricing"
	"github.com/rgoulet/pricebook/internal/store"
	ws "github.com/rgoulet/pricebook/internal/websocket"
)

// BasketHandler serves the running to-buy basket. Listing resolves every
// entry against an in-memory catalog snapshot so each response row carries
// its effective product, variant, store and estimated price.
type BasketHandler struct {
	lists   *store.ListStore
	catalog *store.CatalogStore
	prices  *store.PriceStore
	hub     *ws.Hub
	logger  *slog.Logger
}

func NewBasketHandler(ls *store.ListStore, cs *store.CatalogStore, ps *store.PriceStore, hub *ws.Hub, logger *slog.Logger) *BasketHandler {
	return &BasketHandler{lists: ls, catalog: cs, prices: ps, hub: hub, logger: logger}
}

func (h *BasketHandler) broadcast(msg ws.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// loadCatalog reads a full resolution snapshot. One query per entity table is
// fine at personal-use scale.
func loadCatalog(cs *store.CatalogStore, ps *store.PriceStore) (*pricing.Catalog, error) {
	products, err := cs.ListProducts()
	if err != nil {
		return nil, err
	}
	brands, err := cs.ListBrands()
	if err != nil {
		return nil, err
	}
	stores, err := cs.ListStores()
	if err != nil {
		return nil, err
	}
	variants, err := cs.ListVariants()
	if err != nil {
		return nil, err
	}
	units, err := cs.ListPurchaseUnits()
	if err != nil {
		return nil, err
	}
	records, err := ps.List()
	if err != nil {
		return nil, err
	}
	return pricing.NewCatalog(products, brands, stores, variants, units, records), nil
}

// basketItemResponse is a basket entry resolved against the catalog.
type basketItemResponse struct {
	model.ToBuyItem
	ProductName    string  `json:"product_name"`
	VariantDetail  string  `json:"variant_detail"`
	BrandName      string  `json:"brand_name"`
	StoreName      string  `json:"store_name"`
	PurchaseUnit   string  `json:"purchase_unit"`
	EstimatedPrice *string `json:"estimated_price"`
}

func resolveBasketItem(item model.ToBuyItem, cat *pricing.Catalog) basketItemResponse {
	resp := basketItemResponse{ToBuyItem: item}

	if p, ok := cat.EffectiveProduct(item.ItemRefs); ok {
		resp.ProductName = p.Name
	}
	if v, ok := cat.EffectiveVariant(item.ItemRefs); ok {
		resp.VariantDetail = v.Detail
		if v.BrandID != nil {
			if b, ok := cat.Brands[*v.BrandID]; ok {
				resp.BrandName = b.Name
			}
		}
	}
	if s, ok := cat.EffectiveStore(item.ItemRefs); ok {
		resp.StoreName = s.Name
	}
	if item.PurchaseUnitID != nil {
		if pu, ok := cat.PurchaseUnits[*item.PurchaseUnitID]; ok {
			resp.PurchaseUnit = pu.Name
		}
	}
	if est, ok := cat.EstimatedPrice(item.ItemRefs); ok {
		s := est.StringFixed(2)
		resp.EstimatedPrice = &s
	}
	return resp
}

func (h *BasketHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.lists.ListToBuyItems()
	if err != nil {
		h.logger.Error("list basket", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list basket"})
		return
	}
	cat, err := loadCatalog(h.catalog, h.prices)
	if err != nil {
		h.logger.Error("load catalog", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load catalog"})
		return
	}

	out := make([]basketItemResponse, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		out = append(out, resolveBasketItem(item, cat))
		if item.Checked {
			continue
		}
		if est, ok := cat.EstimatedPrice(item.ItemRefs); ok {
			total = total.Add(est)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":           out,
		"estimated_total": total.StringFixed(2),
	})
}

type basketItemRequest struct {
	Quantity           string `json:"quantity"`
	PurchaseUnitID     *int64 `json:"purchase_unit_id"`
	StoreVariantInfoID *int64 `json:"store_variant_info_id"`
	VariantID          *int64 `json:"variant_id"`
	ProductID          *int64 `json:"product_id"`
}

func (r basketItemRequest) refs() model.ItemRefs {
	return model.ItemRefs{
		Quantity:           strings.TrimSpace(r.Quantity),
		PurchaseUnitID:     r.PurchaseUnitID,
		StoreVariantInfoID: r.StoreVariantInfoID,
		VariantID:          r.VariantID,
		ProductID:          r.ProductID,
	}
}

// Add puts an item in the basket, merging quantities into an existing
// unchecked entry for the same thing instead of creating a duplicate row.
func (h *BasketHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req basketItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	refs := req.refs()
	if refs.StoreVariantInfoID == nil && refs.VariantID == nil && refs.ProductID == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a product, variant or price reference is required"})
		return
	}

	item, merged, err := h.lists.AddToBuyItem(refs)
	if err != nil {
		h.logger.Error("add basket item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add item"})
		return
	}

	action := "created"
	if merged {
		action = "merged"
	}
	h.broadcast(ws.NewMessage("to_buy_item", action, item.ID, nil))

	status := http.StatusCreated
	if merged {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{"item": item, "merged": merged})
}

func (h *BasketHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.lists.GetToBuyItemByID(id)
	if err != nil {
		h.logger.Error("get basket item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	var req basketItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.lists.UpdateToBuyItem(id, req.refs())
	if err != nil {
		h.logger.Error("update basket item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}

	h.broadcast(ws.NewMessage("to_buy_item", "updated", id, nil))
	writeJSON(w, http.StatusOK, item)
}

func (h *BasketHandler) SetChecked(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Checked bool `json:"checked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.lists.SetToBuyChecked(id, req.Checked)
	if err != nil {
		h.logger.Error("set checked", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.broadcast(ws.NewMessage("to_buy_item", "checked", id, map[string]any{"checked": item.Checked}))
	writeJSON(w, http.StatusOK, item)
}

func (h *BasketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.lists.DeleteToBuyItem(id); err != nil {
		h.logger.Error("delete basket item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}
	h.broadcast(ws.NewMessage("to_buy_item", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *BasketHandler) ClearChecked(w http.ResponseWriter, r *http.Request) {
	count, err := h.lists.ClearCheckedToBuyItems()
	if err != nil {
		h.logger.Error("clear checked", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear checked"})
		return
	}
	h.broadcast(ws.NewMessage("to_buy_item", "cleared", 0, map[string]any{"count": count}))
	writeJSON(w, http.StatusOK, map[string]int64{"cleared": count})
}
