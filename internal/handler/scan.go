package handler

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/receipt"
	"github.com/rgoulet/pricebook/internal/scanner"
	"github.com/rgoulet/pricebook/internal/store"
	ws "github.com/rgoulet/pricebook/internal/websocket"
)

// sessionTTL bounds how long an uncommitted scan sits in memory.
const sessionTTL = 24 * time.Hour

// scanSession is the transient review state between parsing a receipt and
// committing it. Nothing is persisted until commit; cancel just drops the
// session.
type scanSession struct {
	ID        uuid.UUID                  `json:"id"`
	StoreID   int64                      `json:"store_id"`
	Merchant  string                     `json:"merchant"`
	Items     []model.MatchedReceiptItem `json:"items"`
	CreatedAt time.Time                  `json:"created_at"`
}

type ScanHandler struct {
	scanner   *scanner.Client
	catalog   *store.CatalogStore
	prices    *store.PriceStore
	committer *receipt.Committer
	hub       *ws.Hub
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*scanSession
}

func NewScanHandler(sc *scanner.Client, cs *store.CatalogStore, ps *store.PriceStore, committer *receipt.Committer, hub *ws.Hub, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		scanner:   sc,
		catalog:   cs,
		prices:    ps,
		committer: committer,
		hub:       hub,
		logger:    logger,
		sessions:  make(map[uuid.UUID]*scanSession),
	}
}

func (h *ScanHandler) broadcast(msg ws.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *ScanHandler) pruneLocked() {
	cutoff := time.Now().Add(-sessionTTL)
	for id, s := range h.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(h.sessions, id)
		}
	}
}

// snapshot copies the session under the lock so callers can read it without
// racing UpdateItem, which mutates Items elements in place.
func (h *ScanHandler) snapshot(r *http.Request) (scanSession, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return scanSession{}, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		return scanSession{}, false
	}
	copied := *s
	copied.Items = append([]model.MatchedReceiptItem(nil), s.Items...)
	return copied, true
}

type scanRequest struct {
	Image     string `json:"image"`
	MediaType string `json:"media_type"`
	StoreID   *int64 `json:"store_id"`
}

// Create parses a receipt image, classifies every line against the catalog
// and opens a review session. The target store is the explicit store_id when
// given, otherwise a store found or created from the parsed merchant name.
func (h *ScanHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.scanner.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "receipt scanning is not configured"})
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil || len(image) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid image"})
		return
	}
	if req.MediaType == "" {
		req.MediaType = "image/jpeg"
	}

	result, err := h.scanner.Parse(r.Context(), image, req.MediaType)
	if err != nil {
		h.logger.Error("parse receipt", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to parse receipt"})
		return
	}

	storeID, merchant, err := h.resolveStore(req.StoreID, result.Merchant)
	if err != nil {
		h.logger.Error("resolve store", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve store"})
		return
	}
	if storeID == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "no merchant on receipt; pass store_id"})
		return
	}

	snap, err := h.loadSnapshot()
	if err != nil {
		h.logger.Error("load snapshot", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load catalog"})
		return
	}

	session := &scanSession{
		ID:        uuid.New(),
		StoreID:   storeID,
		Merchant:  merchant,
		Items:     receipt.Classify(result.Items, storeID, snap),
		CreatedAt: time.Now().UTC(),
	}

	h.mu.Lock()
	h.pruneLocked()
	h.sessions[session.ID] = session
	h.mu.Unlock()

	h.logger.Info("scan session opened", "id", session.ID, "store_id", storeID, "items", len(session.Items))
	writeJSON(w, http.StatusCreated, session)
}

// resolveStore picks the store a scan is reconciled against. An explicit ID
// wins; otherwise the merchant name is looked up case-insensitively and a new
// store is created on first sight. Returns 0 when neither is usable.
func (h *ScanHandler) resolveStore(storeID *int64, merchant string) (int64, string, error) {
	if storeID != nil {
		st, err := h.catalog.GetStoreByID(*storeID)
		if err != nil || st == nil {
			return 0, "", err
		}
		return st.ID, st.Name, nil
	}

	merchant = strings.TrimSpace(merchant)
	if merchant == "" {
		return 0, "", nil
	}
	st, err := h.catalog.GetStoreByName(merchant)
	if err != nil {
		return 0, "", err
	}
	if st == nil {
		st, err = h.catalog.CreateStore(merchant, "")
		if err != nil {
			return 0, "", err
		}
	}
	return st.ID, st.Name, nil
}

func (h *ScanHandler) loadSnapshot() (receipt.Snapshot, error) {
	products, err := h.catalog.ListProducts()
	if err != nil {
		return receipt.Snapshot{}, err
	}
	brands, err := h.catalog.ListBrands()
	if err != nil {
		return receipt.Snapshot{}, err
	}
	variants, err := h.catalog.ListVariants()
	if err != nil {
		return receipt.Snapshot{}, err
	}
	prices, err := h.prices.List()
	if err != nil {
		return receipt.Snapshot{}, err
	}
	return receipt.Snapshot{
		Products: products,
		Brands:   brands,
		Variants: variants,
		Prices:   prices,
	}, nil
}

func (h *ScanHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.snapshot(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "scan not found"})
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// scanItemUpdate carries per-line review edits. Only fields present in the
// request change; reference overrides replace the matched IDs wholesale.
type scanItemUpdate struct {
	Included           *bool   `json:"included"`
	Name               *string `json:"name"`
	Price              *string `json:"price"`
	ProductID          *int64  `json:"product_id"`
	VariantID          *int64  `json:"variant_id"`
	StoreVariantInfoID *int64  `json:"store_variant_info_id"`
}

func (h *ScanHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "scan not found"})
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item index"})
		return
	}

	var req scanItemUpdate
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

	h.mu.Lock()
	session, ok := h.sessions[id]
	if !ok {
		h.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "scan not found"})
		return
	}
	if index >= len(session.Items) {
		h.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item index"})
		return
	}
	item := &session.Items[index]
	if req.Included != nil {
		item.Included = *req.Included
	}
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if price != nil {
		item.Price = price
	}
	if req.ProductID != nil {
		item.ProductID = req.ProductID
		item.Status = model.MatchStatusMatched
	}
	if req.VariantID != nil {
		item.VariantID = req.VariantID
	}
	if req.StoreVariantInfoID != nil {
		item.StoreVariantInfoID = req.StoreVariantInfoID
	}
	updated := *item
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, updated)
}

func (h *ScanHandler) Commit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.snapshot(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "scan not found"})
		return
	}

	result, err := h.committer.Commit(session.StoreID, session.Merchant, session.Items)
	if err != nil {
		h.logger.Error("commit scan", "error", err, "id", session.ID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to commit scan"})
		return
	}

	h.mu.Lock()
	delete(h.sessions, session.ID)
	h.mu.Unlock()

	var tripID int64
	if result.Trip != nil {
		tripID = result.Trip.ID
	}
	h.broadcast(ws.NewMessage("scan", "committed", tripID, map[string]any{
		"prices_updated":   result.PricesUpdated,
		"products_created": result.ProductsCreated,
	}))

	h.logger.Info("scan committed", "id", session.ID,
		"prices_updated", result.PricesUpdated, "products_created", result.ProductsCreated)
	writeJSON(w, http.StatusOK, result)
}

func (h *ScanHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "scan not found"})
		return
	}
	h.mu.Lock()
	_, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "scan not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
