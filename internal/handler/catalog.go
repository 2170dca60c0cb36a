package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/store"
)

// CatalogHandler serves the two leaf entities of the catalog: brands and
// stores. Products, variants and purchase units have their own handlers.
type CatalogHandler struct {
	catalog *store.CatalogStore
	logger  *slog.Logger
}

func NewCatalogHandler(cs *store.CatalogStore, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: cs, logger: logger}
}

func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.ListBrands()
	if err != nil {
		h.logger.Error("list brands", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list brands"})
		return
	}
	if brands == nil {
		brands = []model.Brand{}
	}
	writeJSON(w, http.StatusOK, brands)
}

func (h *CatalogHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	brand, err := h.catalog.CreateBrand(req.Name)
	if err != nil {
		h.logger.Error("create brand", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create brand"})
		return
	}
	writeJSON(w, http.StatusCreated, brand)
}

func (h *CatalogHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.catalog.DeleteBrand(id); err != nil {
		h.logger.Error("delete brand", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete brand"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.catalog.ListStores()
	if err != nil {
		h.logger.Error("list stores", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list stores"})
		return
	}
	if stores == nil {
		stores = []model.Store{}
	}
	writeJSON(w, http.StatusOK, stores)
}

func (h *CatalogHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	st, err := h.catalog.CreateStore(req.Name, strings.TrimSpace(req.Location))
	if err != nil {
		h.logger.Error("create store", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create store"})
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *CatalogHandler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.catalog.DeleteStore(id); err != nil {
		h.logger.Error("delete store", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete store"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
