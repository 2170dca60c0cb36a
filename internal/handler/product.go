package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rgoulet/pricebook/internal/category"
	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/store"
)

type ProductHandler struct {
	catalog *store.CatalogStore
	logger  *slog.Logger
}

func NewProductHandler(cs *store.CatalogStore, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: cs, logger: logger}
}

type productRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts()
	if err != nil {
		h.logger.Error("list products", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list products"})
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	product, err := h.catalog.GetProductByID(id)
	if err != nil {
		h.logger.Error("get product", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get product"})
		return
	}
	if product == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	// Auto-categorize if no category provided
	if req.Category == "" {
		req.Category = category.Suggest(req.Name)
	}

	product, err := h.catalog.CreateProduct(req.Name, req.Category)
	if err != nil {
		h.logger.Error("create product", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create product"})
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.catalog.GetProductByID(id)
	if err != nil {
		h.logger.Error("get product", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get product"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Category == "" {
		req.Category = existing.Category
	}

	product, err := h.catalog.UpdateProduct(id, req.Name, req.Category)
	if err != nil {
		h.logger.Error("update product", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update product"})
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.catalog.GetProductByID(id)
	if err != nil {
		h.logger.Error("get product", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get product"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}

	if err := h.catalog.DeleteProduct(id); err != nil {
		h.logger.Error("delete product", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete product"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
