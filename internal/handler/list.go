package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/store"
	ws "github.com/rgoulet/pricebook/internal/websocket"
)

// ListHandler serves named shopping lists and reusable templates, plus the
// two operations that feed the basket: moving a single list entry in and
// instantiating a whole template.
type ListHandler struct {
	lists  *store.ListStore
	hub    *ws.Hub
	logger *slog.Logger
}

func NewListHandler(ls *store.ListStore, hub *ws.Hub, logger *slog.Logger) *ListHandler {
	return &ListHandler{lists: ls, hub: hub, logger: logger}
}

func (h *ListHandler) broadcast(msg ws.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *ListHandler) ListShoppingLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListShoppingLists()
	if err != nil {
		h.logger.Error("list shopping lists", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list shopping lists"})
		return
	}
	if lists == nil {
		lists = []model.ShoppingList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ListHandler) CreateShoppingList(w http.ResponseWriter, r *http.Request) {
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

	list, err := h.lists.CreateShoppingList(req.Name)
	if err != nil {
		h.logger.Error("create shopping list", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create shopping list"})
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (h *ListHandler) DeleteShoppingList(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.lists.DeleteShoppingList(id); err != nil {
		h.logger.Error("delete shopping list", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete shopping list"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	listID, err := strconv.ParseInt(r.PathValue("list_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid list_id"})
		return
	}
	items, err := h.lists.ListItemsByList(listID)
	if err != nil {
		h.logger.Error("list items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	if items == nil {
		items = []model.ShoppingListItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ListHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	listID, err := strconv.ParseInt(r.PathValue("list_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid list_id"})
		return
	}

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

	item, err := h.lists.CreateListItem(listID, refs)
	if err != nil {
		h.logger.Error("create list item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ListHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.lists.GetListItemByID(id)
	if err != nil {
		h.logger.Error("get list item", "error", err)
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

	item, err := h.lists.UpdateListItem(id, req.refs())
	if err != nil {
		h.logger.Error("update list item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ListHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.lists.DeleteListItem(id); err != nil {
		h.logger.Error("delete list item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveItemToBasket copies a shopping-list entry into the basket with the
// usual merge-on-add semantics, then removes it from the list.
func (h *ListHandler) MoveItemToBasket(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	listItem, err := h.lists.GetListItemByID(id)
	if err != nil {
		h.logger.Error("get list item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if listItem == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	item, merged, err := h.lists.AddToBuyItem(listItem.ItemRefs)
	if err != nil {
		h.logger.Error("move item to basket", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to move item"})
		return
	}
	if err := h.lists.DeleteListItem(id); err != nil {
		h.logger.Error("delete moved list item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to remove list item"})
		return
	}

	action := "created"
	if merged {
		action = "merged"
	}
	h.broadcast(ws.NewMessage("to_buy_item", action, item.ID, nil))
	writeJSON(w, http.StatusOK, map[string]any{"item": item, "merged": merged})
}

func (h *ListHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.lists.ListTemplates()
	if err != nil {
		h.logger.Error("list templates", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list templates"})
		return
	}
	if templates == nil {
		templates = []model.ListTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *ListHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
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

	template, err := h.lists.CreateTemplate(req.Name)
	if err != nil {
		h.logger.Error("create template", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create template"})
		return
	}
	writeJSON(w, http.StatusCreated, template)
}

func (h *ListHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.lists.DeleteTemplate(id); err != nil {
		h.logger.Error("delete template", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete template"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListHandler) ListTemplateItems(w http.ResponseWriter, r *http.Request) {
	templateID, err := strconv.ParseInt(r.PathValue("template_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid template_id"})
		return
	}
	items, err := h.lists.ListTemplateItems(templateID)
	if err != nil {
		h.logger.Error("list template items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	if items == nil {
		items = []model.ListTemplateItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ListHandler) CreateTemplateItem(w http.ResponseWriter, r *http.Request) {
	templateID, err := strconv.ParseInt(r.PathValue("template_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid template_id"})
		return
	}

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

	item, err := h.lists.CreateTemplateItem(templateID, refs)
	if err != nil {
		h.logger.Error("create template item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ListHandler) DeleteTemplateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.lists.DeleteTemplateItem(id); err != nil {
		h.logger.Error("delete template item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Instantiate adds every entry of a template to the basket. Entries that
// collide with an existing unchecked basket row merge instead of duplicating.
func (h *ListHandler) Instantiate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	template, err := h.lists.GetTemplateByID(id)
	if err != nil {
		h.logger.Error("get template", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get template"})
		return
	}
	if template == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
		return
	}

	added, merged, err := h.lists.InstantiateTemplate(id)
	if err != nil {
		h.logger.Error("instantiate template", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to instantiate template"})
		return
	}

	h.broadcast(ws.NewMessage("to_buy_item", "instantiated", id, map[string]any{
		"added":  added,
		"merged": merged,
	}))
	writeJSON(w, http.StatusOK, map[string]int{"added": added, "merged": merged})
}
