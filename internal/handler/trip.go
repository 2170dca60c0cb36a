package handler

import (
	"log/slog"
	"net/http"

	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/store"
)

type TripHandler struct {
	trips  *store.TripStore
	logger *slog.Logger
}

func NewTripHandler(ts *store.TripStore, logger *slog.Logger) *TripHandler {
	return &TripHandler{trips: ts, logger: logger}
}

func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	trips, err := h.trips.List()
	if err != nil {
		h.logger.Error("list trips", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list trips"})
		return
	}
	if trips == nil {
		trips = []model.PurchaseTrip{}
	}
	writeJSON(w, http.StatusOK, trips)
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	trip, err := h.trips.GetByID(id)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get trip"})
		return
	}
	if trip == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "trip not found"})
		return
	}

	lines, err := h.trips.Lines(id)
	if err != nil {
		h.logger.Error("list trip lines", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list trip lines"})
		return
	}
	if lines == nil {
		lines = []model.PurchaseTripLine{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"trip": trip, "lines": lines})
}
