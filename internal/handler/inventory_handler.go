package handler

import (
	"net/http"

	"sweetshop/internal/model"
	"sweetshop/internal/service"
)

type InventoryHandler struct {
	inventory *service.InventoryService
}

func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

func (h *InventoryHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	id, payload, ok := h.readAdjustment(w, r)
	if !ok {
		return
	}

	result, err := h.inventory.Purchase(r.Context(), actorFromRequest(r), id, payload.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}

func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	id, payload, ok := h.readAdjustment(w, r)
	if !ok {
		return
	}

	result, err := h.inventory.Restock(r.Context(), actorFromRequest(r), id, payload.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}

func (h *InventoryHandler) readAdjustment(w http.ResponseWriter, r *http.Request) (int64, model.QuantityRequest, bool) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, err)
		return 0, model.QuantityRequest{}, false
	}

	var payload model.QuantityRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return 0, model.QuantityRequest{}, false
	}

	return id, payload, true
}
