package handler

import (
	"net/http"
	"strings"

	"sweetshop/internal/model"
	"sweetshop/internal/service"
)

type SweetHandler struct {
	catalog *service.CatalogService
}

func NewSweetHandler(catalog *service.CatalogService) *SweetHandler {
	return &SweetHandler{catalog: catalog}
}

func (h *SweetHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nonNil(items), nil)
}

func (h *SweetHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	minPrice, err := parseOptionalFloat(query, "min_price")
	if err != nil {
		writeError(w, err)
		return
	}
	maxPrice, err := parseOptionalFloat(query, "max_price")
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.catalog.Search(r.Context(), model.SearchFilters{
		Name:     strings.TrimSpace(query.Get("name")),
		Category: strings.TrimSpace(query.Get("category")),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nonNil(items), nil)
}

func (h *SweetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, item, nil)
}

func (h *SweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.ItemInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.catalog.Create(r.Context(), actorFromRequest(r), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, item, nil)
}

func (h *SweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.ItemInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.catalog.Update(r.Context(), actorFromRequest(r), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, item, nil)
}

func (h *SweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.catalog.Delete(r.Context(), actorFromRequest(r), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}

func nonNil(items []model.Item) []model.Item {
	if items == nil {
		return []model.Item{}
	}
	return items
}
