package handler

import (
	"net/http"
	"strings"

	"sweetshop/internal/model"
	"sweetshop/internal/service"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(service *service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	items, meta, err := h.service.Query(r.Context(), model.AuditQuery{
		Action:  strings.TrimSpace(query.Get("action")),
		ActorID: strings.TrimSpace(query.Get("actor_id")),
		Status:  strings.TrimSpace(query.Get("status")),
		Page:    parseIntOrDefault(query.Get("page"), 1),
		Limit:   parseIntOrDefault(query.Get("limit"), 50),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if items == nil {
		items = []model.AuditEntry{}
	}

	writeSuccess(w, http.StatusOK, model.AuditListData{Items: items}, &meta)
}
