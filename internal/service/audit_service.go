package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sweetshop/internal/model"
	"sweetshop/pkg/apierror"
)

const (
	auditStatusSuccess = "success"
	auditStatusFailed  = "failed"

	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type auditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, int, error)
}

type AuditService struct {
	store auditStore
	now   func() time.Time
}

func NewAuditService(store auditStore) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

// Log records an entry. Store failures are logged and never surface to the
// caller, and the write is detached from the request's cancellation.
func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, before any, after any, errText string) {
	if s == nil || s.store == nil {
		return
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: s.now().UTC().Format(time.RFC3339Nano),
		Actor:      actor,
		Status:     status,
		Resource:   resource,
		Before:     before,
		After:      after,
		Error:      errText,
	}

	if err := s.store.Log(context.WithoutCancel(ctx), entry); err != nil {
		slog.Warn("audit log write failed", "action", action, "resource", resource, "error", err)
	}
}

// Outcome logs a success or failure entry depending on err.
func (s *AuditService) Outcome(ctx context.Context, action string, actor model.AuditActor, resource string, before any, after any, err error) {
	if err != nil {
		s.Log(ctx, action, actor, auditStatusFailed, resource, before, nil, err.Error())
		return
	}
	s.Log(ctx, action, actor, auditStatusSuccess, resource, before, after, "")
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultAuditLimit
	}
	if query.Limit > maxAuditLimit {
		query.Limit = maxAuditLimit
	}

	status := strings.ToLower(strings.TrimSpace(query.Status))
	if status != "" && status != auditStatusSuccess && status != auditStatusFailed {
		return nil, model.Meta{}, apierror.New(apierror.CodeBadRequest, "status must be success or failed", query.Status, http.StatusBadRequest)
	}
	query.Status = status

	items, total, err := s.store.Query(ctx, query)
	if err != nil {
		return nil, model.Meta{}, err
	}

	return items, model.NewMeta(query.Page, query.Limit, total), nil
}
