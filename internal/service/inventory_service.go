package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sweetshop/internal/event"
	"sweetshop/internal/metrics"
	"sweetshop/internal/model"
	"sweetshop/pkg/apierror"
)

const (
	operationPurchase = "purchase"
	operationRestock  = "restock"
)

type stockStore interface {
	Purchase(ctx context.Context, id int64, quantity int) (model.Item, error)
	Restock(ctx context.Context, id int64, quantity int) (model.Item, error)
}

type InventoryService struct {
	items             stockStore
	cache             itemCache
	audit             *AuditService
	bus               event.Bus
	lowStockThreshold int
}

// NewInventoryService wires stock adjustments. cache and bus may be nil.
func NewInventoryService(items stockStore, cache itemCache, audit *AuditService, bus event.Bus, lowStockThreshold int) *InventoryService {
	return &InventoryService{
		items:             items,
		cache:             cache,
		audit:             audit,
		bus:               bus,
		lowStockThreshold: lowStockThreshold,
	}
}

// Purchase removes quantity units from stock. The store applies the
// decrement only while stock covers it, so a short item is left unchanged.
func (s *InventoryService) Purchase(ctx context.Context, actor model.AuditActor, id int64, quantity int) (model.InventoryResult, error) {
	if err := validateQuantity(quantity); err != nil {
		recordAdjustment(operationPurchase, err)
		return model.InventoryResult{}, err
	}

	item, err := s.items.Purchase(ctx, id, quantity)
	if err != nil {
		err = itemError(err, id)
		recordAdjustment(operationPurchase, err)
		s.audit.Outcome(ctx, "stock.purchase", actor, itemResource(id), map[string]int{"requested": quantity}, nil, err)
		return model.InventoryResult{}, err
	}

	recordAdjustment(operationPurchase, nil)
	metrics.InventoryUnitsTotal.WithLabelValues(operationPurchase).Add(float64(quantity))
	s.audit.Outcome(ctx, "stock.purchase", actor, itemResource(id), map[string]int{"quantity": item.Quantity + quantity}, item, nil)

	invalidateCache(ctx, s.cache)
	publish(s.bus, event.TypeStockPurchased, adjustmentPayload(item, quantity), actor)
	if item.Quantity <= s.lowStockThreshold {
		slog.Info("item stock low", "item_id", item.ID, "quantity", item.Quantity, "threshold", s.lowStockThreshold)
		publish(s.bus, event.TypeStockLow, item, actor)
	}

	return model.InventoryResult{
		Item:    item,
		Message: fmt.Sprintf("Successfully purchased %d units of %s", quantity, item.Name),
	}, nil
}

// Restock adds quantity units to stock.
func (s *InventoryService) Restock(ctx context.Context, actor model.AuditActor, id int64, quantity int) (model.InventoryResult, error) {
	if err := validateRestock(quantity); err != nil {
		recordAdjustment(operationRestock, err)
		return model.InventoryResult{}, err
	}

	item, err := s.items.Restock(ctx, id, quantity)
	if err != nil {
		err = itemError(err, id)
		recordAdjustment(operationRestock, err)
		s.audit.Outcome(ctx, "stock.restock", actor, itemResource(id), map[string]int{"requested": quantity}, nil, err)
		return model.InventoryResult{}, err
	}

	recordAdjustment(operationRestock, nil)
	metrics.InventoryUnitsTotal.WithLabelValues(operationRestock).Add(float64(quantity))
	s.audit.Outcome(ctx, "stock.restock", actor, itemResource(id), map[string]int{"quantity": item.Quantity - quantity}, item, nil)

	invalidateCache(ctx, s.cache)
	publish(s.bus, event.TypeStockRestocked, adjustmentPayload(item, quantity), actor)

	return model.InventoryResult{
		Item:    item,
		Message: fmt.Sprintf("Successfully restocked %d units of %s", quantity, item.Name),
	}, nil
}

func adjustmentPayload(item model.Item, quantity int) map[string]any {
	return map[string]any{
		"item_id":  item.ID,
		"name":     item.Name,
		"delta":    quantity,
		"quantity": item.Quantity,
	}
}

func recordAdjustment(operation string, err error) {
	result := "success"
	if err != nil {
		var apiErr *apierror.APIError
		switch {
		case !errors.As(err, &apiErr):
			result = "error"
		case apiErr.Code == apierror.CodeInsufficientStock:
			result = "insufficient_stock"
		case apiErr.Code == apierror.CodeNotFound:
			result = "not_found"
		default:
			result = "invalid"
		}
	}
	metrics.InventoryAdjustmentsTotal.WithLabelValues(operation, result).Inc()
}
