package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sweetshop/internal/event"
	"sweetshop/internal/model"
	"sweetshop/internal/repository"
	"sweetshop/pkg/apierror"
)

func TestPurchase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("decrements and reports a confirmation", func(t *testing.T) {
		items := &repository.MockItemRepository{}
		cache := &fakeCache{}
		audit, entries := auditSpy(t)
		bus := event.NewBus()
		events, unsubscribe := bus.Subscribe()
		defer unsubscribe()

		svc := NewInventoryService(items, cache, audit, bus, 5)
		items.On("Purchase", ctx, int64(1), 3).Return(model.Item{ID: 1, Name: "Fudge", Price: 2, Quantity: 7}, nil)

		got, err := svc.Purchase(ctx, testActor, 1, 3)
		require.NoError(t, err)
		require.Equal(t, 7, got.Quantity)
		require.Equal(t, "Successfully purchased 3 units of Fudge", got.Message)
		require.Equal(t, 1, cache.invalidated)
		require.Equal(t, []event.Type{event.TypeStockPurchased}, drain(events))
		require.Equal(t, "stock.purchase", (*entries)[0].Action)
		require.Equal(t, map[string]int{"quantity": 10}, (*entries)[0].Before)
	})

	t.Run("reaching the threshold announces low stock", func(t *testing.T) {
		items := &repository.MockItemRepository{}
		bus := event.NewBus()
		events, unsubscribe := bus.Subscribe()
		defer unsubscribe()

		svc := NewInventoryService(items, nil, nil, bus, 5)
		items.On("Purchase", ctx, int64(1), 5).Return(model.Item{ID: 1, Name: "Fudge", Quantity: 5}, nil)

		_, err := svc.Purchase(ctx, testActor, 1, 5)
		require.NoError(t, err)
		require.Equal(t, []event.Type{event.TypeStockPurchased, event.TypeStockLow}, drain(events))
	})

	t.Run("non-positive quantity never reaches the store", func(t *testing.T) {
		for _, quantity := range []int{0, -4} {
			items := &repository.MockItemRepository{}
			svc := NewInventoryService(items, nil, nil, nil, 5)

			_, err := svc.Purchase(ctx, testActor, 1, quantity)
			requireAPIError(t, err, apierror.CodeValidation, http.StatusBadRequest)
			items.AssertNotCalled(t, "Purchase", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("more than stock fails with the available count", func(t *testing.T) {
		items := &repository.MockItemRepository{}
		cache := &fakeCache{}
		audit, entries := auditSpy(t)
		svc := NewInventoryService(items, cache, audit, nil, 5)
		items.On("Purchase", ctx, int64(1), 5).
			Return(model.Item{}, &model.StockError{ItemID: 1, Name: "Fudge", Available: 3, Requested: 5})

		_, err := svc.Purchase(ctx, testActor, 1, 5)
		apiErr := requireAPIError(t, err, apierror.CodeInsufficientStock, http.StatusBadRequest)
		require.Equal(t, "Insufficient stock. Only 3 available", apiErr.Message)
		require.Zero(t, cache.invalidated)
		require.Equal(t, "failed", (*entries)[0].Status)
	})

	t.Run("a quantity beyond any stock level is a shortfall", func(t *testing.T) {
		items := &repository.MockItemRepository{}
		svc := NewInventoryService(items, nil, nil, nil, 5)
		items.On("Purchase", ctx, int64(1), 3000000000).
			Return(model.Item{}, &model.StockError{ItemID: 1, Name: "Fudge", Available: 12, Requested: 3000000000})

		_, err := svc.Purchase(ctx, testActor, 1, 3000000000)
		apiErr := requireAPIError(t, err, apierror.CodeInsufficientStock, http.StatusBadRequest)
		require.Equal(t, "Insufficient stock. Only 12 available", apiErr.Message)
	})

	t.Run("zero stock is reported as out of stock", func(t *testing.T) {
		items := &repository.MockItemRepository{}
		svc := NewInventoryService(items, nil, nil, nil, 5)
		items.On("Purchase", ctx, int64(1), 1).
			Return(model.Item{}, &model.StockError{ItemID: 1, Available: 0, Requested: 1})

		_, err := svc.Purchase(ctx, testActor, 1, 1)
		apiErr := requireAPIError(t, err, apierror.CodeInsufficientStock, http.StatusBadRequest)
		require.Equal(t, "Sweet is out of stock", apiErr.Message)
	})

	t.Run("unknown item is 404", func(t *testing.T) {
		items := &repository.MockItemRepository{}
		svc := NewInventoryService(items, nil, nil, nil, 5)
		items.On("Purchase", ctx, int64(9), 1).Return(model.Item{}, model.ErrItemNotFound)

		_, err := svc.Purchase(ctx, testActor, 9, 1)
		requireAPIError(t, err, apierror.CodeNotFound, http.StatusNotFound)
	})

	t.Run("store failures pass through unclassified", func(t *testing.T) {
		items := &repository.MockItemRepository{}
		svc := NewInventoryService(items, nil, nil, nil, 5)
		boom := errors.New("connection reset")
		items.On("Purchase", ctx, int64(1), 1).Return(model.Item{}, boom)

		_, err := svc.Purchase(ctx, testActor, 1, 1)
		require.ErrorIs(t, err, boom)
	})
}

func TestRestock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("increments by exactly the requested amount", func(t *testing.T) {
		items := &repository.MockItemRepository{}
		cache := &fakeCache{}
		bus := event.NewBus()
		events, unsubscribe := bus.Subscribe()
		defer unsubscribe()

		svc := NewInventoryService(items, cache, nil, bus, 5)
		items.On("Restock", ctx, int64(2), 5).Return(model.Item{ID: 2, Name: "Toffee", Quantity: 15}, nil)

		got, err := svc.Restock(ctx, testActor, 2, 5)
		require.NoError(t, err)
		require.Equal(t, 15, got.Quantity)
		require.Equal(t, "Successfully restocked 5 units of Toffee", got.Message)
		require.Equal(t, 1, cache.invalidated)
		require.Equal(t, []event.Type{event.TypeStockRestocked}, drain(events))
	})

	t.Run("validation and missing items", func(t *testing.T) {
		items := &repository.MockItemRepository{}
		svc := NewInventoryService(items, nil, nil, nil, 5)
		items.On("Restock", ctx, int64(8), 1).Return(model.Item{}, model.ErrItemNotFound)
		items.On("Restock", ctx, int64(2), 2147483647).Return(model.Item{}, model.ErrInvalidInput)

		_, err := svc.Restock(ctx, testActor, 2, 0)
		requireAPIError(t, err, apierror.CodeValidation, http.StatusBadRequest)

		_, err = svc.Restock(ctx, testActor, 8, 1)
		requireAPIError(t, err, apierror.CodeNotFound, http.StatusNotFound)

		_, err = svc.Restock(ctx, testActor, 2, 2147483647)
		requireAPIError(t, err, apierror.CodeValidation, http.StatusBadRequest)

		_, err = svc.Restock(ctx, testActor, 2, 3000000000)
		apiErr := requireAPIError(t, err, apierror.CodeValidation, http.StatusBadRequest)
		require.Equal(t, "quantity must be at most 2147483647", apiErr.Message)
		items.AssertNotCalled(t, "Restock", ctx, int64(2), 3000000000)
	})
}
