package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"sweetshop/internal/event"
	"sweetshop/internal/model"
	"sweetshop/internal/repository"
)

var testActor = model.AuditActor{UserID: "1", Email: "admin@example.com", Role: "ADMIN", IP: "10.0.0.1"}

func ptr[T any](v T) *T { return &v }

func validInput(name string, price float64, quantity int) model.ItemInput {
	return model.ItemInput{Name: name, Category: "candy", Price: ptr(price), Quantity: ptr(quantity)}
}

type fakeCache struct {
	mu          sync.Mutex
	items       []model.Item
	loaded      bool
	loadErr     error
	gen         int64
	stores      int
	invalidated int
}

func (c *fakeCache) Load(context.Context) ([]model.Item, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadErr != nil {
		return nil, false, c.loadErr
	}
	return c.items, c.loaded, nil
}

func (c *fakeCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *fakeCache) Store(_ context.Context, items []model.Item, gen int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false, nil
	}
	c.items = items
	c.loaded = true
	c.stores++
	return true, nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.loaded = false
	c.gen++
	c.invalidated++
	return errors.New("redis down")
}

// auditSpy records audit entries through the mock store.
func auditSpy(t *testing.T) (*AuditService, *[]model.AuditEntry) {
	t.Helper()

	var (
		mu      sync.Mutex
		entries []model.AuditEntry
	)
	store := &repository.MockAuditRepository{}
	store.On("Log", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		defer mu.Unlock()
		entries = append(entries, args.Get(1).(model.AuditEntry))
	}).Return(nil)

	return NewAuditService(store), &entries
}

func drain(ch <-chan event.Event) []event.Type {
	var types []event.Type
	for {
		select {
		case e := <-ch:
			types = append(types, e.Type)
		default:
			return types
		}
	}
}
