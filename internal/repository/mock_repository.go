package repository

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sweetshop/internal/model"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, email string, passwordHash string, role model.Role) (model.Account, error) {
	args := m.Called(ctx, email, passwordHash, role)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id int64) (model.Account, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Account), args.Error(1)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, in model.ItemInput) (model.Item, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.Item), args.Error(1)
}

func (m *MockItemRepository) Get(ctx context.Context, id int64) (model.Item, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Item), args.Error(1)
}

func (m *MockItemRepository) List(ctx context.Context) ([]model.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemRepository) Search(ctx context.Context, filters model.SearchFilters) ([]model.Item, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, id int64, in model.ItemInput) (model.Item, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(model.Item), args.Error(1)
}

func (m *MockItemRepository) Delete(ctx context.Context, id int64) (model.Item, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Item), args.Error(1)
}

func (m *MockItemRepository) Purchase(ctx context.Context, id int64, quantity int) (model.Item, error) {
	args := m.Called(ctx, id, quantity)
	return args.Get(0).(model.Item), args.Error(1)
}

func (m *MockItemRepository) Restock(ctx context.Context, id int64, quantity int) (model.Item, error) {
	args := m.Called(ctx, id, quantity)
	return args.Get(0).(model.Item), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, int, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.AuditEntry), args.Int(1), args.Error(2)
}
