package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hisapi/internal/repository"
)

// MockCRUD is a testify mock of repository.CRUD[T]. Method names are passed explicitly so the
// expectations read the same for every instantiation.
type MockCRUD[T any] struct {
	mock.Mock
}

func (m *MockCRUD[T]) Create(ctx context.Context, item *T) (*T, error) {
	args := m.MethodCalled("Create", ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCRUD[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	args := m.MethodCalled("FindByID", ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCRUD[T]) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[T], error) {
	args := m.MethodCalled("List", ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[T]), args.Error(1)
}

func (m *MockCRUD[T]) Update(ctx context.Context, item *T) (*T, error) {
	args := m.MethodCalled("Update", ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCRUD[T]) Delete(ctx context.Context, id int64) error {
	args := m.MethodCalled("Delete", ctx, id)
	return args.Error(0)
}
