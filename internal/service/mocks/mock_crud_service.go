package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hisapi/internal/service"
)

// MockCRUDService is a testify mock of service.CRUDService[T].
type MockCRUDService[T any] struct {
	mock.Mock
}

func (m *MockCRUDService[T]) Create(ctx context.Context, item *T) (*T, error) {
	args := m.MethodCalled("Create", ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCRUDService[T]) Get(ctx context.Context, id int64) (*T, error) {
	args := m.MethodCalled("Get", ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCRUDService[T]) List(ctx context.Context, q service.ListQuery) (*service.ListResult[T], error) {
	args := m.MethodCalled("List", ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[T]), args.Error(1)
}

func (m *MockCRUDService[T]) Update(ctx context.Context, id int64, item *T) (*T, error) {
	args := m.MethodCalled("Update", ctx, id, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCRUDService[T]) Delete(ctx context.Context, id int64) error {
	return m.MethodCalled("Delete", ctx, id).Error(0)
}

// one returns a typed pointer result or nil.
func one[T any](args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}
