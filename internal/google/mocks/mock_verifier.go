package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hisapi/internal/google"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyIDToken(ctx context.Context, token string) (*google.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*google.Identity), args.Error(1)
}

func (m *MockVerifier) VerifyAccessToken(ctx context.Context, token string) (*google.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*google.Identity), args.Error(1)
}

var _ google.Verifier = (*MockVerifier)(nil)
