package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
)

// MockResultStore is a mock implementation of the scanPort.ResultStore interface
type MockResultStore struct {
	mock.Mock
}

func (m *MockResultStore) Find(ctx context.Context, identityKey string) (*domain.ScanResult, error) {
	args := m.Called(ctx, identityKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScanResult), args.Error(1)
}

func (m *MockResultStore) Save(ctx context.Context, result domain.ScanResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}
