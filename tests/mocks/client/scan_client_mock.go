package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
)

// MockScanClient is a mock implementation of the scanPort.Client interface
type MockScanClient struct {
	mock.Mock
}

func (m *MockScanClient) CreateScan(ctx context.Context, def domain.ScanDefinition) (string, error) {
	args := m.Called(ctx, def)
	return args.String(0), args.Error(1)
}

func (m *MockScanClient) StartScan(ctx context.Context, scanID string) (string, error) {
	args := m.Called(ctx, scanID)
	return args.String(0), args.Error(1)
}

func (m *MockScanClient) GetScanJob(ctx context.Context, jobID string) (domain.ScanJobStatus, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).(domain.ScanJobStatus), args.Error(1)
}
