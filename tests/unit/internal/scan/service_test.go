package scan_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
	domainFixtures "gitlab.apk-group.net/siem/qa/discovery-harness/tests/fixtures/domain"
	clientMocks "gitlab.apk-group.net/siem/qa/discovery-harness/tests/mocks/client"
	storeMocks "gitlab.apk-group.net/siem/qa/discovery-harness/tests/mocks/store"
)

func fastOptions() scan.Options {
	return scan.Options{
		PollInterval:    time.Millisecond,
		MaxPollInterval: 5 * time.Millisecond,
		Timeout:         2 * time.Second,
	}
}

// expectCompletedRun wires one full successful submit-start-poll cycle.
func expectCompletedRun(mockClient *clientMocks.MockScanClient, reportID string) {
	mockClient.On("CreateScan", mock.Anything, mock.AnythingOfType("domain.ScanDefinition")).
		Return("scan-1", nil)
	mockClient.On("StartScan", mock.Anything, "scan-1").
		Return("job-1", nil)
	mockClient.On("GetScanJob", mock.Anything, "job-1").
		Return(domain.ScanJobStatus{JobID: "job-1", Status: domain.StatusCompleted, ReportID: reportID}, nil)
}

func TestScanCache_GetOrRun(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*clientMocks.MockScanClient)
		validateResult func(t *testing.T, result domain.ScanResult, err error)
	}{
		{
			name: "successful run returns completed result",
			setupMock: func(mockClient *clientMocks.MockScanClient) {
				expectCompletedRun(mockClient, "report-1")
			},
			validateResult: func(t *testing.T, result domain.ScanResult, err error) {
				require.NoError(t, err)
				assert.Equal(t, domain.StatusCompleted, result.Status)
				assert.Equal(t, "report-1", result.ReportID)
				assert.Equal(t, "job-1", result.JobID)
				assert.False(t, result.FinishedAt.Before(result.StartedAt))
			},
		},
		{
			name: "non-terminal statuses are polled through",
			setupMock: func(mockClient *clientMocks.MockScanClient) {
				mockClient.On("CreateScan", mock.Anything, mock.AnythingOfType("domain.ScanDefinition")).
					Return("scan-1", nil)
				mockClient.On("StartScan", mock.Anything, "scan-1").
					Return("job-1", nil)
				mockClient.On("GetScanJob", mock.Anything, "job-1").
					Return(domain.ScanJobStatus{JobID: "job-1", Status: domain.StatusPending}, nil).Once()
				mockClient.On("GetScanJob", mock.Anything, "job-1").
					Return(domain.ScanJobStatus{JobID: "job-1", Status: domain.StatusRunning}, nil).Once()
				mockClient.On("GetScanJob", mock.Anything, "job-1").
					Return(domain.ScanJobStatus{JobID: "job-1", Status: domain.StatusCompleted, ReportID: "report-2"}, nil)
			},
			validateResult: func(t *testing.T, result domain.ScanResult, err error) {
				require.NoError(t, err)
				assert.Equal(t, "report-2", result.ReportID)
			},
		},
		{
			name: "failed terminal status becomes execution error",
			setupMock: func(mockClient *clientMocks.MockScanClient) {
				mockClient.On("CreateScan", mock.Anything, mock.AnythingOfType("domain.ScanDefinition")).
					Return("scan-1", nil)
				mockClient.On("StartScan", mock.Anything, "scan-1").
					Return("job-1", nil)
				mockClient.On("GetScanJob", mock.Anything, "job-1").
					Return(domain.ScanJobStatus{JobID: "job-1", Status: domain.StatusFailed, Message: "host unreachable"}, nil)
			},
			validateResult: func(t *testing.T, result domain.ScanResult, err error) {
				var execErr *domain.ScanExecutionError
				require.ErrorAs(t, err, &execErr)
				assert.Equal(t, domain.StatusFailed, execErr.Status)
				assert.Contains(t, execErr.Message, "host unreachable")
			},
		},
		{
			name: "transport failure becomes execution error",
			setupMock: func(mockClient *clientMocks.MockScanClient) {
				mockClient.On("CreateScan", mock.Anything, mock.AnythingOfType("domain.ScanDefinition")).
					Return("", errors.New("connection refused"))
			},
			validateResult: func(t *testing.T, result domain.ScanResult, err error) {
				var execErr *domain.ScanExecutionError
				require.ErrorAs(t, err, &execErr)
				assert.Contains(t, execErr.Message, "connection refused")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := new(clientMocks.MockScanClient)
			tt.setupMock(mockClient)

			cache := scan.NewScanCache(mockClient, nil, fastOptions())
			result, err := cache.GetOrRun(context.Background(), domainFixtures.NewTestScanDefinition())

			tt.validateResult(t, result, err)
			mockClient.AssertExpectations(t)
		})
	}
}

func TestScanCache_ConcurrentCallersShareOneRun(t *testing.T) {
	mockClient := new(clientMocks.MockScanClient)

	started := make(chan struct{})
	mockClient.On("CreateScan", mock.Anything, mock.AnythingOfType("domain.ScanDefinition")).
		Run(func(args mock.Arguments) {
			// Hold the run open until every caller is queued on the entry.
			<-started
		}).
		Return("scan-1", nil)
	mockClient.On("StartScan", mock.Anything, "scan-1").Return("job-1", nil)
	mockClient.On("GetScanJob", mock.Anything, "job-1").
		Return(domain.ScanJobStatus{JobID: "job-1", Status: domain.StatusCompleted, ReportID: "report-1"}, nil)

	cache := scan.NewScanCache(mockClient, nil, fastOptions())
	def := domainFixtures.NewTestScanDefinition()

	const callers = 16
	var wg sync.WaitGroup
	results := make([]domain.ScanResult, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.GetOrRun(context.Background(), def)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(started)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "report-1", results[i].ReportID)
	}
	mockClient.AssertNumberOfCalls(t, "CreateScan", 1)
	mockClient.AssertNumberOfCalls(t, "StartScan", 1)
}

func TestScanCache_DistinctDefinitionsRunIndependently(t *testing.T) {
	mockClient := new(clientMocks.MockScanClient)

	defA := domainFixtures.NewTestScanDefinitionWithHosts("host-a")
	defB := domainFixtures.NewTestScanDefinitionWithHosts("host-b")

	mockClient.On("CreateScan", mock.Anything, mock.MatchedBy(func(d domain.ScanDefinition) bool {
		return d.IdentityKey() == defA.IdentityKey()
	})).Return("scan-a", nil).Once()
	mockClient.On("CreateScan", mock.Anything, mock.MatchedBy(func(d domain.ScanDefinition) bool {
		return d.IdentityKey() == defB.IdentityKey()
	})).Return("scan-b", nil).Once()
	mockClient.On("StartScan", mock.Anything, "scan-a").Return("job-a", nil)
	mockClient.On("StartScan", mock.Anything, "scan-b").Return("job-b", nil)
	mockClient.On("GetScanJob", mock.Anything, "job-a").
		Return(domain.ScanJobStatus{JobID: "job-a", Status: domain.StatusCompleted, ReportID: "report-a"}, nil)
	mockClient.On("GetScanJob", mock.Anything, "job-b").
		Return(domain.ScanJobStatus{JobID: "job-b", Status: domain.StatusCompleted, ReportID: "report-b"}, nil)

	cache := scan.NewScanCache(mockClient, nil, fastOptions())

	// Three callers for A, one for B: still exactly one submission each.
	for i := 0; i < 3; i++ {
		res, err := cache.GetOrRun(context.Background(), defA)
		require.NoError(t, err)
		assert.Equal(t, "report-a", res.ReportID)
	}
	res, err := cache.GetOrRun(context.Background(), defB)
	require.NoError(t, err)
	assert.Equal(t, "report-b", res.ReportID)

	mockClient.AssertNumberOfCalls(t, "CreateScan", 2)
}

func TestScanCache_FailureIsCachedWithoutResubmission(t *testing.T) {
	mockClient := new(clientMocks.MockScanClient)
	mockClient.On("CreateScan", mock.Anything, mock.AnythingOfType("domain.ScanDefinition")).
		Return("scan-1", nil)
	mockClient.On("StartScan", mock.Anything, "scan-1").Return("job-1", nil)
	mockClient.On("GetScanJob", mock.Anything, "job-1").
		Return(domain.ScanJobStatus{JobID: "job-1", Status: domain.StatusFailed, Message: "auth denied"}, nil)

	cache := scan.NewScanCache(mockClient, nil, fastOptions())
	def := domainFixtures.NewTestScanDefinition()

	_, err1 := cache.GetOrRun(context.Background(), def)
	_, err2 := cache.GetOrRun(context.Background(), def)

	var execErr *domain.ScanExecutionError
	require.ErrorAs(t, err1, &execErr)
	require.ErrorAs(t, err2, &execErr)
	mockClient.AssertNumberOfCalls(t, "CreateScan", 1)
}

func TestScanCache_InvalidateForcesResubmission(t *testing.T) {
	mockClient := new(clientMocks.MockScanClient)
	expectCompletedRun(mockClient, "report-1")

	cache := scan.NewScanCache(mockClient, nil, fastOptions())
	def := domainFixtures.NewTestScanDefinition()

	_, err := cache.GetOrRun(context.Background(), def)
	require.NoError(t, err)

	cache.Invalidate(def)

	_, err = cache.GetOrRun(context.Background(), def)
	require.NoError(t, err)
	mockClient.AssertNumberOfCalls(t, "CreateScan", 2)
}

func TestScanCache_ResetClearsAllEntries(t *testing.T) {
	mockClient := new(clientMocks.MockScanClient)
	expectCompletedRun(mockClient, "report-1")

	cache := scan.NewScanCache(mockClient, nil, fastOptions())
	defA := domainFixtures.NewTestScanDefinitionWithHosts("host-a")
	defB := domainFixtures.NewTestScanDefinitionWithHosts("host-b")

	_, err := cache.GetOrRun(context.Background(), defA)
	require.NoError(t, err)
	_, err = cache.GetOrRun(context.Background(), defB)
	require.NoError(t, err)
	mockClient.AssertNumberOfCalls(t, "CreateScan", 2)

	cache.Reset()

	_, err = cache.GetOrRun(context.Background(), defA)
	require.NoError(t, err)
	mockClient.AssertNumberOfCalls(t, "CreateScan", 3)
}

func TestScanCache_StalledRunTimesOutAndIsRetryable(t *testing.T) {
	mockClient := new(clientMocks.MockScanClient)

	mockClient.On("CreateScan", mock.Anything, mock.AnythingOfType("domain.ScanDefinition")).
		Return("scan-1", nil)
	mockClient.On("StartScan", mock.Anything, "scan-1").Return("job-1", nil)
	// The job never leaves running, so only the run deadline ends it.
	mockClient.On("GetScanJob", mock.Anything, "job-1").
		Return(domain.ScanJobStatus{JobID: "job-1", Status: domain.StatusRunning}, nil)

	opts := fastOptions()
	opts.Timeout = 50 * time.Millisecond
	cache := scan.NewScanCache(mockClient, nil, opts)
	def := domainFixtures.NewTestScanDefinition()

	_, err := cache.GetOrRun(context.Background(), def)
	var timeoutErr *domain.ScanTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, def.IdentityKey(), timeoutErr.IdentityKey)

	// The pending entry was dropped, so the next call submits again instead
	// of deadlocking on the stale marker.
	_, err = cache.GetOrRun(context.Background(), def)
	require.ErrorAs(t, err, &timeoutErr)
	mockClient.AssertNumberOfCalls(t, "CreateScan", 2)
}

func TestScanCache_CallerContextCancellationLeavesRunAlive(t *testing.T) {
	mockClient := new(clientMocks.MockScanClient)

	release := make(chan struct{})
	mockClient.On("CreateScan", mock.Anything, mock.AnythingOfType("domain.ScanDefinition")).
		Run(func(args mock.Arguments) { <-release }).
		Return("scan-1", nil)
	mockClient.On("StartScan", mock.Anything, "scan-1").Return("job-1", nil)
	mockClient.On("GetScanJob", mock.Anything, "job-1").
		Return(domain.ScanJobStatus{JobID: "job-1", Status: domain.StatusCompleted, ReportID: "report-1"}, nil)

	cache := scan.NewScanCache(mockClient, nil, fastOptions())
	def := domainFixtures.NewTestScanDefinition()

	impatient, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := cache.GetOrRun(impatient, def)
	var timeoutErr *domain.ScanTimeoutError
	require.ErrorAs(t, err, &timeoutErr)

	// The run was not killed on the impatient caller's behalf: a patient
	// caller still gets the shared result from the same submission.
	close(release)
	res, err := cache.GetOrRun(context.Background(), def)
	require.NoError(t, err)
	assert.Equal(t, "report-1", res.ReportID)
	mockClient.AssertNumberOfCalls(t, "CreateScan", 1)
}

func TestScanCache_SharedStore(t *testing.T) {
	t.Run("completed result from store skips submission", func(t *testing.T) {
		def := domainFixtures.NewTestScanDefinition()
		stored := domainFixtures.NewTestScanResult(def, domain.StatusCompleted)

		mockClient := new(clientMocks.MockScanClient)
		mockStore := new(storeMocks.MockResultStore)
		mockStore.On("Find", mock.Anything, def.IdentityKey()).Return(&stored, nil)

		cache := scan.NewScanCache(mockClient, mockStore, fastOptions())
		res, err := cache.GetOrRun(context.Background(), def)

		require.NoError(t, err)
		assert.Equal(t, stored.ReportID, res.ReportID)
		mockClient.AssertNotCalled(t, "CreateScan", mock.Anything, mock.Anything)
	})

	t.Run("completed run is saved to store", func(t *testing.T) {
		def := domainFixtures.NewTestScanDefinition()

		mockClient := new(clientMocks.MockScanClient)
		expectCompletedRun(mockClient, "report-1")
		mockStore := new(storeMocks.MockResultStore)
		mockStore.On("Find", mock.Anything, def.IdentityKey()).Return(nil, nil)
		mockStore.On("Save", mock.Anything, mock.MatchedBy(func(r domain.ScanResult) bool {
			return r.IdentityKey == def.IdentityKey() && r.Status == domain.StatusCompleted
		})).Return(nil)

		cache := scan.NewScanCache(mockClient, mockStore, fastOptions())
		_, err := cache.GetOrRun(context.Background(), def)

		require.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("store errors are non-fatal", func(t *testing.T) {
		def := domainFixtures.NewTestScanDefinition()

		mockClient := new(clientMocks.MockScanClient)
		expectCompletedRun(mockClient, "report-1")
		mockStore := new(storeMocks.MockResultStore)
		mockStore.On("Find", mock.Anything, def.IdentityKey()).Return(nil, errors.New("db down"))
		mockStore.On("Save", mock.Anything, mock.AnythingOfType("domain.ScanResult")).Return(errors.New("db down"))

		cache := scan.NewScanCache(mockClient, mockStore, fastOptions())
		res, err := cache.GetOrRun(context.Background(), def)

		require.NoError(t, err)
		assert.Equal(t, "report-1", res.ReportID)
	})
}
