package iocache

import (
	"time"

	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(startTime time.Time, repoPath string, findRenamesAndCopies bool) (int64, error) {
	args := m.Called(startTime, repoPath, findRenamesAndCopies)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, result *schema.HocResult) error {
	args := m.Called(runID, endTime, result)
	return args.Error(0)
}

// RecordCommitStats implements the RunStore interface.
func (m *MockRunStore) RecordCommitStats(runID int64, commits []schema.CommitStats) error {
	args := m.Called(runID, commits)
	return args.Error(0)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetRecentRuns implements the RunStore interface.
func (m *MockRunStore) GetRecentRuns(limit int) ([]schema.RunRecord, error) {
	args := m.Called(limit)
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllCommitStats implements the RunStore interface.
func (m *MockRunStore) GetAllCommitStats() ([]schema.CommitStatsRecord, error) {
	args := m.Called()
	stats, _ := args.Get(0).([]schema.CommitStatsRecord)
	return stats, args.Error(1)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStatus), args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
