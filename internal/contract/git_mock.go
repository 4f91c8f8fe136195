package contract

import (
	"bufio"
	"bytes"
	"context"

	"github.com/huangsam/hoc/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock of GitClient.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	var mockArgs []any
	mockArgs = append(mockArgs, ctx, repoPath)
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// OpenRepo implements the GitClient interface.
func (m *MockGitClient) OpenRepo(ctx context.Context, repoPath string) (RepoInfo, error) {
	ret := m.Called(ctx, repoPath)
	info, _ := ret.Get(0).(RepoInfo)
	return info, ret.Error(1)
}

// StreamHistory implements the GitClient interface.
// The programmed []byte output is fed to fn line by line before the programmed error is returned.
func (m *MockGitClient) StreamHistory(ctx context.Context, repoPath string, opts schema.HistoryOptions, fn func(line string) error) error {
	ret := m.Called(ctx, repoPath, opts)
	return feedLines(ret, fn)
}

// StreamCommits implements the GitClient interface.
func (m *MockGitClient) StreamCommits(ctx context.Context, repoPath string, fn func(line string) error) error {
	ret := m.Called(ctx, repoPath)
	return feedLines(ret, fn)
}

// feedLines hands the programmed []byte output to fn and returns the programmed error.
func feedLines(ret mock.Arguments, fn func(line string) error) error {
	output, _ := ret.Get(0).([]byte)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	return ret.Error(1)
}
