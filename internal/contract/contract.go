// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/hoc/schema"
)

// RepoInfo describes an opened repository.
type RepoInfo struct {
	Root string // Absolute path of the working directory that holds the store
	Head string // Commit hash HEAD resolves to, empty when the repository has no commits
}

// Unborn reports whether HEAD points at a branch without any commits.
func (r RepoInfo) Unborn() bool {
	return r.Head == ""
}

// GitClient defines the operations needed to walk commit history.
// This allows the accumulator to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns its standard output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// OpenRepo opens the repository rooted at repoPath and resolves HEAD.
	// It returns ErrRepositoryNotFound when no repository exists there.
	OpenRepo(ctx context.Context, repoPath string) (RepoInfo, error)

	// StreamHistory walks every commit reachable from HEAD and hands each line of
	// the numstat log to fn. A non-nil error from fn stops the walk.
	StreamHistory(ctx context.Context, repoPath string, opts schema.HistoryOptions, fn func(line string) error) error

	// StreamCommits lists every commit reachable from HEAD, including merges and
	// empty commits, as "<hash> <parent>..." lines handed to fn.
	StreamCommits(ctx context.Context, repoPath string, fn func(line string) error) error
}

// StoreManager defines the interface for reaching the run history store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking hoc runs and their per-commit stats.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, repoPath string, findRenamesAndCopies bool) (int64, error)

	// EndRun marks the run as completed with the computed result
	EndRun(runID int64, endTime time.Time, result *schema.HocResult) error

	// RecordCommitStats stores the stats of every commit visited by a run
	RecordCommitStats(runID int64, commits []schema.CommitStats) error

	// GetAllRuns returns every recorded run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetRecentRuns returns up to limit runs, newest first
	GetRecentRuns(limit int) ([]schema.RunRecord, error)

	// GetAllCommitStats returns every recorded commit row ordered by run
	GetAllCommitStats() ([]schema.CommitStatsRecord, error)

	// GetStatus returns status information about the store
	GetStatus() (schema.RunStatus, error)

	// Close closes the underlying connection
	Close() error
}
