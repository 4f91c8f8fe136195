package iocache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	headHash   = "2222222222222222222222222222222222222222"
	parentHash = "1111111111111111111111111111111111111111"
)

// newSQLiteStore opens an in-memory store that is closed with the test.
func newSQLiteStore(t *testing.T) contract.RunStore {
	t.Helper()
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleResult() *schema.HocResult {
	return &schema.HocResult{
		RepoPath: "/src/project",
		Head:     headHash,
		Commits:  2,
		Roots:    1,
		Stats:    schema.DiffStats{FilesChanged: 2, Insertions: 12, Deletions: 1},
		Total:    15,
	}
}

func sampleCommits() []schema.CommitStats {
	return []schema.CommitStats{
		{Hash: headHash, Parents: 1, Stats: schema.DiffStats{FilesChanged: 1, Insertions: 2, Deletions: 1}},
		{Hash: parentHash, Parents: 0, Stats: schema.DiffStats{FilesChanged: 1, Insertions: 10}},
	}
}

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	runID, err := store.BeginRun(time.Now(), ".", false)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	assert.NoError(t, store.EndRun(1, time.Now(), sampleResult()))
	assert.NoError(t, store.RecordCommitStats(1, sampleCommits()))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Close())
}

func TestRunStore_UnsupportedBackend(t *testing.T) {
	_, err := NewRunStore(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}

func TestRunStore_SQLiteRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)

	startTime := time.Now().Add(-2 * time.Second)
	runID, err := store.BeginRun(startTime, "/src/project", true)
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	require.NoError(t, store.RecordCommitStats(runID, sampleCommits()))
	endTime := startTime.Add(1500 * time.Millisecond)
	require.NoError(t, store.EndRun(runID, endTime, sampleResult()))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Len(t, run.RunUUID, 36)
	assert.Equal(t, "/src/project", run.RepoPath)
	assert.True(t, run.FindRenamesAndCopies)
	assert.True(t, run.Completed())
	require.NotNil(t, run.HeadCommit)
	assert.Equal(t, headHash, *run.HeadCommit)
	assert.WithinDuration(t, startTime, run.StartTime, time.Microsecond)
	require.NotNil(t, run.EndTime)
	assert.WithinDuration(t, endTime, *run.EndTime, time.Microsecond)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int64(1500), *run.RunDurationMs)
	assert.Equal(t, int64(2), *run.Commits)
	assert.Equal(t, int64(0), *run.Merges)
	assert.Equal(t, int64(2), *run.FilesChanged)
	assert.Equal(t, int64(12), *run.Insertions)
	assert.Equal(t, int64(1), *run.Deletions)
	assert.Equal(t, int64(15), *run.TotalHits)

	stats, err := store.GetAllCommitStats()
	require.NoError(t, err)
	require.Len(t, stats, 2)
	// Ordered by run then hash
	assert.Equal(t, parentHash, stats[0].CommitHash)
	assert.Equal(t, int32(0), stats[0].Parents)
	assert.Equal(t, int64(10), stats[0].Insertions)
	assert.Equal(t, headHash, stats[1].CommitHash)
	assert.Equal(t, int64(1), stats[1].Deletions)
}

func TestRunStore_UnfinishedRun(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.BeginRun(time.Now(), ".", false)
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].Completed())
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].HeadCommit)
	assert.Nil(t, runs[0].TotalHits)
}

func TestRunStore_EmptyRepositoryHasNullHead(t *testing.T) {
	store := newSQLiteStore(t)

	runID, err := store.BeginRun(time.Now(), ".", false)
	require.NoError(t, err)
	require.NoError(t, store.EndRun(runID, time.Now(), &schema.HocResult{RepoPath: "."}))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].HeadCommit)
	require.NotNil(t, runs[0].TotalHits)
	assert.Equal(t, int64(0), *runs[0].TotalHits)
}

func TestRunStore_EndRunErrors(t *testing.T) {
	store := newSQLiteStore(t)

	assert.Error(t, store.EndRun(42, time.Now(), sampleResult()), "unknown run")

	runID, err := store.BeginRun(time.Now(), ".", false)
	require.NoError(t, err)
	assert.Error(t, store.EndRun(runID, time.Now(), nil), "missing result")

	tooBig := sampleResult()
	tooBig.Total = 1 << 63
	assert.Error(t, store.EndRun(runID, time.Now(), tooBig))
}

func TestRunStore_RecordCommitStatsDuplicateFails(t *testing.T) {
	store := newSQLiteStore(t)
	runID, err := store.BeginRun(time.Now(), ".", false)
	require.NoError(t, err)

	dup := append(sampleCommits(), sampleCommits()[0])
	assert.Error(t, store.RecordCommitStats(runID, dup))

	// Nothing from the failed batch is kept
	stats, err := store.GetAllCommitStats()
	require.NoError(t, err)
	assert.Empty(t, stats)

	assert.NoError(t, store.RecordCommitStats(runID, nil))
}

func TestRunStore_GetRecentRuns(t *testing.T) {
	store := newSQLiteStore(t)

	base := time.Now().Add(-time.Hour)
	for i := range 5 {
		_, err := store.BeginRun(base.Add(time.Duration(i)*time.Minute), ".", false)
		require.NoError(t, err)
	}

	runs, err := store.GetRecentRuns(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, int64(5), runs[0].RunID)
	assert.Equal(t, int64(3), runs[2].RunID)

	_, err = store.GetRecentRuns(0)
	assert.Error(t, err)
}

func TestRunStore_GetStatus(t *testing.T) {
	store := newSQLiteStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[runsTable])

	first := time.Now().Add(-time.Hour)
	_, err = store.BeginRun(first, ".", false)
	require.NoError(t, err)
	last := time.Now()
	runID, err := store.BeginRun(last, ".", false)
	require.NoError(t, err)
	require.NoError(t, store.RecordCommitStats(runID, sampleCommits()))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.WithinDuration(t, last, status.LastRunTime, time.Microsecond)
	assert.WithinDuration(t, first, status.OldestRunTime, time.Microsecond)
	assert.Equal(t, int64(2), status.TableSizes[runsTable])
	assert.Equal(t, int64(2), status.TableSizes[commitStatsTable])
}

func TestRunStore_SQLiteFilePersists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	runID, err := store.BeginRun(time.Now(), ".", false)
	require.NoError(t, err)
	require.NoError(t, store.EndRun(runID, time.Now(), sampleResult()))
	require.NoError(t, store.Close())

	reopened, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	runs, err := reopened.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Completed())
}
