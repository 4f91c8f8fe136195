package iocache

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/huangsam/hoc/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRunsExport(t *testing.T) {
	store := newSQLiteStore(t)
	runID, err := store.BeginRun(sampleStart, "/src/project", false)
	require.NoError(t, err)
	require.NoError(t, store.RecordCommitStats(runID, sampleCommits()))
	require.NoError(t, store.EndRun(runID, sampleStart.Add(1000), sampleResult()))

	prefix := filepath.Join(t.TempDir(), "export")
	var out bytes.Buffer
	require.NoError(t, ExecuteRunsExport(store, prefix, &out))

	assert.FileExists(t, prefix+RunsExportSuffix)
	assert.FileExists(t, prefix+CommitStatsExportSuffix)
	assert.Contains(t, out.String(), "Exported 1 runs")
	assert.Contains(t, out.String(), "Exported 2 commit records")
}

func TestExecuteRunsExport_Errors(t *testing.T) {
	var out bytes.Buffer

	assert.ErrorContains(t, ExecuteRunsExport(newSQLiteStore(t), "", &out), "--output-file")
	assert.ErrorContains(t, ExecuteRunsExport(nil, "x", &out), "not enabled")
	assert.ErrorContains(t, ExecuteRunsExport(newSQLiteStore(t), filepath.Join(t.TempDir(), "x"), &out), "no run data")

	store := new(MockRunStore)
	store.On("GetStatus").Return(schema.RunStatus{}, errors.New("connection reset"))
	assert.ErrorContains(t, ExecuteRunsExport(store, "x", &out), "connection reset")
}

func TestPrintRunStatus(t *testing.T) {
	var out bytes.Buffer
	PrintRunStatus(&out, schema.RunStatus{Backend: "none"})
	assert.Equal(t, "Run History Backend: none\nConnected: false\n", out.String())

	out.Reset()
	PrintRunStatus(&out, schema.RunStatus{
		Backend:       "sqlite",
		Connected:     true,
		TotalRuns:     3,
		LastRunID:     3,
		LastRunTime:   sampleStart,
		OldestRunTime: sampleStart,
		TableSizes:    map[string]int64{commitStatsTable: 10, runsTable: 3},
	})
	text := out.String()
	assert.Contains(t, text, "Total Runs: 3")
	assert.Contains(t, text, "Last Run ID: 3")
	assert.Less(t, bytes.Index(out.Bytes(), []byte(commitStatsTable)), bytes.Index(out.Bytes(), []byte(runsTable+":")))
}
