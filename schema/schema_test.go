package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffStats(t *testing.T) {
	a := DiffStats{FilesChanged: 2, Insertions: 10, Deletions: 3}
	b := DiffStats{FilesChanged: 1, Insertions: 0, Deletions: 4}

	assert.Equal(t, uint64(15), a.Hits())
	assert.Equal(t, uint64(0), DiffStats{}.Hits())
	assert.Equal(t, DiffStats{FilesChanged: 3, Insertions: 10, Deletions: 7}, a.Add(b))
	assert.Equal(t, a.Hits()+b.Hits(), a.Add(b).Hits())
}

func TestCommitStatsKinds(t *testing.T) {
	assert.True(t, CommitStats{Parents: 0}.IsRoot())
	assert.False(t, CommitStats{Parents: 0}.IsMerge())
	assert.False(t, CommitStats{Parents: 1}.IsRoot())
	assert.False(t, CommitStats{Parents: 1}.IsMerge())
	assert.True(t, CommitStats{Parents: 2}.IsMerge())
	assert.True(t, CommitStats{Parents: 3}.IsMerge())
}

func TestRunRecordCompleted(t *testing.T) {
	hits := int64(5)
	r := RunRecord{}
	assert.False(t, r.Completed())
	r.TotalHits = &hits
	assert.False(t, r.Completed(), "a run without end time is not complete")
	r.EndTime = &r.StartTime
	assert.True(t, r.Completed())
}

func TestValidSets(t *testing.T) {
	for _, b := range []DatabaseBackend{SQLiteBackend, MySQLBackend, PostgreSQLBackend, NoneBackend} {
		assert.Contains(t, ValidDatabaseBackends, b)
	}
	for _, m := range []OutputMode{TableOut, JSONOut, CSVOut} {
		assert.Contains(t, ValidOutputModes, m)
	}
	assert.NotContains(t, ValidDatabaseBackends, DatabaseBackend("sqlite3"))
}
