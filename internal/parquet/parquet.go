// Package parquet provides data structures and functions for exporting hoc
// run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/hoc/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single hoc run with its outcome.
// This struct maps to the hoc_runs database table.
type Run struct {
	// RunID is the backend-local identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID identifies the run across backends and exports
	RunUUID string `parquet:"run_uuid,snappy"`

	// RepoPath is the repository path the run was started with
	RepoPath string `parquet:"repo_path,snappy"`

	// HeadCommit is the commit HEAD resolved to (nullable for empty repositories and unfinished runs)
	HeadCommit *string `parquet:"head_commit,optional,snappy"`

	// FindRenamesAndCopies tells whether rename and copy detection was on
	FindRenamesAndCopies bool `parquet:"find_renames_and_copies"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`
	Commits       *int64 `parquet:"commits,optional,snappy"`
	Merges        *int64 `parquet:"merges,optional,snappy"`
	FilesChanged  *int64 `parquet:"files_changed,optional,snappy"`
	Insertions    *int64 `parquet:"insertions,optional,snappy"`
	Deletions     *int64 `parquet:"deletions,optional,snappy"`

	// TotalHits is the hits-of-code total (nullable for unfinished runs)
	TotalHits *int64 `parquet:"total_hits,optional,snappy"`
}

// CommitStat represents the diff stats of one commit visited by a run.
// This struct maps to the hoc_commit_stats database table.
type CommitStat struct {
	RunID        int64  `parquet:"run_id,snappy"`
	CommitHash   string `parquet:"commit_hash,snappy,dict"`
	Parents      int32  `parquet:"parents,snappy"`
	FilesChanged int64  `parquet:"files_changed,snappy"`
	Insertions   int64  `parquet:"insertions,snappy"`
	Deletions    int64  `parquet:"deletions,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteCommitStatsParquet writes a slice of CommitStat structs to a Parquet file.
func WriteCommitStatsParquet(data []CommitStat, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows to outputPath using struct schema inference.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	// Close flushes the footer, so its error matters
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertRunRecords converts run records from the store into Parquet rows.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, r := range records {
		result[i] = Run{
			RunID:                r.RunID,
			RunUUID:              r.RunUUID,
			RepoPath:             r.RepoPath,
			HeadCommit:           r.HeadCommit,
			FindRenamesAndCopies: r.FindRenamesAndCopies,
			StartTime:            r.StartTime,
			EndTime:              r.EndTime,
			RunDurationMs:        r.RunDurationMs,
			Commits:              r.Commits,
			Merges:               r.Merges,
			FilesChanged:         r.FilesChanged,
			Insertions:           r.Insertions,
			Deletions:            r.Deletions,
			TotalHits:            r.TotalHits,
		}
	}
	return result
}

// ConvertCommitStatsRecords converts commit stats records from the store into Parquet rows.
func ConvertCommitStatsRecords(records []schema.CommitStatsRecord) []CommitStat {
	result := make([]CommitStat, len(records))
	for i, r := range records {
		result[i] = CommitStat(r)
	}
	return result
}
