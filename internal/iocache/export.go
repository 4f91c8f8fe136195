package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/internal/parquet"
)

// Suffixes appended to the export prefix.
const (
	RunsExportSuffix        = ".runs.parquet"
	CommitStatsExportSuffix = ".commit_stats.parquet"
)

// ExecuteRunsExport exports the run history in store to two Parquet files
// named after the outputFile prefix, reporting progress to w.
func ExecuteRunsExport(store contract.RunStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run history is not enabled. Set analysis-backend to sqlite, mysql or postgresql")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total commit records: %d\n", status.TableSizes[commitStatsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	commitStats, err := store.GetAllCommitStats()
	if err != nil {
		return fmt.Errorf("failed to retrieve commit stats: %w", err)
	}

	runsFile := outputFile + RunsExportSuffix
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	commitStatsFile := outputFile + CommitStatsExportSuffix
	parquetCommitStats := parquet.ConvertCommitStatsRecords(commitStats)
	if err := parquet.WriteCommitStatsParquet(parquetCommitStats, commitStatsFile); err != nil {
		return fmt.Errorf("failed to write commit stats: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d commit records to: %s\n", len(parquetCommitStats), commitStatsFile)

	return nil
}
