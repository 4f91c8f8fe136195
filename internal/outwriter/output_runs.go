package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/hoc/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// DateTimeFormat is how run times are shown to humans.
const DateTimeFormat = "2006-01-02 15:04:05"

// Status labels for runs.
const (
	completedLabel  = "done"
	incompleteLabel = "incomplete"
)

// writeRunsTable generates and writes the human-readable table.
func writeRunsTable(w io.Writer, runs []schema.RunRecord, maxPathWidth int) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"ID", "Started", "Repo", "Head", "Renames", "Commits", "Hits", "Duration", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	var totalHits int64
	for _, r := range runs {
		row := []string{
			strconv.FormatInt(r.RunID, 10),
			r.StartTime.Local().Format(DateTimeFormat),
			truncatePath(r.RepoPath, maxPathWidth),
			shortHash(r.HeadCommit),
			yesNo(r.FindRenamesAndCopies),
			formatOptional(r.Commits),
			formatOptional(r.TotalHits),
			formatDuration(r.RunDurationMs),
			statusLabel(r),
		}
		if r.TotalHits != nil {
			totalHits += *r.TotalHits
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d runs (hits across completed runs: %d)\n", len(runs), totalHits)
	return err
}

// jsonRun is the JSON form of a run with its status spelled out.
type jsonRun struct {
	RunID                int64      `json:"run_id"`
	RunUUID              string     `json:"run_uuid"`
	RepoPath             string     `json:"repo_path"`
	HeadCommit           *string    `json:"head_commit"`
	FindRenamesAndCopies bool       `json:"find_renames_and_copies"`
	StartTime            time.Time  `json:"start_time"`
	EndTime              *time.Time `json:"end_time"`
	RunDurationMs        *int64     `json:"run_duration_ms"`
	Commits              *int64     `json:"commits"`
	Merges               *int64     `json:"merges"`
	FilesChanged         *int64     `json:"files_changed"`
	Insertions           *int64     `json:"insertions"`
	Deletions            *int64     `json:"deletions"`
	TotalHits            *int64     `json:"total_hits"`
	Completed            bool       `json:"completed"`
}

// writeRunsJSON writes the runs as an indented JSON array.
func writeRunsJSON(w io.Writer, runs []schema.RunRecord) error {
	output := make([]jsonRun, len(runs))
	for i, r := range runs {
		output[i] = jsonRun{
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
			Completed:            r.Completed(),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeRunsCSV writes one CSV record per run.
func writeRunsCSV(w io.Writer, runs []schema.RunRecord) error {
	csvWriter := csv.NewWriter(w)

	header := []string{
		"run_id", "run_uuid", "repo_path", "head_commit", "find_renames_and_copies",
		"start_time", "end_time", "run_duration_ms", "commits", "merges",
		"files_changed", "insertions", "deletions", "total_hits",
	}
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range runs {
		endTime := ""
		if r.EndTime != nil {
			endTime = r.EndTime.UTC().Format(time.RFC3339)
		}
		head := ""
		if r.HeadCommit != nil {
			head = *r.HeadCommit
		}
		rec := []string{
			strconv.FormatInt(r.RunID, 10),
			r.RunUUID,
			r.RepoPath,
			head,
			strconv.FormatBool(r.FindRenamesAndCopies),
			r.StartTime.UTC().Format(time.RFC3339),
			endTime,
			formatOptionalCSV(r.RunDurationMs),
			formatOptionalCSV(r.Commits),
			formatOptionalCSV(r.Merges),
			formatOptionalCSV(r.FilesChanged),
			formatOptionalCSV(r.Insertions),
			formatOptionalCSV(r.Deletions),
			formatOptionalCSV(r.TotalHits),
		}
		if err := csvWriter.Write(rec); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func statusLabel(r schema.RunRecord) string {
	if r.Completed() {
		return color.GreenString(completedLabel)
	}
	return color.YellowString(incompleteLabel)
}
