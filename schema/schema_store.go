package schema

import "time"

// RunRecord represents a row from the hoc_runs table.
type RunRecord struct {
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
}

// Completed reports whether the run finished successfully.
func (r RunRecord) Completed() bool {
	return r.EndTime != nil && r.TotalHits != nil
}

// CommitStatsRecord represents a row from the hoc_commit_stats table.
type CommitStatsRecord struct {
	RunID        int64  `json:"run_id"`
	CommitHash   string `json:"commit_hash"`
	Parents      int32  `json:"parents"`
	FilesChanged int64  `json:"files_changed"`
	Insertions   int64  `json:"insertions"`
	Deletions    int64  `json:"deletions"`
}
