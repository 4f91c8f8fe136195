package core

import (
	"time"

	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/schema"
)

// runRecorder tracks one run in the run history store.
// A recorder without a store does nothing.
type runRecorder struct {
	store contract.RunStore
	runID int64
}

// beginRunRecording opens a run if a store is configured.
func beginRunRecording(mgr contract.StoreManager, startTime time.Time, repoPath string, opts schema.HistoryOptions) *runRecorder {
	if mgr == nil {
		return &runRecorder{}
	}
	store := mgr.GetRunStore()
	if store == nil {
		return &runRecorder{}
	}

	runID, err := store.BeginRun(startTime, repoPath, opts.FindRenamesAndCopies)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return &runRecorder{}
	}
	return &runRecorder{store: store, runID: runID}
}

// active reports whether results will be recorded.
func (r *runRecorder) active() bool {
	return r.store != nil && r.runID > 0
}

// finish stores the per-commit stats and closes the run.
func (r *runRecorder) finish(endTime time.Time, result *schema.HocResult, commits []schema.CommitStats) {
	if !r.active() {
		return
	}
	if err := r.store.RecordCommitStats(r.runID, commits); err != nil {
		contract.LogWarn("Failed to record commit stats", err)
	}
	if err := r.store.EndRun(r.runID, endTime, result); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}
