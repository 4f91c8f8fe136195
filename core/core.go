// Package core has the hits-of-code history walk and run recording.
package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/hoc/core/agg"
	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/schema"
)

// HitsOfCode returns the hits-of-code of every commit reachable from HEAD in
// the repository rooted at repoPath. A repository without commits yields 0.
func HitsOfCode(ctx context.Context, client contract.GitClient, repoPath string, findRenamesAndCopies bool) (uint64, error) {
	opts := schema.HistoryOptions{FindRenamesAndCopies: findRenamesAndCopies}
	result, _, err := analyzeHistory(ctx, client, repoPath, opts, false)
	if err != nil {
		return 0, err
	}
	return result.Total, nil
}

// AnalyzeHistory walks the history like HitsOfCode and also returns the
// summary counters and the stats of every visited commit, newest first.
func AnalyzeHistory(ctx context.Context, client contract.GitClient, repoPath string, opts schema.HistoryOptions) (*schema.HocResult, []schema.CommitStats, error) {
	return analyzeHistory(ctx, client, repoPath, opts, true)
}

func analyzeHistory(ctx context.Context, client contract.GitClient, repoPath string, opts schema.HistoryOptions, keepCommits bool) (*schema.HocResult, []schema.CommitStats, error) {
	// --- 1. Open the repository ---
	info, err := client.OpenRepo(ctx, repoPath)
	if err != nil {
		return nil, nil, err
	}

	acc := agg.NewAccumulator(keepCommits)
	if info.Unborn() {
		// Nothing is reachable from HEAD
		return acc.Result(info.Root, "", opts), nil, nil
	}

	// --- 2. Stream and fold the history ---
	if err := client.StreamHistory(ctx, info.Root, opts, acc.Feed); err != nil {
		return nil, nil, fmt.Errorf("failed to walk history: %w", err)
	}
	if err := acc.Finish(); err != nil {
		return nil, nil, err
	}

	// --- 3. Visit every reachable commit, including those the log filtered out ---
	if err := client.StreamCommits(ctx, info.Root, acc.Visit); err != nil {
		return nil, nil, fmt.Errorf("failed to list commits: %w", err)
	}

	return acc.Result(info.Root, info.Head, opts), acc.Commits(), nil
}

// ExecuteHoc computes the hits-of-code for cfg.RepoPath and writes the total
// followed by a newline to out. The run is recorded in the run history store
// when one is configured; store problems are reported as warnings only.
func ExecuteHoc(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.StoreManager, out io.Writer) error {
	opts := schema.HistoryOptions{FindRenamesAndCopies: cfg.FindRenamesAndCopies}
	recorder := beginRunRecording(mgr, time.Now(), cfg.RepoPath, opts)

	result, commits, err := analyzeHistory(ctx, client, cfg.RepoPath, opts, recorder.active())
	if err != nil {
		return err
	}

	recorder.finish(time.Now(), result, commits)

	_, err = fmt.Fprintf(out, "%d\n", result.Total)
	return err
}
