// Package agg has aggregation logic for Git numstat history.
package agg

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/schema"
)

// ErrOverflow is returned when the running total no longer fits in 64 bits.
var ErrOverflow = errors.New("hits-of-code total overflows uint64")

// Accumulator folds a numstat history stream into a running hits-of-code total.
// It is fed one line at a time and is not safe for concurrent use.
//
// The numstat stream only carries commits with a counted change. The set of
// visited commits comes from a second walk handed to Visit once the stream is
// finished.
type Accumulator struct {
	keepCommits bool
	diffs       map[string]schema.DiffStats
	commits     []schema.CommitStats
	current     *schema.CommitStats

	stats  schema.DiffStats
	total  uint64
	count  int
	merges int
	roots  int
}

// NewAccumulator creates an empty accumulator. When keepCommits is set, the
// stats of every visited commit are retained and returned by Commits.
func NewAccumulator(keepCommits bool) *Accumulator {
	acc := &Accumulator{keepCommits: keepCommits}
	if keepCommits {
		acc.diffs = make(map[string]schema.DiffStats)
	}
	return acc
}

// Feed consumes one line of git log output.
func (a *Accumulator) Feed(line string) error {
	line = strings.TrimRight(line, "\r")

	if strings.HasPrefix(line, contract.CommitMarker) {
		header, err := parseCommitHeader(line)
		if err != nil {
			return err
		}
		if err := a.flush(); err != nil {
			return err
		}
		a.current = &header
		return nil
	}
	if line == "" {
		return nil // Skip blank lines
	}

	stats, ok := parseNumstatLine(line)
	if !ok || a.current == nil {
		return nil
	}
	if a.current.IsMerge() {
		// Merges never contribute, even if a diff is printed for them
		return nil
	}
	a.current.Stats = a.current.Stats.Add(stats)
	return nil
}

// Finish closes the commit that is still open. It is safe to call more than once.
func (a *Accumulator) Finish() error {
	return a.flush()
}

// flush adds the open commit to the running total.
func (a *Accumulator) flush() error {
	if a.current == nil {
		return nil
	}
	commit := *a.current
	a.current = nil

	hits := commit.Stats.Hits()
	if hits < commit.Stats.FilesChanged || a.total > math.MaxUint64-hits {
		return fmt.Errorf("%w at commit %s", ErrOverflow, commit.Hash)
	}
	a.total += hits
	a.stats = a.stats.Add(commit.Stats)
	if a.keepCommits {
		a.diffs[commit.Hash] = a.diffs[commit.Hash].Add(commit.Stats)
	}
	return nil
}

// Visit consumes one "<hash> <parent>..." line of the reachable commit walk.
// Every visited commit is counted, with or without numstat lines.
func (a *Accumulator) Visit(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	fields := strings.Fields(line)
	commit := schema.CommitStats{Hash: fields[0], Parents: len(fields) - 1}

	a.count++
	if commit.IsMerge() {
		a.merges++
	}
	if commit.IsRoot() {
		a.roots++
	}
	if a.keepCommits {
		if !commit.IsMerge() {
			commit.Stats = a.diffs[commit.Hash]
		}
		a.commits = append(a.commits, commit)
	}
	return nil
}

// Total returns the hits-of-code of every finished commit in the stream.
func (a *Accumulator) Total() uint64 {
	return a.total
}

// Commits returns the retained per-commit stats in visit order.
func (a *Accumulator) Commits() []schema.CommitStats {
	return a.commits
}

// Result summarizes the stream total and the visited commits.
func (a *Accumulator) Result(repoPath, head string, opts schema.HistoryOptions) *schema.HocResult {
	return &schema.HocResult{
		RepoPath:             repoPath,
		Head:                 head,
		FindRenamesAndCopies: opts.FindRenamesAndCopies,
		Commits:              a.count,
		Merges:               a.merges,
		Roots:                a.roots,
		Stats:                a.stats,
		Total:                a.total,
	}
}

// parseCommitHeader parses a "--<hash>|<parent> <parent>..." line.
func parseCommitHeader(line string) (schema.CommitStats, error) {
	hash, parents, found := strings.Cut(strings.TrimPrefix(line, contract.CommitMarker), "|")
	if !found || hash == "" {
		return schema.CommitStats{}, fmt.Errorf("malformed commit header %q", line)
	}
	return schema.CommitStats{
		Hash:    hash,
		Parents: len(strings.Fields(parents)),
	}, nil
}

// parseNumstatLine parses "<added>\t<deleted>\t<path>". Every such line is one
// changed file; only the first two fields are read for line counts.
func parseNumstatLine(line string) (schema.DiffStats, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 || parts[2] == "" {
		return schema.DiffStats{}, false
	}
	return schema.DiffStats{
		FilesChanged: 1,
		Insertions:   parseLineCount(parts[0]),
		Deletions:    parseLineCount(parts[1]),
	}, true
}

// parseLineCount converts a numstat count to uint64, handling "-" (binary) as 0.
func parseLineCount(s string) uint64 {
	if s == "-" {
		return 0
	}
	if val, err := strconv.ParseUint(s, 10, 64); err == nil {
		return val
	}
	return 0
}
