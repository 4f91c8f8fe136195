// Package schema has the models and constants shared by all parts of hoc.
package schema

// DiffStats is the summary of one tree-to-tree diff.
type DiffStats struct {
	FilesChanged uint64 `json:"files_changed"`
	Insertions   uint64 `json:"insertions"`
	Deletions    uint64 `json:"deletions"`
}

// Hits returns the hits-of-code contribution of the diff.
func (s DiffStats) Hits() uint64 {
	return s.FilesChanged + s.Insertions + s.Deletions
}

// Add returns the element-wise sum of two stats.
func (s DiffStats) Add(other DiffStats) DiffStats {
	return DiffStats{
		FilesChanged: s.FilesChanged + other.FilesChanged,
		Insertions:   s.Insertions + other.Insertions,
		Deletions:    s.Deletions + other.Deletions,
	}
}

// CommitStats is the diff summary of a single commit against its parent.
type CommitStats struct {
	Hash    string    `json:"hash"`
	Parents int       `json:"parents"` // 0 for a root commit, 2+ for a merge
	Stats   DiffStats `json:"stats"`
}

// IsMerge reports whether the commit has more than one parent.
// Merges are never diffed, so their stats are always zero.
func (c CommitStats) IsMerge() bool {
	return c.Parents > 1
}

// IsRoot reports whether the commit has no parent.
func (c CommitStats) IsRoot() bool {
	return c.Parents == 0
}

// HocResult is the outcome of a complete history walk.
type HocResult struct {
	RepoPath             string    `json:"repo_path"`
	Head                 string    `json:"head"` // empty for a repository without commits
	FindRenamesAndCopies bool      `json:"find_renames_and_copies"`
	Commits              int       `json:"commits"`
	Merges               int       `json:"merges"`
	Roots                int       `json:"roots"`
	Stats                DiffStats `json:"stats"`
	Total                uint64    `json:"total"`
}

// HistoryOptions controls how each commit is compared with its parent.
type HistoryOptions struct {
	FindRenamesAndCopies bool
}
