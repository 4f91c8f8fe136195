package agg

import (
	"strings"
	"testing"
)

// FuzzParseNumstatLine checks that arbitrary lines never panic and that a
// recognised line always counts exactly one file.
func FuzzParseNumstatLine(f *testing.F) {
	seeds := []string{
		"1\t2\tmain.go",
		"-\t-\timage.png",
		"0\t0\tsrc/{a => b}.go",
		"3\t0",
		"",
		"--abc|def",
		"99999999999999999999\t1\tbig.txt",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, line string) {
		stats, ok := parseNumstatLine(line)
		if !ok {
			if stats.Hits() != 0 {
				t.Errorf("unrecognised line %q produced stats %+v", line, stats)
			}
			return
		}
		if stats.FilesChanged != 1 {
			t.Errorf("line %q counted %d files", line, stats.FilesChanged)
		}
		if strings.Count(line, "\t") < 2 {
			t.Errorf("line %q accepted without a path field", line)
		}
	})
}

// FuzzAccumulatorFeed checks that feeding arbitrary lines never panics.
func FuzzAccumulatorFeed(f *testing.F) {
	f.Add("--abc|\n1\t0\ta.go\n")
	f.Add("--abc|def ghi\n5\t5\tb.go\n")
	f.Add("\n\n\t\t\n")

	f.Fuzz(func(t *testing.T, log string) {
		acc := NewAccumulator(true)
		for line := range strings.SplitSeq(log, "\n") {
			_ = acc.Feed(line)
		}
		_ = acc.Finish()
		for line := range strings.SplitSeq(log, "\n") {
			_ = acc.Visit(line)
		}
		for _, c := range acc.Commits() {
			if c.IsMerge() && c.Stats.Hits() != 0 {
				t.Errorf("merge commit %s has stats", c.Hash)
			}
		}
	})
}
