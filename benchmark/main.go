// Package main provides a performance benchmarking tool for the hoc CLI.
// It measures how long hoc takes on a set of repositories, with and without
// rename/copy detection, and with run tracking disabled or recorded in SQLite,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - hoc binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the averaged timings of one repository and mode.
type BenchmarkResult struct {
	Repository  string
	Mode        string
	Hits        string
	UntrackedAt string
	TrackedAt   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase  string
	Timeout   time.Duration
	Runs      int
	TestRepos []string
	Modes     map[string][]string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:  os.Args[1],
		Timeout:   10 * time.Minute,
		Runs:      3,
		TestRepos: []string{"csv-parser", "fd", "git", "kubernetes"},
		Modes: map[string][]string{
			"plain":   nil,
			"renames": {"--find-renames-and-copies"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	dbDir, err := os.MkdirTemp("", "hoc-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(dbDir) }()

	results := runBenchmarks(config, filepath.Join(dbDir, "runs.db"))

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that hoc binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("hoc"); err != nil {
		return fmt.Errorf("hoc binary not found in PATH")
	}

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}

	return nil
}

// runBenchmarks executes every mode on every configured repository
func runBenchmarks(config BenchmarkConfig, dbPath string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d runs per phase\n",
		len(config.TestRepos), config.Timeout, config.Runs)

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, mode := range []string{"plain", "renames"} {
			fmt.Printf("Benchmarking %s (%s)\n", repo, mode)
			results = append(results, runBenchmarkSuite(config, repo, repoPath, mode, dbPath))
		}
	}

	return results
}

// runBenchmarkSuite runs the untracked and tracked phases for one mode
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath, mode, dbPath string) BenchmarkResult {
	untrackedEnv := []string{"HOC_ANALYSIS_BACKEND=none"}
	trackedEnv := []string{"HOC_ANALYSIS_BACKEND=sqlite", "HOC_ANALYSIS_DB_CONNECT=" + dbPath}

	untrackedHits, untrackedAvg := runPhase(config, repoPath, config.Modes[mode], untrackedEnv)
	trackedHits, trackedAvg := runPhase(config, repoPath, config.Modes[mode], trackedEnv)

	hits := untrackedHits
	if untrackedHits != trackedHits {
		hits = fmt.Sprintf("MISMATCH(%s/%s)", untrackedHits, trackedHits)
	}

	fmt.Printf("  Hits: %s, Untracked average: %s, Tracked average: %s\n", hits, untrackedAvg, trackedAvg)

	return BenchmarkResult{
		Repository:  repo,
		Mode:        mode,
		Hits:        hits,
		UntrackedAt: untrackedAvg,
		TrackedAt:   trackedAvg,
	}
}

// runPhase runs hoc config.Runs times and returns its output and the average time
func runPhase(config BenchmarkConfig, repoPath string, args, env []string) (hits, avgTime string) {
	var sum float64
	var ok int
	for run := 1; run <= config.Runs; run++ {
		out, elapsed, err := runHoc(config.Timeout, repoPath, args, env)
		if err != nil {
			fmt.Printf("  run %d failed: %v\n", run, err)
			continue
		}
		hits = out
		sum += elapsed.Seconds()
		ok++
	}

	if ok == 0 {
		return "-", "FAILED"
	}
	return hits, fmt.Sprintf("%.3fs", sum/float64(ok))
}

// runHoc executes hoc once and returns its trimmed stdout and wall time
func runHoc(timeout time.Duration, repoPath string, args, env []string) (string, time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "hoc", args...)
	cmd.Dir = repoPath
	cmd.Env = append(os.Environ(), env...)

	start := time.Now()
	output, err := cmd.Output()
	elapsed := time.Since(start)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", elapsed, fmt.Errorf("timed out after %v", timeout)
	}
	if err != nil {
		return "", elapsed, err
	}
	return strings.TrimSpace(string(output)), elapsed, nil
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/hoc_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"repo", "mode", "hits", "untracked_avg", "tracked_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.Mode, result.Hits, result.UntrackedAt, result.TrackedAt}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, mode := range []string{"plain", "renames"} {
		fmt.Printf("Mode %s:\n", mode)
		for _, result := range results {
			if result.Mode == mode {
				fmt.Printf("  %-12s: Hits: %s, Untracked: %s, Tracked: %s\n",
					result.Repository, result.Hits, result.UntrackedAt, result.TrackedAt)
			}
		}
	}
}
