package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/internal/iocache"
	"github.com/huangsam/hoc/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLog redirects the log helpers to a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	original := contract.LogOutput
	contract.LogOutput = &buf
	t.Cleanup(func() { contract.LogOutput = original })
	return &buf
}

// isolate runs the test from an empty directory with an empty home.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_CONFIG_GLOBAL=/dev/null",
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_AUTHOR_NAME=Test",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test",
		"GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func TestParseHocArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    bool
		wantErr bool
	}{
		{"no args", nil, false, false},
		{"rename flag", []string{"--find-renames-and-copies"}, true, false},
		{"unknown flag", []string{"--bogus"}, false, true},
		{"help", []string{"--help"}, false, true},
		{"short help", []string{"-h"}, false, true},
		{"extra arg", []string{"--find-renames-and-copies", "x"}, false, true},
		{"positional", []string{"."}, false, true},
		{"flag with value", []string{"--find-renames-and-copies=true"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHocArgs(tt.args)
			if tt.wantErr {
				var usageErr *UsageError
				assert.ErrorAs(t, err, &usageErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUsageError(t *testing.T) {
	err := &UsageError{Program: "hoc"}
	assert.Equal(t, "usage: hoc [--find-renames-and-copies]", err.Error())
}

func TestExitCodeOf(t *testing.T) {
	assert.Equal(t, 0, ExitCodeOf(nil))
	assert.Equal(t, 1, ExitCodeOf(&UsageError{Program: "hoc"}))
	assert.Equal(t, 1, ExitCodeOf(&contract.ProcessError{Command: "git log", ExitCode: 128}))
	assert.Equal(t, 1, ExitCodeOf(contract.ErrRepositoryNotFound))
}

func TestRunHoc_Usage(t *testing.T) {
	isolate(t)
	logs := captureLog(t)
	var stdout bytes.Buffer

	code := RunHoc([]string{"--bogus"}, &stdout)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Equal(t, "usage: "+programName+" [--find-renames-and-copies]\n", logs.String())
}

func TestRunHoc_NotARepository(t *testing.T) {
	isolate(t)
	logs := captureLog(t)
	var stdout bytes.Buffer

	code := RunHoc(nil, &stdout)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.True(t, strings.HasPrefix(logs.String(), "Error: failed to compute hits-of-code: "), logs.String())
	assert.Contains(t, logs.String(), "repository not found")
	assert.Equal(t, 1, strings.Count(logs.String(), "\n"))
}

func TestRunHoc_Success(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
	dir := isolate(t)
	gitCmd(t, dir, "init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\ntwo\nthree\n"), 0o644))
	gitCmd(t, dir, "add", "a.txt")
	gitCmd(t, dir, "commit", "-q", "-m", "add a")

	for _, args := range [][]string{nil, {schema.FindRenamesAndCopiesFlag}} {
		logs := captureLog(t)
		var stdout bytes.Buffer

		code := RunHoc(args, &stdout)

		assert.Equal(t, 0, code, logs.String())
		assert.Equal(t, "4\n", stdout.String())
	}
}

func TestRunHoc_EmptyRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
	dir := isolate(t)
	gitCmd(t, dir, "init", "-q")
	captureLog(t)
	var stdout bytes.Buffer

	assert.Equal(t, 0, RunHoc(nil, &stdout))
	assert.Equal(t, "0\n", stdout.String())
}

// writeGitWrapper writes a git wrapper script that creates marker before
// running the real git, and returns its path.
func writeGitWrapper(t *testing.T, marker string) string {
	t.Helper()
	script := filepath.Join(t.TempDir(), "git-wrapper.sh")
	body := "#!/bin/sh\ntouch '" + marker + "'\nexec git \"$@\"\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script
}

func TestRunHoc_IgnoresRepositoryConfig(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
	dir := isolate(t)
	outside := t.TempDir()
	marker := filepath.Join(outside, "wrapper-ran")
	dbPath := filepath.Join(outside, "planted.db")

	config := "git-binary: " + writeGitWrapper(t, marker) + "\n" +
		"analysis-backend: sqlite\n" +
		"analysis-db-connect: " + dbPath + "\n"
	gitCmd(t, dir, "init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hoc.yaml"), []byte(config), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\ntwo\nthree\n"), 0o644))
	gitCmd(t, dir, "add", ".hoc.yaml", "a.txt")
	gitCmd(t, dir, "commit", "-q", "-m", "add config and a")

	logs := captureLog(t)
	var stdout bytes.Buffer

	code := RunHoc(nil, &stdout)

	assert.Equal(t, 0, code, logs.String())
	assert.Equal(t, "8\n", stdout.String())
	assert.NoFileExists(t, marker, "git-binary from the checkout must not run")
	assert.NoFileExists(t, dbPath, "store settings from the checkout must not apply")
}

func TestRunHoc_ReadsHomeConfig(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
	dir := isolate(t)
	marker := filepath.Join(t.TempDir(), "wrapper-ran")
	config := "git-binary: " + writeGitWrapper(t, marker) + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(os.Getenv("HOME"), ".hoc.yaml"), []byte(config), 0o644))

	gitCmd(t, dir, "init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\n"), 0o644))
	gitCmd(t, dir, "add", "a.txt")
	gitCmd(t, dir, "commit", "-q", "-m", "add a")

	logs := captureLog(t)
	var stdout bytes.Buffer

	assert.Equal(t, 0, RunHoc(nil, &stdout), logs.String())
	assert.Equal(t, "2\n", stdout.String())
	assert.FileExists(t, marker)
}

func TestCtlVersion(t *testing.T) {
	var out bytes.Buffer
	ctlCmd.SetOut(&out)
	ctlCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { ctlCmd.SetOut(nil) })

	require.NoError(t, ctlCmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "hocctl "+version+"\n"), out.String())
	assert.Contains(t, out.String(), "Runtime: go")
	assert.Contains(t, out.String(), fmt.Sprintf("Schema:  v%d", iocache.LatestMigrationVersion))
}

func TestRequireRunStore(t *testing.T) {
	original := *cfg
	t.Cleanup(func() { *cfg = original })

	cfg.AnalysisBackend = schema.NoneBackend
	_, err := requireRunStore()
	assert.ErrorContains(t, err, "run history is not enabled")

	mgr := new(iocache.MockStoreManager)
	store := new(iocache.MockRunStore)
	mgr.On("GetRunStore").Return(store)
	SetStoreManager(mgr)
	t.Cleanup(func() { SetStoreManager(iocache.Manager) })

	cfg.AnalysisBackend = schema.SQLiteBackend
	got, err := requireRunStore()
	require.NoError(t, err)
	assert.Same(t, store, got)
}

func TestRunsMigrate_SQLite(t *testing.T) {
	dir := isolate(t)
	dbPath := filepath.Join(dir, "runs.db")

	var out bytes.Buffer
	ctlCmd.SetOut(&out)
	ctlCmd.SetArgs([]string{"runs", "migrate", "--analysis-backend", "sqlite", "--analysis-db-connect", dbPath})
	t.Cleanup(func() { ctlCmd.SetOut(nil) })

	require.NoError(t, ctlCmd.Execute())
	assert.Contains(t, out.String(), "Successfully migrated from version 0 to version 2")
	assert.FileExists(t, dbPath)
}
