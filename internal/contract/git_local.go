package contract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/huangsam/hoc/schema"
)

// DefaultGitBinary is the executable used when none is configured.
const DefaultGitBinary = "git"

// CommitMarker prefixes the header line git log prints for every commit.
// Numstat lines always start with a digit or "-\t", so the marker cannot collide.
const CommitMarker = "--"

// maxLineBytes bounds a single line of git log output (long quoted paths).
const maxLineBytes = 1024 * 1024

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct {
	Binary string
}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{Binary: DefaultGitBinary}
}

func (c *LocalGitClient) binary() string {
	if c.Binary == "" {
		return DefaultGitBinary
	}
	return c.Binary
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, c.binary(), fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, newProcessError(commandName(args), exitErr, string(exitErr.Stderr))
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// OpenRepo implements the GitClient interface.
// The store must live at repoPath itself; parent directories are not searched.
func (c *LocalGitClient) OpenRepo(_ context.Context, repoPath string) (RepoInfo, error) {
	root, err := filepath.Abs(repoPath)
	if err != nil {
		return RepoInfo{}, fmt.Errorf("failed to resolve %q: %w", repoPath, err)
	}

	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{
		DetectDotGit:          false,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return RepoInfo{}, fmt.Errorf("%w at %q", ErrRepositoryNotFound, root)
	} else if err != nil {
		return RepoInfo{}, fmt.Errorf("failed to open repository at %q: %w", root, err)
	}

	ref, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// HEAD names a branch that has no commits yet
		return RepoInfo{Root: root}, nil
	} else if err != nil {
		return RepoInfo{}, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	if _, err := repo.CommitObject(ref.Hash()); err != nil {
		return RepoInfo{}, fmt.Errorf("failed to load HEAD commit %s: %w", ref.Hash(), err)
	}

	return RepoInfo{Root: root, Head: ref.Hash().String()}, nil
}

// HistoryArgs returns the git log arguments used to walk history from HEAD.
//
// Each commit is printed as a CommitMarker header carrying its hash and parent
// hashes, followed by one numstat line per changed file. git log prints no diff
// for merge commits and diffs root commits against the empty tree. The diff
// filter also hides commits with no matching change, so the log cannot be used
// to count commits; see CommitsArgs.
func HistoryArgs(opts schema.HistoryOptions) []string {
	args := []string{
		"log",
		"--no-color",
		"--no-ext-diff",
		"--no-textconv",
		"--root",
		"--numstat",
		"--pretty=tformat:" + CommitMarker + "%H|%P",
		"--ignore-space-change",
		"--ignore-all-space",
		"--ignore-submodules",
		"--diff-filter=ACDM", // added copied deleted modified
	}
	if opts.FindRenamesAndCopies {
		args = append(args, "--find-renames", "--find-copies", "--find-copies-harder")
	} else {
		// diff.renames defaults to true for git log, so detection must be turned off explicitly
		args = append(args, "--no-renames")
	}
	return append(args, "HEAD", "--")
}

// CommitsArgs returns the git rev-list arguments that list every commit
// reachable from HEAD as "<hash> <parent>..." lines, newest first.
func CommitsArgs() []string {
	return []string{"rev-list", "--parents", "HEAD", "--"}
}

// StreamHistory implements the GitClient interface.
func (c *LocalGitClient) StreamHistory(ctx context.Context, repoPath string, opts schema.HistoryOptions, fn func(line string) error) error {
	return c.stream(ctx, repoPath, HistoryArgs(opts), fn)
}

// StreamCommits implements the GitClient interface.
func (c *LocalGitClient) StreamCommits(ctx context.Context, repoPath string, fn func(line string) error) error {
	return c.stream(ctx, repoPath, CommitsArgs(), fn)
}

// stream runs git with args and hands each line of its stdout to fn.
func (c *LocalGitClient) stream(ctx context.Context, repoPath string, args []string, fn func(line string) error) error {
	name := commandName(args)
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, c.binary(), fullArgs...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to attach to %s output: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var fnErr error
	for scanner.Scan() {
		if fnErr = fn(scanner.Text()); fnErr != nil {
			break
		}
	}
	if scanErr := scanner.Err(); fnErr != nil || scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		if fnErr != nil {
			return fnErr
		}
		return fmt.Errorf("failed to read %s output: %w", name, scanErr)
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return newProcessError(name, exitErr, stderr.String())
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

// commandName returns a short "git <subcommand>" label for error messages.
func commandName(args []string) string {
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			return "git " + arg
		}
	}
	return "git"
}
