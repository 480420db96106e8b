package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Git-specific errors for history extraction.
var (
	// ErrNotGitRepo indicates the directory is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrNoCommits indicates the file (or repository) has no commits.
	ErrNoCommits = errors.New("no commits found")

	// ErrOutsideRepo indicates a file that does not live inside the repository.
	ErrOutsideRepo = errors.New("file is outside the repository")

	// ErrMissingGit indicates the git binary is not on PATH.
	ErrMissingGit = errors.New("git not found on PATH")
)

// Compile-time check that RealExecutor implements Executor.
var _ Executor = (*RealExecutor)(nil)

// RealExecutor implements Executor by executing actual git commands.
type RealExecutor struct {
	workDir string
}

// NewRealExecutor creates a new RealExecutor for the given working directory.
func NewRealExecutor(workDir string) *RealExecutor {
	return &RealExecutor{workDir: workDir}
}

// runGitOutput executes a git command and returns stdout and any error.
// Output is returned untrimmed so file contents survive intact.
func (e *RealExecutor) runGitOutput(ctx context.Context, args ...string) (string, error) {
	//nolint:gosec // G204: args come from controlled sources
	cmd := exec.CommandContext(ctx, "git", args...)
	if e.workDir != "" {
		cmd.Dir = e.workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrMissingGit
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		stderrStr := strings.TrimSpace(stderr.String())
		// Parse git-specific errors
		if stderrStr != "" {
			return "", parseGitError(stderrStr, err)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}

	return stdout.String(), nil
}

// parseGitError converts git stderr messages to specific error types.
func parseGitError(stderr string, originalErr error) error {
	stderrLower := strings.ToLower(stderr)

	// Not a git repository
	if strings.Contains(stderrLower, "not a git repository") {
		return fmt.Errorf("%w: %s", ErrNotGitRepo, stderr)
	}

	// Empty repository: fatal: your current branch 'main' does not have any commits yet
	if strings.Contains(stderrLower, "does not have any commits") {
		return fmt.Errorf("%w: %s", ErrNoCommits, stderr)
	}

	// Path given to log/show outside the work tree
	if strings.Contains(stderrLower, "outside repository") {
		return fmt.Errorf("%w: %s", ErrOutsideRepo, stderr)
	}

	return fmt.Errorf("git error: %s: %w", stderr, originalErr)
}

// RepoRoot returns the root directory of the git repository.
func (e *RealExecutor) RepoRoot(ctx context.Context) (string, error) {
	output, err := e.runGitOutput(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	root := strings.TrimSpace(output)
	if root == "" {
		return "", fmt.Errorf("%w: %s", ErrNotGitRepo, e.workDir)
	}
	return root, nil
}

// FileHistory lists the commits touching file, newest first. --name-only
// records the file's name at each commit, which differs across renames.
func (e *RealExecutor) FileHistory(ctx context.Context, file string, limit int) ([]Revision, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("history limit must be positive, got %d", limit)
	}

	output, err := e.runGitOutput(ctx,
		"log",
		"--follow",
		"-n"+strconv.Itoa(limit),
		"--pretty=format:%H",
		"--name-only",
		"--",
		file,
	)
	if err != nil {
		return nil, err
	}

	revisions := parseHistory(output)
	if len(revisions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCommits, file)
	}
	return revisions, nil
}

// Show returns the file contents at a revision.
func (e *RealExecutor) Show(ctx context.Context, rev, path string) (string, error) {
	return e.runGitOutput(ctx, "show", rev+":"+path)
}

// parseHistory parses `git log --pretty=format:%H --name-only` output: a hash
// line followed by one or more path lines, records separated by blank lines.
func parseHistory(output string) []Revision {
	var revisions []Revision
	var current *Revision

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case isHash(line):
			revisions = append(revisions, Revision{Hash: line})
			current = &revisions[len(revisions)-1]
		case current != nil && current.Path == "":
			current.Path = line
		}
	}

	// drop hashes that never got a path (merge commits without changes)
	out := revisions[:0]
	for _, r := range revisions {
		if r.Path != "" {
			out = append(out, r)
		}
	}
	return out
}

func isHash(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
