package git_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adelrodriguez/sakuga/internal/git"
	"github.com/adelrodriguez/sakuga/internal/mocks"
	"github.com/adelrodriguez/sakuga/internal/source"
)

func goOnly() source.Languages {
	return source.Languages{
		Check: func(language string) error {
			if language != "go" {
				return errors.New("unsupported language")
			}
			return nil
		},
		ForFile: func(filename string) string {
			if filepath.Ext(filename) == ".go" {
				return "go"
			}
			return ""
		},
	}
}

func historyMock(t *testing.T) *mocks.MockGitExecutor {
	e := mocks.NewMockGitExecutor(t)
	e.On("RepoRoot", mock.Anything).Return("/repo", nil)
	e.On("FileHistory", mock.Anything, "pkg/main.go", 3).Return([]git.Revision{
		{Hash: "3333333333333333333333333333333333333333", Path: "pkg/main.go"},
		{Hash: "2222222222222222222222222222222222222222", Path: "pkg/main.go"},
		{Hash: "1111111111111111111111111111111111111111", Path: "main.go"},
	}, nil)
	e.On("Show", mock.Anything, mock.Anything, mock.Anything).Return(
		func(_ context.Context, rev, path string) string { return "// " + rev[:1] + " " + path + "\n" },
		nil,
	)
	return e
}

func TestHistory_OldestFirst(t *testing.T) {
	e := historyMock(t)

	blocks, err := git.History(context.Background(), e, "/repo/pkg", "main.go", git.HistoryOptions{
		Limit:     3,
		Languages: goOnly(),
	})
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	require.Equal(t, "// 1 main.go", blocks[0].Code)
	require.Equal(t, "1111111:main.go", blocks[0].Origin)
	require.Equal(t, "// 3 pkg/main.go", blocks[2].Code)
	for _, b := range blocks {
		require.Equal(t, "go", b.Language)
	}
}

func TestHistory_Reverse(t *testing.T) {
	e := historyMock(t)

	blocks, err := git.History(context.Background(), e, "/repo", "pkg/main.go", git.HistoryOptions{
		Limit:     3,
		Reverse:   true,
		Languages: goOnly(),
	})
	require.NoError(t, err)
	require.Equal(t, "3333333:pkg/main.go", blocks[0].Origin)
	require.Equal(t, "1111111:main.go", blocks[2].Origin)
}

func TestHistory_LanguageOverride(t *testing.T) {
	e := mocks.NewMockGitExecutor(t)
	e.On("RepoRoot", mock.Anything).Return("/repo", nil)

	_, err := git.History(context.Background(), e, "/repo", "LICENSE", git.HistoryOptions{Languages: goOnly()})
	require.ErrorIs(t, err, source.ErrMissingLanguage)

	_, err = git.History(context.Background(), e, "/repo", "LICENSE", git.HistoryOptions{
		Language:  "Klingon",
		Languages: goOnly(),
	})
	require.ErrorContains(t, err, "unsupported language", "override is checked before reading history")
}

func TestHistory_Errors(t *testing.T) {
	t.Run("not a repository", func(t *testing.T) {
		e := mocks.NewMockGitExecutor(t)
		e.On("RepoRoot", mock.Anything).Return("", git.ErrNotGitRepo)

		_, err := git.History(context.Background(), e, "/tmp", "main.go", git.HistoryOptions{})
		require.ErrorIs(t, err, git.ErrNotGitRepo)
	})

	t.Run("outside repository", func(t *testing.T) {
		e := mocks.NewMockGitExecutor(t)
		e.On("RepoRoot", mock.Anything).Return("/repo", nil)

		_, err := git.History(context.Background(), e, "/repo", "../elsewhere/main.go", git.HistoryOptions{})
		require.ErrorIs(t, err, git.ErrOutsideRepo)
	})

	t.Run("default limit", func(t *testing.T) {
		e := mocks.NewMockGitExecutor(t)
		e.On("RepoRoot", mock.Anything).Return("/repo", nil)
		e.On("FileHistory", mock.Anything, "main.go", git.DefaultLimit).Return(nil, git.ErrNoCommits)

		_, err := git.History(context.Background(), e, "/repo", "main.go", git.HistoryOptions{Languages: goOnly()})
		require.ErrorIs(t, err, git.ErrNoCommits)
	})

	t.Run("missing language", func(t *testing.T) {
		e := mocks.NewMockGitExecutor(t)
		e.On("RepoRoot", mock.Anything).Return("/repo", nil)

		_, err := git.History(context.Background(), e, "/repo", "main.go", git.HistoryOptions{})
		require.ErrorIs(t, err, source.ErrMissingLanguage)
		require.ErrorContains(t, err, "--language")
		e.AssertNotCalled(t, "FileHistory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("show failure", func(t *testing.T) {
		e := mocks.NewMockGitExecutor(t)
		e.On("RepoRoot", mock.Anything).Return("/repo", nil)
		e.On("FileHistory", mock.Anything, "main.go", 1).Return([]git.Revision{
			{Hash: "abcdef0123456789abcdef0123456789abcdef01", Path: "main.go"},
		}, nil)
		boom := errors.New("boom")
		e.On("Show", mock.Anything, mock.Anything, "main.go").Return("", boom)

		_, err := git.History(context.Background(), e, "/repo", "main.go", git.HistoryOptions{
			Limit:     1,
			Languages: goOnly(),
		})
		require.ErrorIs(t, err, boom)
		require.ErrorContains(t, err, "abcdef0:main.go")
	})
}

func TestHistory_RealRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")
	run("config", "commit.gpgsign", "false")
	for _, body := range []string{"package main\n", "package main\n\nfunc main() {}\n"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(body), 0o644))
		run("add", "main.go")
		run("commit", "-q", "-m", "step")
	}

	blocks, err := git.History(context.Background(), git.NewRealExecutor(dir), dir, "main.go", git.HistoryOptions{
		Languages: goOnly(),
	})
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.Equal(t, "package main", blocks[0].Code)
	require.Equal(t, "package main\n\nfunc main() {}", blocks[1].Code)
}
