// Package git replays the history of a single file as a sequence of code
// blocks, one per commit.
package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adelrodriguez/sakuga/internal/log"
	"github.com/adelrodriguez/sakuga/internal/scene"
	"github.com/adelrodriguez/sakuga/internal/source"
)

// DefaultLimit is the number of commits replayed when none is given.
const DefaultLimit = 10

// HistoryOptions controls which revisions become code blocks.
type HistoryOptions struct {
	// Limit caps the number of commits, newest first. Zero means DefaultLimit.
	Limit int
	// Reverse keeps git's newest-first order instead of oldest first.
	Reverse bool
	// Language overrides the language inferred from the file name.
	Language string
	// Languages validates and infers the block language.
	Languages source.Languages
}

// History loads the revisions of file as code blocks. Relative paths resolve
// against the executor's working directory cwd. Blocks are ordered oldest
// first unless opts.Reverse is set.
func History(ctx context.Context, e Executor, cwd, file string, opts HistoryOptions) ([]scene.CodeBlock, error) {
	root, err := e.RepoRoot(ctx)
	if err != nil {
		return nil, err
	}

	rel, err := relativeTo(root, cwd, file)
	if err != nil {
		return nil, err
	}

	language := source.NormalizeLanguage(opts.Language)
	if language == "" {
		language = source.NormalizeLanguage(opts.Languages.Infer(rel))
	}
	if language == "" {
		return nil, fmt.Errorf("%s: %w (pass --language)", file, source.ErrMissingLanguage)
	}
	if err := opts.Languages.Validate(scene.CodeBlock{Language: language, Origin: file}); err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	revisions, err := e.FileHistory(ctx, rel, limit)
	if err != nil {
		return nil, err
	}
	if !opts.Reverse {
		for i, j := 0, len(revisions)-1; i < j; i, j = i+1, j-1 {
			revisions[i], revisions[j] = revisions[j], revisions[i]
		}
	}

	blocks := make([]scene.CodeBlock, 0, len(revisions))
	for _, rev := range revisions {
		code, err := e.Show(ctx, rev.Hash, rev.Path)
		if err != nil {
			return nil, fmt.Errorf("show %s:%s: %w", rev.ShortHash(), rev.Path, err)
		}
		blocks = append(blocks, scene.CodeBlock{
			Code:     strings.TrimRight(code, "\n"),
			Language: language,
			Origin:   rev.ShortHash() + ":" + rev.Path,
		})
	}

	log.Debug(log.CatGit, "Loaded file history", "file", rel, "commits", len(blocks), "reverse", opts.Reverse)
	return blocks, nil
}

// relativeTo returns file relative to the repository root.
func relativeTo(root, cwd, file string) (string, error) {
	abs := file
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(cwd, file)
	}
	// git reports the resolved root, so resolve symlinks on our side too.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRepo, file)
	}
	return filepath.ToSlash(rel), nil
}
