package git

import "context"

// Revision is one commit that touched a file, with the path the file had at
// that commit.
type Revision struct {
	Hash string // Full 40-char SHA
	Path string // Path relative to the repository root at this commit
}

// ShortHash returns the 7-char abbreviated hash.
func (r Revision) ShortHash() string {
	if len(r.Hash) <= 7 {
		return r.Hash
	}
	return r.Hash[:7]
}

// Executor defines the git operations needed to replay a file's history.
// This abstraction allows for easy testing with mock implementations.
type Executor interface {
	// RepoRoot returns the absolute path of the repository's top level.
	// Returns ErrNotGitRepo outside a repository.
	RepoRoot(ctx context.Context) (string, error)
	// FileHistory returns up to limit revisions of file, newest first,
	// following renames. file is relative to the repository root.
	// Returns ErrNoCommits when the file has no history.
	FileHistory(ctx context.Context, file string, limit int) ([]Revision, error)
	// Show returns the contents of path at rev.
	Show(ctx context.Context, rev, path string) (string, error)
}
