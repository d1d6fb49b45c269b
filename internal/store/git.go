package store

import (
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
)

var (
	ErrNoSuchRef = errors.New("no such git ref")
)

// GitAuth holds Basic Auth credentials.
// For Bitbucket Cloud access tokens, use "x-token-auth" as Username
// and the token as Password.
type GitAuth struct {
	Username string
	Password string // or Token
}

// GitStore is a read-only Store over a single revision of a git repository.
// The repository is cloned into memory; no worktree is checked out.
type GitStore struct {
	ref  string
	tree *object.Tree
}

var _ Store = (*GitStore)(nil)

// NewGitStore clones the repository at url and pins the store to ref
// (a branch, tag or commit hash). An empty ref selects the remote HEAD.
func NewGitStore(url, ref string, auth *GitAuth) (*GitStore, error) {
	cloneOpts := &git.CloneOptions{
		URL:        url,
		NoCheckout: true,
	}
	if auth != nil {
		cloneOpts.Auth = &http.BasicAuth{
			Username: auth.Username,
			Password: auth.Password,
		}
	}
	repo, err := git.Clone(memory.NewStorage(), nil, cloneOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return newGitStore(repo, ref)
}

func newGitStore(repo *git.Repository, ref string) (*GitStore, error) {
	if ref == "" {
		head, err := repo.Head()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve HEAD: %w", err)
		}
		ref = head.Name().Short()
	}
	hash, err := resolveRevision(repo, ref)
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("commit lookup failed for %q: %w", ref, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get root tree for %q: %w", ref, err)
	}
	return &GitStore{ref: ref, tree: tree}, nil
}

func resolveRevision(repo *git.Repository, ref string) (*plumbing.Hash, error) {
	if hash, err := repo.ResolveRevision(plumbing.Revision(ref)); err == nil {
		return hash, nil
	}
	// Branches of a fresh clone only exist as remote refs.
	if !strings.HasPrefix(ref, "refs/") {
		if hash, err := repo.ResolveRevision(plumbing.Revision("origin/" + ref)); err == nil {
			return hash, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoSuchRef, ref)
}

// Ref returns the revision this store is pinned to.
func (g *GitStore) Ref() string {
	return g.ref
}

func (g *GitStore) ListFiles(dir string) ([]string, error) {
	dir = path.Clean(dir)
	target := g.tree
	if dir != "." && dir != "/" {
		t, err := g.tree.Tree(dir)
		if err != nil {
			return nil, fmt.Errorf("directory %q not found at %s: %w", dir, g.ref, err)
		}
		target = t
	}

	var files []string
	iter := target.Files()
	defer iter.Close()
	err := iter.ForEach(func(f *object.File) error {
		// Avoid using filepath here, git paths use "/" on any OS.
		if dir == "." || dir == "/" {
			files = append(files, f.Name)
		} else {
			files = append(files, path.Join(dir, f.Name))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files in %q: %w", dir, err)
	}
	slices.Sort(files)
	return files, nil
}

func (g *GitStore) ReadFile(filePath string) ([]byte, error) {
	file, err := g.tree.File(path.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("cannot read %q at %s: %w", filePath, g.ref, err)
	}
	r, err := file.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
