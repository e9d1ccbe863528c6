package git

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dfryer1193/blogapi/blog/domain"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/rs/zerolog/log"
)

var _ domain.SourceSync = (*WorkingTree)(nil)

// WorkingTree is an implementation of domain.SourceSync that clones with go-git.
type WorkingTree struct {
	depth int
}

// NewWorkingTree creates a WorkingTree. A depth of zero clones full history.
func NewWorkingTree(depth int) *WorkingTree {
	return &WorkingTree{depth: depth}
}

// Sync makes localDir a fresh clone of remoteURI when forceReset is set.
// Otherwise the tree is assumed to be kept current out of band and is only
// checked for presence.
func (w *WorkingTree) Sync(ctx context.Context, remoteURI, localDir string, forceReset bool) error {
	if forceReset {
		if err := w.reset(ctx, remoteURI, localDir); err != nil {
			return &domain.SyncError{Remote: remoteURI, Dir: localDir, Err: err}
		}
	}

	if err := checkPopulated(localDir); err != nil {
		return &domain.SyncError{Remote: remoteURI, Dir: localDir, Err: err}
	}

	return nil
}

func (w *WorkingTree) reset(ctx context.Context, remoteURI, localDir string) error {
	if err := os.RemoveAll(localDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", localDir, err)
	}

	log.Info().Str("remote", remoteURI).Str("dir", localDir).Msg("Cloning content repository")

	_, err := gogit.PlainCloneContext(ctx, localDir, false, &gogit.CloneOptions{
		URL:   remoteURI,
		Depth: w.depth,
	})
	return handleGitError(fmt.Sprintf("cloning %s", remoteURI), err)
}

func checkPopulated(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("working tree unavailable: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("working tree %s is empty", dir)
	}
	return nil
}

// handleGitError turns go-git's transport errors into messages that name the operation.
func handleGitError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, transport.ErrRepositoryNotFound):
		return fmt.Errorf("git: %s failed: repository not found: %w", op, err)
	case errors.Is(err, transport.ErrAuthenticationRequired), errors.Is(err, transport.ErrAuthorizationFailed):
		return fmt.Errorf("git: %s failed: access denied: %w", op, err)
	case errors.Is(err, transport.ErrEmptyRemoteRepository):
		return fmt.Errorf("git: %s failed: remote repository is empty: %w", op, err)
	}

	return fmt.Errorf("git: %s failed: %w", op, err)
}
