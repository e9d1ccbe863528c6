package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

func TestWorkingTree_SyncWithoutReset(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "populated tree",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				if err := os.MkdirAll(filepath.Join(dir, "content"), 0o755); err != nil {
					t.Fatal(err)
				}
				return dir
			},
		},
		{
			name: "empty tree",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr: true,
		},
		{
			name: "missing tree",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)

			err := NewWorkingTree(1).Sync(context.Background(), "https://example.com/content.git", dir, false)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Sync() error = %v, wantErr %v", err, tt.wantErr)
			}

			var syncErr *domain.SyncError
			if tt.wantErr && !errors.As(err, &syncErr) {
				t.Errorf("Sync() error = %T, want *domain.SyncError", err)
			}
		})
	}
}

func TestWorkingTree_SyncWithResetFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "clone")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(dir, "stale.md")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	remote := filepath.Join(t.TempDir(), "no-such-repo")
	err := NewWorkingTree(0).Sync(context.Background(), remote, dir, true)

	var syncErr *domain.SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("Sync() error = %v, want *domain.SyncError", err)
	}
	if syncErr.Remote != remote || syncErr.Dir != dir {
		t.Errorf("SyncError = %+v, want remote %s and dir %s", syncErr, remote, dir)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale file survived a reset: %v", err)
	}
}

func TestHandleGitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not found", err: transport.ErrRepositoryNotFound, want: "repository not found"},
		{name: "auth", err: transport.ErrAuthenticationRequired, want: "access denied"},
		{name: "empty remote", err: transport.ErrEmptyRemoteRepository, want: "remote repository is empty"},
		{name: "other", err: errors.New("boom"), want: "git: cloning x failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handleGitError("cloning x", tt.err)
			if tt.err == nil {
				if got != nil {
					t.Errorf("handleGitError(nil) = %v, want nil", got)
				}
				return
			}
			if !strings.Contains(got.Error(), tt.want) {
				t.Errorf("handleGitError() = %q, want it to contain %q", got.Error(), tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("handleGitError() does not wrap %v", tt.err)
			}
		})
	}
}
