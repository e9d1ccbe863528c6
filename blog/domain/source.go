package domain

import (
	"context"
)

// SourceSync makes a local working tree mirror a remote content repository.
// This allows the application to be decoupled from a specific VCS implementation.
type SourceSync interface {
	Sync(ctx context.Context, remoteURI string, localDir string, forceReset bool) error
}
