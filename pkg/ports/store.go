package ports

import (
	"context"

	"github.com/aretw0/mentorai/pkg/domain"
)

// WorkspaceStore defines the interface for persisting per-session flow drafts.
// Drafts are short-lived; implementations may expire them.
type WorkspaceStore interface {
	// Save persists the workspace for a given session ID.
	Save(ctx context.Context, sessionID string, ws *domain.Workspace) error

	// Load retrieves the workspace for a given session ID.
	// Returns domain.ErrWorkspaceNotFound if the session has no workspace.
	Load(ctx context.Context, sessionID string) (*domain.Workspace, error)

	// Delete removes the workspace for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of the stored workspaces.
	List(ctx context.Context) ([]string, error)
}
