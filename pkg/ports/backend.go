package ports

import (
	"context"
	"io"

	"github.com/aretw0/mentorai/pkg/domain"
)

// ProfileStore reads and partially updates user profiles.
type ProfileStore interface {
	// Get returns the profile of userID or domain.ErrNotFound.
	Get(ctx context.Context, userID string) (*domain.Profile, error)

	// GetByUsername returns the profile published under username or domain.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*domain.Profile, error)

	// Update applies a partial update to the profile of userID.
	Update(ctx context.Context, userID string, update domain.ProfileUpdate) error
}

// CompanyCatalog lists the company collection. Filtering is done by the caller.
type CompanyCatalog interface {
	List(ctx context.Context) ([]domain.Company, error)
}

// SettingsStore reads and writes the single settings row of a user.
type SettingsStore interface {
	// Get returns the row for userID, or domain.ErrNotFound for a user without one.
	Get(ctx context.Context, userID string) (*domain.Settings, error)

	// Insert creates the row and returns its ID.
	Insert(ctx context.Context, s domain.Settings) (string, error)

	// Update overwrites the row identified by s.ID.
	Update(ctx context.Context, s domain.Settings) error
}

// Lister reads the rows a user owns.
type Lister[T domain.Record] interface {
	List(ctx context.Context, userID string) ([]T, error)
}

// Collection is a per-user table with list, insert and delete.
type Collection[T domain.Record] interface {
	Lister[T]

	// Insert stores rec and returns it with its assigned ID.
	Insert(ctx context.Context, rec T) (T, error)

	// Get returns one row owned by userID or domain.ErrNotFound.
	Get(ctx context.Context, userID, id string) (T, error)

	// Delete removes the row id owned by userID.
	Delete(ctx context.Context, userID, id string) error
}

// ObjectStorage stores uploaded files in named buckets.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, path, contentType string, body io.Reader) error
	Remove(ctx context.Context, bucket string, paths ...string) error
	PublicURL(bucket, path string) string
}

// ChangeFeed delivers row changes of a table for one user until ctx is done.
// The returned channel is closed when the subscription ends.
type ChangeFeed interface {
	Subscribe(ctx context.Context, table, userID string) (<-chan domain.ChangeEvent, error)
}

// SessionVerifier validates an access token and returns the caller's session.
// Invalid or expired tokens yield domain.ErrUnauthenticated.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Session, error)
}

// SessionRevoker ends a session at the auth provider (sign-out).
type SessionRevoker interface {
	Revoke(ctx context.Context, token string) error
}
