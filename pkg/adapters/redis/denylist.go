package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// Denylist records revoked token ids with a TTL matching the token expiry, so
// a sign-out is honored by every instance sharing the Redis.
type Denylist struct {
	client *backend.Client
	prefix string
	now    func() time.Time
}

// NewDenylist creates a Denylist storing keys under prefix + "revoked:".
func NewDenylist(client *backend.Client, prefix string) *Denylist {
	return &Denylist{client: client, prefix: prefix, now: time.Now}
}

// Deny marks tokenID as revoked until the given time. A zero until keeps the
// entry forever.
func (d *Denylist) Deny(ctx context.Context, tokenID string, until time.Time) error {
	var ttl time.Duration
	if !until.IsZero() {
		if ttl = until.Sub(d.now()); ttl <= 0 {
			return nil
		}
	}
	if err := d.client.Set(ctx, d.prefix+"revoked:"+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Denied reports whether tokenID was revoked.
func (d *Denylist) Denied(ctx context.Context, tokenID string) (bool, error) {
	err := d.client.Get(ctx, d.prefix+"revoked:"+tokenID).Err()
	if errors.Is(err, backend.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return true, nil
}
