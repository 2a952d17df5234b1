// Package jwtauth verifies the HS256 access tokens issued by the hosted auth
// service and turns them into domain sessions. It also signs tokens for local
// development and keeps a denylist of signed-out tokens.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/ports"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultAudience is the audience the hosted auth service stamps on user tokens.
const DefaultAudience = "authenticated"

// Claims is the access-token payload.
type Claims struct {
	jwt.RegisteredClaims
	Email        string              `json:"email,omitempty"`
	SessionID    string              `json:"session_id,omitempty"`
	Role         string              `json:"role,omitempty"`
	UserMetadata domain.UserMetadata `json:"user_metadata"`
}

// Denylist remembers revoked token ids until they would have expired anyway.
type Denylist interface {
	Deny(ctx context.Context, tokenID string, until time.Time) error
	Denied(ctx context.Context, tokenID string) (bool, error)
}

// Verifier implements ports.SessionVerifier and ports.SessionRevoker.
type Verifier struct {
	secret   []byte
	audience string
	issuer   string
	denylist Denylist
	now      func() time.Time
}

var (
	_ ports.SessionVerifier = (*Verifier)(nil)
	_ ports.SessionRevoker  = (*Verifier)(nil)
)

// Option configures a Verifier.
type Option func(*Verifier)

// WithAudience overrides DefaultAudience.
func WithAudience(aud string) Option {
	return func(v *Verifier) { v.audience = aud }
}

// WithIssuer requires the iss claim to equal iss.
func WithIssuer(iss string) Option {
	return func(v *Verifier) { v.issuer = iss }
}

// WithDenylist sets where revoked tokens are recorded. Defaults to an in-process list.
func WithDenylist(d Denylist) Option {
	return func(v *Verifier) { v.denylist = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier creates a Verifier for tokens signed with secret.
func NewVerifier(secret []byte, opts ...Option) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtauth: secret is required")
	}
	v := &Verifier{
		secret:   secret,
		audience: DefaultAudience,
		denylist: NewMemoryDenylist(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *Verifier) parse(token string) (*Claims, error) {
	var claims Claims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthenticated)
	}
	return &claims, nil
}

func tokenID(c *Claims) string {
	if c.ID != "" {
		return c.ID
	}
	return c.SessionID
}

// Verify implements ports.SessionVerifier.
func (v *Verifier) Verify(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := v.parse(token)
	if err != nil {
		return nil, err
	}
	if id := tokenID(claims); id != "" {
		denied, err := v.denylist.Denied(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check denylist: %w", err)
		}
		if denied {
			return nil, fmt.Errorf("%w: token revoked", domain.ErrUnauthenticated)
		}
	}

	sid := claims.SessionID
	if sid == "" {
		sid = claims.Subject
	}
	s := &domain.Session{
		ID:          sid,
		UserID:      claims.Subject,
		Email:       claims.Email,
		AccessToken: token,
		Metadata:    claims.UserMetadata,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Revoke implements ports.SessionRevoker. Tokens without an id cannot be
// revoked individually and are left to expire.
func (v *Verifier) Revoke(ctx context.Context, token string) error {
	claims, err := v.parse(token)
	if err != nil {
		return err
	}
	id := tokenID(claims)
	if id == "" {
		return nil
	}
	return v.denylist.Deny(ctx, id, claims.ExpiresAt.Time)
}

// Sign issues a token for sess valid for ttl. It is meant for local
// development and tests; production tokens come from the auth service.
func (v *Verifier) Sign(sess domain.Session, ttl time.Duration) (string, error) {
	now := v.now()
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sess.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:        sess.Email,
		SessionID:    sess.ID,
		Role:         DefaultAudience,
		UserMetadata: sess.Metadata,
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// MemoryDenylist is an in-process Denylist.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryDenylist creates an empty MemoryDenylist.
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: make(map[string]time.Time), now: time.Now}
}

// Deny implements Denylist.
func (d *MemoryDenylist) Deny(ctx context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[tokenID] = until
	return nil
}

// Denied implements Denylist. Expired entries are dropped on lookup.
func (d *MemoryDenylist) Denied(ctx context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.entries[tokenID]
	if !ok {
		return false, nil
	}
	if !until.IsZero() && !d.now().Before(until) {
		delete(d.entries, tokenID)
		return false, nil
	}
	return true, nil
}
