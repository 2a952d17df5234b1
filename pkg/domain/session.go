package domain

import (
	"context"
	"time"
)

// UserMetadata is the free-form metadata the auth provider keeps on a user.
type UserMetadata struct {
	FullName         string   `json:"full_name,omitempty"`
	AvatarURL        string   `json:"avatar_url,omitempty"`
	Onboarded        bool     `json:"onboarded,omitempty"`
	CareerGoal       string   `json:"career_goal,omitempty"`
	ExperienceLevel  string   `json:"experience_level,omitempty"`
	PreferredDomains []string `json:"preferred_domains,omitempty"`
}

// Session is the authenticated caller. It is created once per request by the
// session verifier and passed down explicitly; nothing holds it globally.
type Session struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Email       string       `json:"email,omitempty"`
	AccessToken string       `json:"-"`
	Metadata    UserMetadata `json:"user_metadata"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type sessionKey struct{}

// ContextWithSession returns a child context carrying s.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored by ContextWithSession.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
