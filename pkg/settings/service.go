// Package settings manages the per-user settings row: three toggles saved with
// insert-or-update semantics and refetched after a failed save or a remote change.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/mentorai/internal/logging"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/ports"
)

// Table is the remote table the settings live in.
const Table = "user_settings"

var (
	// NoticeSaved is shown after a successful save.
	NoticeSaved = domain.Info("Settings updated", "Your preferences have been saved successfully.")

	noticeSaveFailed = domain.Warning("Error saving settings", "Your settings could not be saved. Please try again.")
	noticeLoadFailed = domain.Warning("Error loading settings", "Your settings could not be loaded. Please try again later.")
)

// Result is the outcome of a save: the settings to display and the notice to show.
type Result struct {
	Settings domain.Settings `json:"settings"`
	Notice   domain.Notice   `json:"notice"`
}

// Service reads and writes settings through a ports.SettingsStore.
type Service struct {
	store  ports.SettingsStore
	feed   ports.ChangeFeed
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithFeed enables Watch.
func WithFeed(feed ports.ChangeFeed) Option {
	return func(s *Service) { s.feed = feed }
}

// WithLogger configures a logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(store ports.SettingsStore, opts ...Option) *Service {
	s := &Service{store: store, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the settings of userID. A user without a row gets all toggles off
// and an empty ID; the row is created on the first save.
func (s *Service) Load(ctx context.Context, userID string) (domain.Settings, error) {
	cur, err := s.store.Get(ctx, userID)
	switch {
	case err == nil:
		return *cur, nil
	case errors.Is(err, domain.ErrNotFound):
		s.logger.DebugContext(ctx, "No settings found for user, will create on first update", "user_id", userID)
		return domain.Settings{UserID: userID}, nil
	default:
		s.logger.ErrorContext(ctx, "Error fetching user settings", "user_id", userID, "err", err)
		return domain.Settings{UserID: userID}, domain.WithNotice(fmt.Errorf("load settings: %w", err), noticeLoadFailed)
	}
}

// Save writes next: update when it has an ID, insert otherwise. On failure the
// stored settings are refetched and returned alongside the error.
func (s *Service) Save(ctx context.Context, next domain.Settings) (Result, error) {
	var err error
	if next.ID != "" {
		next.UpdatedAt = s.now().UTC()
		err = s.store.Update(ctx, next)
	} else {
		var id string
		if id, err = s.store.Insert(ctx, next); err == nil {
			next.ID = id
		}
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving user settings", "user_id", next.UserID, "err", err)
		restored, lerr := s.Load(ctx, next.UserID)
		if lerr != nil {
			s.logger.WarnContext(ctx, "Refetch after failed save also failed", "user_id", next.UserID, "err", lerr)
		}
		return Result{Settings: restored, Notice: noticeSaveFailed},
			domain.WithNotice(fmt.Errorf("save settings: %w", err), noticeSaveFailed)
	}
	return Result{Settings: next, Notice: NoticeSaved}, nil
}

// Toggle sets one switch of userID's settings and saves.
func (s *Service) Toggle(ctx context.Context, userID string, key domain.SettingKey, value bool) (Result, error) {
	cur, err := s.Load(ctx, userID)
	if err != nil {
		return Result{Settings: cur}, err
	}
	next, err := cur.With(key, value)
	if err != nil {
		return Result{Settings: cur}, fmt.Errorf("%w: unknown setting %q", err, key)
	}
	return s.Save(ctx, next)
}

// Watch calls fn with freshly loaded settings after every remote change to
// userID's row, until ctx is done.
func (s *Service) Watch(ctx context.Context, userID string, fn func(domain.Settings)) error {
	if s.feed == nil {
		return errors.New("settings: no change feed configured")
	}
	events, err := s.feed.Subscribe(ctx, Table, userID)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", Table, err)
	}
	for range events {
		cur, err := s.Load(ctx, userID)
		if err != nil {
			continue
		}
		fn(cur)
	}
	return ctx.Err()
}
