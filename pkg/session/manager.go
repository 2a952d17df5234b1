package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/mentorai/internal/logging"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/ports"
)

const defaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates workspace access, serializing read-modify-write cycles per session.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.WorkspaceStore

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active locks by session ID

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	onDiff  func(context.Context, *domain.WorkspaceDiff)
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDiffHook registers a callback receiving the change produced by each Update.
func WithDiffHook(fn func(context.Context, *domain.WorkspaceDiff)) Option {
	return func(m *Manager) {
		m.onDiff = fn
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new Manager with the given workspace store.
func NewManager(store ports.WorkspaceStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: defaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Load retrieves an existing workspace.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Workspace, error) {
	var ws *domain.Workspace
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		ws, err = m.store.Load(ctx, sessionID)
		return err
	})
	return ws, err
}

// LoadOrStart loads the workspace of sessionID, creating an empty one for userID when absent.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID, userID string) (*domain.Workspace, error) {
	var ws *domain.Workspace
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var (
			fresh bool
			err   error
		)
		if ws, fresh, err = m.loadOrNew(ctx, sessionID, userID); err != nil {
			return err
		}
		if !fresh {
			return nil
		}
		// Persist immediately to reserve the ID
		if err := m.store.Save(ctx, sessionID, ws); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}
		return nil
	})
	return ws, err
}

// loadOrNew returns the stored workspace, or a new unsaved one (fresh) when absent.
func (m *Manager) loadOrNew(ctx context.Context, sessionID, userID string) (ws *domain.Workspace, fresh bool, err error) {
	ws, err = m.store.Load(ctx, sessionID)
	switch {
	case err == nil:
		if ws.UserID != "" && userID != "" && ws.UserID != userID {
			return nil, false, fmt.Errorf("%w: workspace belongs to another user", domain.ErrUnauthenticated)
		}
		return ws, false, nil
	case errors.Is(err, domain.ErrWorkspaceNotFound):
		ws = domain.NewWorkspace(sessionID, userID)
		ws.UpdatedAt = m.now().UTC()
		return ws, true, nil
	default:
		return nil, false, fmt.Errorf("failed to load workspace: %w", err)
	}
}

// Update runs fn on the workspace of sessionID under the session lock and saves the
// result. When fn fails nothing is saved and the error is returned as is.
func (m *Manager) Update(ctx context.Context, sessionID, userID string, fn func(*domain.Workspace) error) (*domain.Workspace, error) {
	var (
		ws   *domain.Workspace
		diff *domain.WorkspaceDiff
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		cur, _, err := m.loadOrNew(ctx, sessionID, userID)
		if err != nil {
			return err
		}
		before := cur.Snapshot()
		if err := fn(cur); err != nil {
			return err
		}
		diff = domain.Diff(before, cur)
		if diff == nil {
			ws = cur
			return nil
		}
		cur.UpdatedAt = m.now().UTC()
		if err := m.store.Save(ctx, sessionID, cur); err != nil {
			return fmt.Errorf("failed to save workspace: %w", err)
		}
		ws = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	if diff != nil && m.onDiff != nil {
		m.onDiff(ctx, diff)
	}
	return ws, nil
}

// Save persists the workspace.
func (m *Manager) Save(ctx context.Context, sessionID string, ws *domain.Workspace) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, ws)
	})
}

// Delete removes the workspace from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying workspace store.
func (m *Manager) Store() ports.WorkspaceStore {
	return m.store
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
