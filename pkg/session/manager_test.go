package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/mentorai/pkg/adapters/memory"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/ports"
	"github.com/aretw0/mentorai/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore adds latency so missing locks would lose updates.
type slowStore struct {
	*memory.Store
}

func (s slowStore) Save(ctx context.Context, sessionID string, ws *domain.Workspace) error {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Save(ctx, sessionID, ws)
}

func (s slowStore) Load(ctx context.Context, sessionID string) (*domain.Workspace, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Load(ctx, sessionID)
}

func TestManager_UpdateSerializesReadModifyWrite(t *testing.T) {
	mgr := session.NewManager(slowStore{memory.NewStore()})
	ctx := context.Background()
	id := "race-test"

	ids := []string{"a", "b", "c"}
	var wg sync.WaitGroup
	for _, cid := range ids {
		wg.Add(1)
		go func(cid string) {
			defer wg.Done()
			_, err := mgr.Update(ctx, id, "u1", func(ws *domain.Workspace) error {
				if ws.Selector == nil {
					ws.Selector = domain.NewSelectorDraft()
				}
				_, err := ws.Selector.Selection.Toggle(cid)
				return err
			})
			assert.NoError(t, err)
		}(cid)
	}
	wg.Wait()

	ws, err := mgr.Load(ctx, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, ws.Selector.Selection.IDs, "no update may be lost")
}

func TestManager_LoadOrStart(t *testing.T) {
	mgr := session.NewManager(slowStore{memory.NewStore()})
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws, err := mgr.LoadOrStart(ctx, id, "u1")
			assert.NoError(t, err)
			assert.NotNil(t, ws)
		}()
	}
	wg.Wait()

	ws, err := mgr.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "u1", ws.UserID)
}

func TestManager_UpdateFailureLeavesStateIntact(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	_, err := mgr.Update(ctx, "s1", "u1", func(ws *domain.Workspace) error {
		ws.Onboarding = &domain.OnboardingDraft{State: domain.NewOnboardingState("Ada")}
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = mgr.Update(ctx, "s1", "u1", func(ws *domain.Workspace) error {
		ws.Onboarding.State.Name = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	ws, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", ws.Onboarding.State.Name)
}

func TestManager_DiffHook(t *testing.T) {
	var diffs []*domain.WorkspaceDiff
	mgr := session.NewManager(memory.NewStore(), session.WithDiffHook(func(_ context.Context, d *domain.WorkspaceDiff) {
		diffs = append(diffs, d)
	}))
	ctx := context.Background()

	_, err := mgr.Update(ctx, "s1", "u1", func(ws *domain.Workspace) error {
		ws.Onboarding = &domain.OnboardingDraft{State: domain.NewOnboardingState("")}
		return nil
	})
	require.NoError(t, err)

	// No-op updates emit nothing.
	_, err = mgr.Update(ctx, "s1", "u1", func(ws *domain.Workspace) error { return nil })
	require.NoError(t, err)

	_, err = mgr.Update(ctx, "s1", "u1", func(ws *domain.Workspace) error {
		ws.Onboarding.Step = domain.StepGoal
		return nil
	})
	require.NoError(t, err)

	require.Len(t, diffs, 2)
	require.NotNil(t, diffs[1].Step)
	assert.Equal(t, domain.StepGoal, *diffs[1].Step)
	assert.Nil(t, diffs[1].Onboarding)
}

func TestManager_RejectsForeignWorkspace(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, err := mgr.LoadOrStart(ctx, "s1", "owner")
	require.NoError(t, err)

	_, err = mgr.Update(ctx, "s1", "intruder", func(ws *domain.Workspace) error { return nil })
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

type countingLocker struct {
	mu     sync.Mutex
	locks  int
	unlock int
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.locks++
	l.mu.Unlock()
	return func(context.Context) error {
		l.mu.Lock()
		l.unlock++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(time.Second))

	_, err := mgr.LoadOrStart(context.Background(), "s1", "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, locker.locks)
	assert.Equal(t, 1, locker.unlock)
}
