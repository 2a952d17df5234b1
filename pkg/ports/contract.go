package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunWorkspaceStoreContract runs a suite of tests to verify that a WorkspaceStore
// implementation adheres to the defined interface contract.
func RunWorkspaceStoreContract(t *testing.T, store WorkspaceStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		ws := domain.NewWorkspace(sessionID, "user-1")
		ws.Onboarding = &domain.OnboardingDraft{
			Step:  domain.StepDomains,
			State: domain.NewOnboardingState("Ada"),
		}
		ws.Onboarding.State.ToggleDomain("software-engineering")
		ws.Selector = domain.NewSelectorDraft()
		_, err := ws.Selector.Selection.Toggle("a")
		require.NoError(t, err)

		require.NoError(t, store.Save(ctx, sessionID, ws), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "user-1", loaded.UserID)
		require.NotNil(t, loaded.Onboarding)
		assert.Equal(t, domain.StepDomains, loaded.Onboarding.Step)
		assert.Equal(t, "Ada", loaded.Onboarding.State.Name)
		assert.Equal(t, []string{"software-engineering"}, loaded.Onboarding.State.PreferredDomains)
		require.NotNil(t, loaded.Selector)
		assert.Equal(t, []string{"a"}, loaded.Selector.Selection.IDs)
		assert.Equal(t, domain.DefaultSalaryRange, loaded.Selector.Filter.SalaryRange)
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Onboarding.State.Name = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", again.Onboarding.State.Name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewWorkspace(sessionID, "user-1")))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound, "Load after Delete should return ErrWorkspaceNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewWorkspace(id1, "user-1"))
		_ = store.Save(ctx, id2, domain.NewWorkspace(id2, "user-2"))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
