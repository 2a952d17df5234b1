package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/mentorai/pkg/adapters/memory"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/persistence/middleware"
	"github.com/aretw0/mentorai/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func draft(name string) *domain.Workspace {
	ws := domain.NewWorkspace("sess-1", "user-1")
	ws.Onboarding = &domain.OnboardingDraft{}
	ws.Onboarding.State.Name = name
	return ws
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	secure := mw(underlying)

	require.NoError(t, secure.Save(ctx, "sess-1", draft("Ada Lovelace")))

	stored, err := underlying.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, stored.Onboarding, "drafts must not reach the store in the clear")
	assert.NotEmpty(t, stored.Sealed)
	assert.NotContains(t, string(stored.Sealed), "Lovelace")
	assert.Equal(t, "user-1", stored.UserID)

	loaded, err := secure.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, loaded.Onboarding)
	assert.Equal(t, "Ada Lovelace", loaded.Onboarding.State.Name)
	assert.Empty(t, loaded.Sealed)

	ids, err := secure.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-1"}, ids)

	require.NoError(t, secure.Delete(ctx, "sess-1"))
	_, err = secure.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	mwOld, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, err)
	oldStore := mwOld(underlying)
	require.NoError(t, oldStore.Save(ctx, "sess-1", draft("old")))

	mwNew, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	require.NoError(t, err)
	newStore := mwNew(underlying)

	loaded, err := newStore.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "old", loaded.Onboarding.State.Name)

	loaded.Onboarding.State.Name = "new"
	require.NoError(t, newStore.Save(ctx, "sess-1", loaded))

	_, err = oldStore.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, middleware.ErrSealed)
}

func TestEncryptionMiddleware_RejectsPlainDrafts(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, "sess-1", draft("plain")))

	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	_, err = mw(underlying).Load(ctx, "sess-1")
	assert.ErrorIs(t, err, middleware.ErrSealed)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.WorkspaceStore) ports.WorkspaceStore {
			order = append(order, name)
			return next
		}
	}
	middleware.Chain(memory.NewStore(), tag("outer"), tag("inner"))
	assert.Equal(t, []string{"inner", "outer"}, order)
}
