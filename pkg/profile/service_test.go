package profile_test

import (
	"context"
	"testing"

	"github.com/aretw0/mentorai/pkg/adapters/memory"
	"github.com/aretw0/mentorai/pkg/credentials"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(b *memory.Backend) *profile.Service {
	creds := credentials.NewService(credentials.Stores{
		Education:      b.Education,
		Experiences:    b.Experiences,
		Certifications: b.Certifications,
		Projects:       b.Projects,
		Skills:         b.Skills,
		Files:          b,
	})
	return profile.NewService(b, creds)
}

func TestService_Public(t *testing.T) {
	ctx := context.Background()
	b := memory.NewBackend()
	b.PutProfile(domain.Profile{ID: "u1", Username: "ada", FullName: "Ada Lovelace", Email: "ada@example.com"})
	b.PutProfile(domain.Profile{ID: "u2", Username: "bob"})

	_, err := b.Experiences.Insert(ctx, domain.Experience{UserID: "u1", Title: "Engineer", Company: "Analytical", StartDate: "1843"})
	require.NoError(t, err)
	_, err = b.Skills.Insert(ctx, domain.Skill{UserID: "u1", Name: "Math", Level: 5})
	require.NoError(t, err)
	_, err = b.Skills.Insert(ctx, domain.Skill{UserID: "u2", Name: "Other"})
	require.NoError(t, err)

	page, err := newService(b).Public(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", page.Profile.FullName)
	assert.Empty(t, page.Profile.Email)
	assert.Len(t, page.Experiences, 1)
	require.Len(t, page.Skills, 1)
	assert.Equal(t, "Math", page.Skills[0].Name)
	assert.NotNil(t, page.Education)
	assert.Empty(t, page.Education)
}

func TestService_PublicUnknownUser(t *testing.T) {
	_, err := newService(memory.NewBackend()).Public(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
