package credentials_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/mentorai/pkg/adapters/memory"
	"github.com/aretw0/mentorai/pkg/credentials"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.UnixMilli(1700000000000)

func newService(b *memory.Backend) *credentials.Service {
	return credentials.NewService(credentials.Stores{
		Education:      b.Education,
		Experiences:    b.Experiences,
		Certifications: b.Certifications,
		Projects:       b.Projects,
		Skills:         b.Skills,
		Files:          b,
	}, credentials.WithClock(func() time.Time { return at }))
}

func TestService_EducationValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.NewBackend())

	_, err := svc.AddEducation(ctx, "u1", domain.Education{School: "MIT"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "degree, start_date")

	saved, err := svc.AddEducation(ctx, "u1", domain.Education{School: "MIT", Degree: "BSc", StartDate: "2020-09-01", UserID: "spoofed"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "u1", saved.UserID)

	rows, err := svc.ListEducation(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, svc.DeleteEducation(ctx, "u1", saved.ID))
	rows, _ = svc.ListEducation(ctx, "u1")
	assert.Empty(t, rows)
}

func TestService_CurrentExperienceHasNoEndDate(t *testing.T) {
	svc := newService(memory.NewBackend())
	saved, err := svc.AddExperience(context.Background(), "u1", domain.Experience{
		Title: "SRE", Company: "Acme", StartDate: "2022-01-01", EndDate: "2023-01-01", Current: true,
	})
	require.NoError(t, err)
	assert.Empty(t, saved.EndDate)
}

func TestService_CertificationFileLifecycle(t *testing.T) {
	ctx := context.Background()
	b := memory.NewBackend()
	svc := newService(b)

	saved, err := svc.AddCertification(ctx, "u1",
		domain.Certification{Name: "CKA", Issuer: "CNCF", IssueDate: "2024-05-01"},
		&credentials.File{Name: "../cka.pdf", ContentType: "application/pdf", Body: strings.NewReader("%PDF")},
	)
	require.NoError(t, err)
	assert.Equal(t, "certifications/u1/1700000000000_cka.pdf", saved.FilePath)
	assert.Equal(t, "memory://cert/certifications/u1/1700000000000_cka.pdf", saved.FileURL)

	_, ok := b.Object(credentials.Bucket, saved.FilePath)
	require.True(t, ok)

	require.NoError(t, svc.DeleteCertification(ctx, "u1", saved.ID))
	_, ok = b.Object(credentials.Bucket, saved.FilePath)
	assert.False(t, ok, "file is deleted with the row")

	rows, _ := svc.ListCertifications(ctx, "u1")
	assert.Empty(t, rows)
}

func TestService_DeleteCertificationOfAnotherUser(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.NewBackend())
	saved, err := svc.AddCertification(ctx, "u1", domain.Certification{Name: "A", Issuer: "B", IssueDate: "2024"}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteCertification(ctx, "u2", saved.ID), domain.ErrNotFound)
	rows, _ := svc.ListCertifications(ctx, "u1")
	assert.Len(t, rows, 1)
}

type failingInsert struct {
	ports.Collection[domain.Certification]
}

func (failingInsert) Insert(context.Context, domain.Certification) (domain.Certification, error) {
	return domain.Certification{}, errors.New("insert refused")
}

func TestService_FailedInsertRemovesUpload(t *testing.T) {
	b := memory.NewBackend()
	svc := credentials.NewService(credentials.Stores{
		Certifications: failingInsert{b.Certifications},
		Files:          b,
	}, credentials.WithClock(func() time.Time { return at }))

	_, err := svc.AddCertification(context.Background(), "u1",
		domain.Certification{Name: "A", Issuer: "B", IssueDate: "2024"},
		&credentials.File{Name: "a.png", Body: strings.NewReader("x")},
	)
	require.Error(t, err)
	assert.Equal(t, 1, b.Calls("storage.remove"))
	_, ok := b.Object(credentials.Bucket, "certifications/u1/1700000000000_a.png")
	assert.False(t, ok)
}

func TestUploadPath(t *testing.T) {
	assert.Equal(t, "certifications/u/1700000000000_x.pdf", credentials.UploadPath("u", `C:\tmp\x.pdf`, at))
	assert.Equal(t, "certifications/u/1700000000000_file", credentials.UploadPath("u", "", at))
}
