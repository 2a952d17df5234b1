package mentorai_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/mentorai"
	"github.com/aretw0/mentorai/pkg/adapters/memory"
	"github.com/aretw0/mentorai/pkg/credentials"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/onboarding"
	"github.com/aretw0/mentorai/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) (*mentorai.App, *memory.Backend) {
	t.Helper()
	b := memory.NewBackend()
	b.PutCompanies(
		domain.Company{ID: "a", Name: "Acme", Position: "Backend Engineer", Domain: "X", UGCompensation: 10, DSALevel: 1},
		domain.Company{ID: "b", Name: "Globex", Position: "Data Scientist", Domain: "Y", UGCompensation: 90, DSALevel: 3},
	)
	app := mentorai.New(mentorai.Backend{
		Profiles:  b,
		Companies: b.Companies(),
		Settings:  b.Settings(),
		Credentials: credentials.Stores{
			Education:      b.Education,
			Experiences:    b.Experiences,
			Certifications: b.Certifications,
			Projects:       b.Projects,
			Skills:         b.Skills,
			Files:          b,
		},
		Feed:     b.Feed,
		Verifier: b,
		Revoker:  b,
	}, session.NewManager(memory.NewStore()))
	return app, b
}

func login(t *testing.T, app *mentorai.App, b *memory.Backend, meta domain.UserMetadata) *domain.Session {
	t.Helper()
	b.AddSession("tok-1", domain.Session{ID: "s1", UserID: "u1", Metadata: meta})
	sess, err := app.Authenticate(context.Background(), "tok-1")
	require.NoError(t, err)
	return sess
}

func TestApp_Authenticate(t *testing.T) {
	app, _ := newApp(t)
	_, err := app.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = app.Authenticate(context.Background(), "forged")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestApp_OnboardingFlowUnlocksSelector(t *testing.T) {
	ctx := context.Background()
	app, b := newApp(t)
	sess := login(t, app, b, domain.UserMetadata{FullName: "Ada"})

	_, err := app.Selector(ctx, sess)
	require.ErrorIs(t, err, domain.ErrNotOnboarded)

	view, err := app.Onboarding(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, onboarding.NameStep{Name: "Ada"}, view.View)
	assert.Equal(t, 5, view.TotalSteps)

	steps := []mentorai.OnboardingAction{
		{Type: "next"},
		{Type: "set_goal", Value: "Become a tech lead"},
		{Type: "next"},
		{Type: "set_level", Value: "intermediate"},
		{Type: "next"},
		{Type: "toggle_domain", Value: "software-engineering"},
		{Type: "next"},
	}
	for _, act := range steps {
		_, err := app.Onboard(ctx, sess, act)
		require.NoError(t, err, act.Type)
	}

	res, err := app.Onboard(ctx, sess, mentorai.OnboardingAction{Type: "next"})
	require.NoError(t, err)
	assert.True(t, res.Outcome.Submitted)
	assert.Equal(t, "/profile", res.Outcome.Redirect)
	assert.Equal(t, 1, b.Calls("profile.update"))

	// The token still says "not onboarded"; the stored profile wins.
	_, err = app.Onboarding(ctx, sess)
	assert.ErrorIs(t, err, domain.ErrAlreadyOnboarded)

	sv, err := app.Selector(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, sv.Companies, 2)
	assert.Equal(t, []string{"X", "Y"}, sv.Domains)
}

func TestApp_ValidationKeepsStep(t *testing.T) {
	ctx := context.Background()
	app, b := newApp(t)
	sess := login(t, app, b, domain.UserMetadata{})

	res, err := app.Onboard(ctx, sess, mentorai.OnboardingAction{Type: "next"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.StepName, res.Step)

	_, err = app.Onboard(ctx, sess, mentorai.OnboardingAction{Type: "dance"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = app.Onboard(ctx, sess, mentorai.OnboardingAction{Type: "set_name", Value: strings.Repeat("a", 5000)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	res, err = app.Onboard(ctx, sess, mentorai.OnboardingAction{Type: "set_name", Value: "\x1b[1mAda\x1b[0m"})
	require.NoError(t, err)
	assert.Equal(t, onboarding.NameStep{Name: "[1mAda[0m"}, res.View)
}

func TestApp_SelectGenerateAndToggle(t *testing.T) {
	ctx := context.Background()
	app, b := newApp(t)
	sess := login(t, app, b, domain.UserMetadata{Onboarded: true})

	rv, err := app.Roadmap(ctx, sess)
	require.NoError(t, err)
	require.NotNil(t, rv.Empty)

	res, err := app.Select(ctx, sess, mentorai.SelectorAction{Type: "generate"})
	require.ErrorIs(t, err, domain.ErrEmptySelection)
	assert.Empty(t, res.Selected)

	res, err = app.Select(ctx, sess, mentorai.SelectorAction{Type: "salary", Min: 0, Max: 50})
	require.NoError(t, err)
	require.Len(t, res.Companies, 1)
	assert.Equal(t, "a", res.Companies[0].ID)

	res, err = app.Select(ctx, sess, mentorai.SelectorAction{Type: "toggle", Value: "b"})
	require.NoError(t, err)
	require.NotNil(t, res.Added)
	assert.True(t, *res.Added)
	assert.Equal(t, []string{"b"}, res.Selected)

	res, err = app.Select(ctx, sess, mentorai.SelectorAction{Type: "generate"})
	require.NoError(t, err)
	require.NotNil(t, res.Roadmap)
	assert.Equal(t, "Roadmap generated!", res.Notice.Title)

	rv, err = app.ToggleMilestone(ctx, sess, "2")
	require.NoError(t, err)
	assert.Equal(t, 1, rv.Completed)
	assert.Equal(t, "Focus on the specific technical skills required by Globex.", rv.Roadmap.Milestones[1].Description)

	_, err = app.ToggleMilestone(ctx, sess, "9")
	assert.ErrorIs(t, err, domain.ErrMilestoneNotFound)

	require.NoError(t, app.SignOut(ctx, sess))
	rv, err = app.Roadmap(ctx, sess)
	require.NoError(t, err)
	assert.NotNil(t, rv.Empty, "drafts are dropped on sign-out")

	_, err = app.Authenticate(ctx, "tok-1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestApp_BuildRoadmap(t *testing.T) {
	app, _ := newApp(t)
	ctx := context.Background()

	r, err := app.BuildRoadmap(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Globex"}, r.CompanyNames)

	_, err = app.BuildRoadmap(ctx, []string{"a", "b", "a", "b"})
	assert.ErrorIs(t, err, domain.ErrSelectionLimit)

	_, err = app.BuildRoadmap(ctx, []string{"a", "a"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	notice, ok := domain.NoticeFrom(err)
	require.True(t, ok)
	assert.Equal(t, "Company selected twice", notice.Title)

	_, err = app.BuildRoadmap(ctx, []string{"b", "a", "b"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = app.BuildRoadmap(ctx, []string{"zzz"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = app.BuildRoadmap(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}
