package roadmap_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/roadmap"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func companies() []domain.Company {
	return []domain.Company{
		{ID: "a", Name: "Acme"},
		{ID: "b", Name: "Globex"},
	}
}

func TestBuild_FixedMilestones(t *testing.T) {
	r, err := roadmap.Build(companies(), now)
	require.NoError(t, err)

	titles := make([]string, len(r.Milestones))
	for i, m := range r.Milestones {
		titles[i] = m.Title
		assert.Equal(t, i+1, m.Order)
		assert.False(t, m.Completed)
		assert.Len(t, m.Resources, 2)
	}
	want := []string{
		"Master Core Programming Concepts",
		"Develop Technical Skills",
		"Build Projects",
		"Interview Preparation",
		"Apply and Network",
	}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Focus on the specific technical skills required by Acme, Globex.", r.Milestones[1].Description)
	assert.Equal(t, []string{"a", "b"}, r.CompanyIDs)
	assert.Equal(t, now, r.GeneratedAt)
}

func TestBuild_OnlySecondMilestoneDependsOnCompanies(t *testing.T) {
	r1, err := roadmap.Build(companies(), now)
	require.NoError(t, err)
	r2, err := roadmap.Build([]domain.Company{{ID: "z", Name: "Initech"}}, now)
	require.NoError(t, err)

	for i := range r1.Milestones {
		if i == 1 {
			assert.NotEqual(t, r1.Milestones[i].Description, r2.Milestones[i].Description)
			continue
		}
		if diff := cmp.Diff(r1.Milestones[i], r2.Milestones[i]); diff != "" {
			t.Errorf("milestone %d differs (-a +b):\n%s", i+1, diff)
		}
	}
}

func TestBuild_EmptySelection(t *testing.T) {
	_, err := roadmap.Build(nil, now)
	require.ErrorIs(t, err, domain.ErrEmptySelection)
	notice, ok := domain.NoticeFrom(err)
	require.True(t, ok)
	assert.Equal(t, "No companies selected", notice.Title)
}

func TestToggleMilestoneCompletion(t *testing.T) {
	r, err := roadmap.Build(companies(), now)
	require.NoError(t, err)

	done, err := roadmap.ToggleMilestoneCompletion(r, "3")
	require.NoError(t, err)
	assert.True(t, done)
	for _, m := range r.Milestones {
		assert.Equal(t, m.ID == "3", m.Completed, m.ID)
	}

	done, err = roadmap.ToggleMilestoneCompletion(r, "3")
	require.NoError(t, err)
	assert.False(t, done)

	_, err = roadmap.ToggleMilestoneCompletion(r, "42")
	assert.ErrorIs(t, err, domain.ErrMilestoneNotFound)
}

func TestBuild_ResourcesAreNotShared(t *testing.T) {
	r1, _ := roadmap.Build(companies(), now)
	r1.Milestones[0].Resources[0].Title = "changed"

	r2, _ := roadmap.Build(companies(), now)
	assert.Equal(t, "Data Structures and Algorithms", r2.Milestones[0].Resources[0].Title)
}

func TestNewView(t *testing.T) {
	empty := roadmap.NewView(nil)
	require.NotNil(t, empty.Empty)
	assert.Equal(t, "Browse Companies", empty.Empty.Action)
	assert.Nil(t, empty.Roadmap)

	r, _ := roadmap.Build(companies()[:1], now)
	_, _ = roadmap.ToggleMilestoneCompletion(r, "1")
	v := roadmap.NewView(r)
	assert.Nil(t, v.Empty)
	assert.Equal(t, "Based on 1 selected company", v.Subtitle)
	assert.Equal(t, 1, v.Completed)
	assert.Equal(t, 5, v.Total)
}

func TestMarkdown(t *testing.T) {
	r, _ := roadmap.Build(companies(), now)
	_, _ = roadmap.ToggleMilestoneCompletion(r, "2")

	md := roadmap.Markdown(r)
	assert.True(t, strings.HasPrefix(md, "# Your Career Roadmap"))
	assert.Contains(t, md, "Based on 2 selected companies: Acme, Globex.")
	assert.Contains(t, md, "## 2. Develop Technical Skills\n\n- [x]")
	assert.Contains(t, md, "| [Resume Building Workshop](https://example.com/resume) | video |")

	assert.Contains(t, roadmap.Markdown(nil), "# No companies selected")
}
