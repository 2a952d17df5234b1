package selector_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/selector"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog() []domain.Company {
	return []domain.Company{
		{ID: "a", Name: "Acme", Position: "Backend Engineer", Domain: "X", UGCompensation: 10, DSALevel: 2},
		{ID: "b", Name: "Globex", Position: "Data Scientist", Domain: "Y", UGCompensation: 90, DSALevel: 3},
		{ID: "c", Name: "Initech", Position: "Frontend Engineer", Domain: "X", UGCompensation: 40, DSALevel: 1},
		{ID: "d", Name: "Umbrella", Position: "SRE", Domain: "Z", UGCompensation: 50, DSALevel: 2},
		{ID: "e", Name: "Hooli", Position: "Backend engineer", Domain: "Y", UGCompensation: 100, DSALevel: 2},
	}
}

func ids(cs []domain.Company) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestSelector_SalaryExample(t *testing.T) {
	s := selector.New(nil, []domain.Company{
		{ID: "a", Domain: "X", UGCompensation: 10},
		{ID: "b", Domain: "Y", UGCompensation: 90},
	})
	require.NoError(t, s.SetSalaryRange(0, 50))
	assert.Equal(t, []string{"a"}, ids(s.Visible()))
}

func TestSelector_Filters(t *testing.T) {
	s := selector.New(nil, catalog())
	assert.Len(t, s.Visible(), 5)

	s.SetSearchTerm("BACKEND")
	assert.Equal(t, []string{"a", "e"}, ids(s.Visible()))

	s.SetDomainFilter("Y")
	assert.Equal(t, []string{"e"}, ids(s.Visible()))

	require.NoError(t, s.SetSalaryRange(0, 99.5))
	assert.Empty(t, s.Visible())

	s.ResetFilters()
	require.NoError(t, s.SetDSALevel(2))
	assert.Equal(t, []string{"a", "d", "e"}, ids(s.Visible()))

	require.NoError(t, s.SetSalaryRange(50, 100))
	assert.Equal(t, []string{"d", "e"}, ids(s.Visible()), "bounds are inclusive")

	s.SetDomainFilter("all")
	require.NoError(t, s.SetDSALevel(0))
	assert.Nil(t, s.Filter().Domain)
	assert.Nil(t, s.Filter().DSALevel)
}

func TestSelector_SearchTermIsLiteral(t *testing.T) {
	s := selector.New(nil, catalog())

	s.SetSearchTerm("  acme")
	assert.Empty(t, s.Visible(), "surrounding spaces are part of the term")
	assert.Equal(t, "  acme", s.Filter().SearchTerm)

	s.SetSearchTerm(" engineer")
	assert.Equal(t, []string{"a", "c", "e"}, ids(s.Visible()))
}

func TestSelector_InvalidFilters(t *testing.T) {
	s := selector.New(nil, catalog())
	assert.ErrorIs(t, s.SetSalaryRange(60, 10), domain.ErrValidation)
	assert.ErrorIs(t, s.SetDSALevel(4), domain.ErrValidation)
	assert.Equal(t, domain.NewCompanyFilter(), s.Filter())
}

func TestSelector_FilteringDoesNotMutateCatalog(t *testing.T) {
	src := catalog()
	s := selector.New(nil, src)
	s.SetSearchTerm("acme")
	_ = s.Visible()

	if diff := cmp.Diff(catalog(), src); diff != "" {
		t.Errorf("catalog mutated (-want +got):\n%s", diff)
	}
}

func TestFilter_PredicatesCommute(t *testing.T) {
	d := "X"
	lvl := 2
	f := domain.CompanyFilter{
		SearchTerm:  "engineer",
		Domain:      &d,
		SalaryRange: [2]float64{0, 50},
		DSALevel:    &lvl,
	}
	preds := f.Predicates()
	require.Len(t, preds, 4)
	want := ids(domain.Filter(catalog(), preds...))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		perm := rng.Perm(len(preds))
		shuffled := make([]domain.Predicate, len(preds))
		for j, p := range perm {
			shuffled[j] = preds[p]
		}
		assert.Equal(t, want, ids(domain.Filter(catalog(), shuffled...)), "order %v", perm)
	}

	// Applying one predicate at a time in sequence matches applying them together.
	step := catalog()
	for _, p := range []int{3, 1, 0, 2} {
		step = domain.Filter(step, preds[p])
	}
	assert.Equal(t, want, ids(step))
}

func TestSelector_SelectionLimit(t *testing.T) {
	ctx := context.Background()
	var rejected int
	hooks := domain.LifecycleHooks{OnTransition: func(_ context.Context, e *domain.FlowEvent) {
		if e.Rejected {
			rejected++
		}
	}}
	s := selector.New(nil, catalog(), selector.WithHooks(hooks))

	var notices []domain.Notice
	for _, id := range []string{"a", "b", "c", "d"} {
		_, err := s.ToggleCompanySelection(ctx, id)
		if n, ok := domain.NoticeFrom(err); ok {
			notices = append(notices, n)
		}
	}

	assert.Equal(t, []string{"a", "b", "c"}, s.Draft().Selection.IDs)
	require.Len(t, notices, 1)
	assert.Equal(t, "Maximum selection reached", notices[0].Title)
	assert.Equal(t, 1, rejected)
}

func TestSelector_SelectionNeverExceedsLimit(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	all := ids(catalog())

	for round := 0; round < 20; round++ {
		s := selector.New(nil, catalog())
		for i := 0; i < 200; i++ {
			_, err := s.ToggleCompanySelection(ctx, all[rng.Intn(len(all))])
			if err != nil {
				require.ErrorIs(t, err, domain.ErrSelectionLimit)
			}
			require.LessOrEqual(t, s.Draft().Selection.Len(), domain.MaxSelection, fmt.Sprintf("round %d step %d", round, i))
		}
	}
}

func TestSelector_ToggleRemovesAndUnknown(t *testing.T) {
	ctx := context.Background()
	s := selector.New(nil, catalog())

	added, err := s.ToggleCompanySelection(ctx, "b")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.ToggleCompanySelection(ctx, "b")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Zero(t, s.Draft().Selection.Len())

	_, err = s.ToggleCompanySelection(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSelector_DomainsAndSelected(t *testing.T) {
	ctx := context.Background()
	s := selector.New(nil, catalog())
	assert.Equal(t, []string{"X", "Y", "Z"}, s.Domains())

	_, _ = s.ToggleCompanySelection(ctx, "d")
	_, _ = s.ToggleCompanySelection(ctx, "a")
	assert.Equal(t, []string{"d", "a"}, ids(s.Selected()))
}

func TestSelector_Generate(t *testing.T) {
	ctx := context.Background()
	s := selector.New(nil, catalog())

	_, err := s.Generate(ctx)
	require.ErrorIs(t, err, domain.ErrEmptySelection)

	_, _ = s.ToggleCompanySelection(ctx, "a")
	_, _ = s.ToggleCompanySelection(ctx, "b")
	r, err := s.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Globex"}, r.CompanyNames)
	assert.Len(t, r.Milestones, 5)
}

func TestSelector_Leave(t *testing.T) {
	ctx := context.Background()
	s := selector.New(nil, catalog())
	_, _ = s.ToggleCompanySelection(ctx, "a")
	s.SetSearchTerm("acme")

	s.Leave()
	assert.Zero(t, s.Draft().Selection.Len())
	assert.Equal(t, "acme", s.Filter().SearchTerm)
}
