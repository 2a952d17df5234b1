// Package selector implements the company browser: derived filtering over the
// catalog and a pick list of at most three companies that feeds the roadmap.
package selector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/roadmap"
)

var (
	// NoticeLimit is shown when a fourth company is picked.
	NoticeLimit = domain.Warning("Maximum selection reached", "You can select up to 3 companies for roadmap generation")

	noticeUnknownCompany = domain.Warning("Unknown company", "The company is no longer listed")
	noticeBadSalary      = domain.Warning("Invalid salary range", "The minimum must not exceed the maximum")
	noticeBadDSA         = domain.Warning("Invalid DSA level", "Choose a level between 1 and 3")
)

// Selector operates on a draft against a fetched catalog. The catalog slice is never modified.
type Selector struct {
	draft     *domain.SelectorDraft
	companies []domain.Company
	hooks     domain.LifecycleHooks
	sessionID string
	now       func() time.Time
}

// Option configures a Selector.
type Option func(*Selector)

// WithHooks sets the lifecycle hooks notified on selection changes.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(s *Selector) { s.hooks = h }
}

// WithSessionID tags emitted events with the session.
func WithSessionID(id string) Option {
	return func(s *Selector) { s.sessionID = id }
}

// WithClock overrides time.Now for roadmap timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) { s.now = now }
}

// New wraps draft. A nil draft starts with default filters and no selection.
func New(draft *domain.SelectorDraft, companies []domain.Company, opts ...Option) *Selector {
	if draft == nil {
		draft = domain.NewSelectorDraft()
	}
	s := &Selector{draft: draft, companies: companies, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draft returns the draft being edited.
func (s *Selector) Draft() *domain.SelectorDraft { return s.draft }

// Filter returns the active filter.
func (s *Selector) Filter() domain.CompanyFilter { return s.draft.Filter }

// SetSearchTerm filters on company name or position, case-insensitively. The
// term is matched as typed, surrounding spaces included.
func (s *Selector) SetSearchTerm(term string) {
	s.draft.Filter.SearchTerm = term
}

// SetDomainFilter keeps one domain. An empty value (or "all") clears it.
func (s *Selector) SetDomainFilter(d string) {
	d = strings.TrimSpace(d)
	if d == "" || strings.EqualFold(d, "all") {
		s.draft.Filter.Domain = nil
		return
	}
	s.draft.Filter.Domain = &d
}

// SetSalaryRange bounds ug_compensation, inclusive on both ends.
func (s *Selector) SetSalaryRange(lo, hi float64) error {
	if lo > hi {
		return domain.WithNotice(fmt.Errorf("%w: salary range [%v,%v]", domain.ErrValidation, lo, hi), noticeBadSalary)
	}
	s.draft.Filter.SalaryRange = [2]float64{lo, hi}
	return nil
}

// SetDSALevel keeps companies of one DSA level. Zero clears it.
func (s *Selector) SetDSALevel(level int) error {
	if level == 0 {
		s.draft.Filter.DSALevel = nil
		return nil
	}
	if level < 1 || level > 3 {
		return domain.WithNotice(fmt.Errorf("%w: dsa level %d", domain.ErrValidation, level), noticeBadDSA)
	}
	s.draft.Filter.DSALevel = &level
	return nil
}

// ResetFilters restores the default filters. The selection is kept.
func (s *Selector) ResetFilters() {
	s.draft.Filter = domain.NewCompanyFilter()
}

// Visible returns the catalog entries matching every active filter.
func (s *Selector) Visible() []domain.Company {
	return s.draft.Filter.Apply(s.companies)
}

// Domains lists the catalog's distinct domains for the domain filter.
func (s *Selector) Domains() []string {
	return domain.DistinctDomains(s.companies)
}

// Selected returns the picked companies in pick order.
func (s *Selector) Selected() []domain.Company {
	return domain.CompaniesByID(s.companies, s.draft.Selection.IDs)
}

// ToggleCompanySelection picks id, or unpicks it when already picked. A fourth
// pick is rejected with NoticeLimit and leaves the selection untouched.
func (s *Selector) ToggleCompanySelection(ctx context.Context, id string) (bool, error) {
	if !s.draft.Selection.Contains(id) && !s.known(id) {
		return false, domain.WithNotice(fmt.Errorf("%w: company %q", domain.ErrNotFound, id), noticeUnknownCompany)
	}
	added, err := s.draft.Selection.Toggle(id)
	s.hooks.Emit(ctx, &domain.FlowEvent{
		Timestamp: s.now().UTC(),
		SessionID: s.sessionID,
		Flow:      "selector",
		Action:    "toggle",
		To:        id,
		Rejected:  err != nil,
	})
	if err != nil {
		return false, domain.WithNotice(err, NoticeLimit)
	}
	return added, nil
}

// Generate builds the roadmap for the current selection.
func (s *Selector) Generate(ctx context.Context) (*domain.Roadmap, error) {
	r, err := roadmap.Build(s.Selected(), s.now())
	s.hooks.Emit(ctx, &domain.FlowEvent{
		Timestamp: s.now().UTC(),
		SessionID: s.sessionID,
		Flow:      "roadmap",
		Action:    "build",
		Rejected:  err != nil,
	})
	return r, err
}

// Leave forgets the selection; used when the user navigates away without generating.
func (s *Selector) Leave() {
	s.draft.Selection.Clear()
}

func (s *Selector) known(id string) bool {
	for _, c := range s.companies {
		if c.ID == id {
			return true
		}
	}
	return false
}
