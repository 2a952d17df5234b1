package domain

import "time"

// Workspace is the draft flow state of one session. It lives only as long as
// the session (or the store TTL) and is never written to the hosted backend.
type Workspace struct {
	SessionID  string           `json:"session_id"`
	UserID     string           `json:"user_id"`
	Onboarding *OnboardingDraft `json:"onboarding,omitempty"`
	Selector   *SelectorDraft   `json:"selector,omitempty"`
	Roadmap    *Roadmap         `json:"roadmap,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// Sealed holds the encrypted drafts when the store encrypts at rest.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewWorkspace creates an empty workspace for a session.
func NewWorkspace(sessionID, userID string) *Workspace {
	return &Workspace{
		SessionID: sessionID,
		UserID:    userID,
		UpdatedAt: time.Now().UTC(),
	}
}

// Snapshot returns a deep copy so callers cannot mutate stored state by pointer.
func (w *Workspace) Snapshot() *Workspace {
	if w == nil {
		return nil
	}
	c := *w
	if w.Onboarding != nil {
		o := *w.Onboarding
		o.State.PreferredDomains = append([]string{}, w.Onboarding.State.PreferredDomains...)
		c.Onboarding = &o
	}
	if w.Selector != nil {
		s := *w.Selector
		if w.Selector.Filter.Domain != nil {
			d := *w.Selector.Filter.Domain
			s.Filter.Domain = &d
		}
		if w.Selector.Filter.DSALevel != nil {
			l := *w.Selector.Filter.DSALevel
			s.Filter.DSALevel = &l
		}
		s.Selection.IDs = append([]string(nil), w.Selector.Selection.IDs...)
		c.Selector = &s
	}
	if w.Roadmap != nil {
		r := *w.Roadmap
		r.CompanyIDs = append([]string(nil), w.Roadmap.CompanyIDs...)
		r.CompanyNames = append([]string(nil), w.Roadmap.CompanyNames...)
		r.Milestones = make([]Milestone, len(w.Roadmap.Milestones))
		for i, m := range w.Roadmap.Milestones {
			m.Resources = append([]Resource(nil), m.Resources...)
			r.Milestones[i] = m
		}
		c.Roadmap = &r
	}
	return &c
}
