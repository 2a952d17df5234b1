package domain

import (
	"reflect"
	"slices"
)

// WorkspaceDiff represents the changes between two workspaces.
// It is designed to be serialized to JSON for partial updates on the client.
type WorkspaceDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Step       *Step            `json:"step,omitempty"`
	Onboarding *OnboardingState `json:"onboarding,omitempty"`
	Filter     *CompanyFilter   `json:"filter,omitempty"`
	Selection  *Selection       `json:"selection,omitempty"`

	// Milestones holds only the milestones whose completion or content changed.
	Milestones []Milestone `json:"milestones,omitempty"`

	// Cleared lists sections that were dropped ("onboarding", "selector", "roadmap").
	Cleared []string `json:"cleared,omitempty"`
}

// Diff calculates the difference between oldWS and newWS.
// If oldWS is nil, it returns a diff representing the entire newWS (initial load).
func Diff(oldWS, newWS *Workspace) *WorkspaceDiff {
	if newWS == nil {
		return nil
	}
	if oldWS == nil {
		oldWS = &Workspace{}
	}

	diff := &WorkspaceDiff{SessionID: newWS.SessionID}

	// 1. Onboarding
	switch {
	case newWS.Onboarding == nil && oldWS.Onboarding != nil:
		diff.Cleared = append(diff.Cleared, "onboarding")
	case newWS.Onboarding != nil:
		o := oldWS.Onboarding
		if o == nil || o.Step != newWS.Onboarding.Step {
			step := newWS.Onboarding.Step
			diff.Step = &step
		}
		if o == nil || !reflect.DeepEqual(o.State, newWS.Onboarding.State) {
			st := newWS.Onboarding.State
			diff.Onboarding = &st
		}
	}

	// 2. Selector
	switch {
	case newWS.Selector == nil && oldWS.Selector != nil:
		diff.Cleared = append(diff.Cleared, "selector")
	case newWS.Selector != nil:
		s := oldWS.Selector
		if s == nil || !reflect.DeepEqual(s.Filter, newWS.Selector.Filter) {
			f := newWS.Selector.Filter
			diff.Filter = &f
		}
		if s == nil || !slices.Equal(s.Selection.IDs, newWS.Selector.Selection.IDs) {
			sel := Selection{IDs: append([]string{}, newWS.Selector.Selection.IDs...)}
			diff.Selection = &sel
		}
	}

	// 3. Roadmap
	switch {
	case newWS.Roadmap == nil && oldWS.Roadmap != nil:
		diff.Cleared = append(diff.Cleared, "roadmap")
	case newWS.Roadmap != nil:
		diff.Milestones = diffMilestones(oldWS.Roadmap, newWS.Roadmap)
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffMilestones(old, new *Roadmap) []Milestone {
	if old == nil {
		return append([]Milestone(nil), new.Milestones...)
	}
	prev := make(map[string]Milestone, len(old.Milestones))
	for _, m := range old.Milestones {
		prev[m.ID] = m
	}
	var changed []Milestone
	for _, m := range new.Milestones {
		if p, ok := prev[m.ID]; !ok || !reflect.DeepEqual(p, m) {
			changed = append(changed, m)
		}
	}
	return changed
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *WorkspaceDiff) IsEmpty() bool {
	return d.Step == nil &&
		d.Onboarding == nil &&
		d.Filter == nil &&
		d.Selection == nil &&
		len(d.Milestones) == 0 &&
		len(d.Cleared) == 0
}
