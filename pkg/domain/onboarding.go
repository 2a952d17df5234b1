package domain

import (
	"fmt"
	"slices"
	"strings"
)

// ExperienceLevel is the self-reported seniority collected on step 2.
type ExperienceLevel string

const (
	LevelBeginner     ExperienceLevel = "beginner"
	LevelIntermediate ExperienceLevel = "intermediate"
	LevelAdvanced     ExperienceLevel = "advanced"
)

// ParseExperienceLevel validates a raw level value.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	switch l := ExperienceLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return l, nil
	default:
		return "", fmt.Errorf("%w: unknown experience level %q", ErrValidation, s)
	}
}

// DomainOption is one entry of the fixed preferred-domain catalog.
type DomainOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Domains is the catalog offered on step 3, in display order.
var Domains = []DomainOption{
	{ID: "software-engineering", Name: "Software Engineering"},
	{ID: "data-science", Name: "Data Science"},
	{ID: "cybersecurity", Name: "Cybersecurity"},
	{ID: "product-management", Name: "Product Management"},
	{ID: "ui-ux", Name: "UI/UX Design"},
	{ID: "devops", Name: "DevOps"},
}

// LookupDomain returns the catalog entry for id.
func LookupDomain(id string) (DomainOption, bool) {
	for _, d := range Domains {
		if d.ID == id {
			return d, true
		}
	}
	return DomainOption{}, false
}

// Step is the wizard position. Transitions are strictly +/-1.
type Step int

const (
	StepName Step = iota
	StepGoal
	StepExperience
	StepDomains
	StepReview
)

// TerminalStep is the last step; Next on it submits.
const TerminalStep = StepReview

func (s Step) String() string {
	switch s {
	case StepName:
		return "name"
	case StepGoal:
		return "goal"
	case StepExperience:
		return "experience"
	case StepDomains:
		return "domains"
	case StepReview:
		return "review"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// OnboardingState is the data accumulated by the wizard before submission.
type OnboardingState struct {
	Name             string          `json:"name"`
	CareerGoal       string          `json:"career_goal"`
	ExperienceLevel  ExperienceLevel `json:"experience_level"`
	PreferredDomains []string        `json:"preferred_domains"`
}

// NewOnboardingState returns the empty state, optionally prefilled with a display name.
func NewOnboardingState(name string) OnboardingState {
	return OnboardingState{
		Name:             name,
		ExperienceLevel:  LevelBeginner,
		PreferredDomains: []string{},
	}
}

// HasDomain reports whether id is in the preferred set.
func (s *OnboardingState) HasDomain(id string) bool {
	return slices.Contains(s.PreferredDomains, id)
}

// ToggleDomain removes id when present and appends it otherwise.
func (s *OnboardingState) ToggleDomain(id string) {
	if i := slices.Index(s.PreferredDomains, id); i >= 0 {
		s.PreferredDomains = slices.Delete(slices.Clone(s.PreferredDomains), i, i+1)
		return
	}
	s.PreferredDomains = append(slices.Clone(s.PreferredDomains), id)
}

// DomainNames maps the preferred ids to their display names, skipping unknown ids.
func (s *OnboardingState) DomainNames() []string {
	names := make([]string, 0, len(s.PreferredDomains))
	for _, id := range s.PreferredDomains {
		if d, ok := LookupDomain(id); ok {
			names = append(names, d.Name)
		}
	}
	return names
}

// OnboardingDraft is the wizard's stored position and data.
type OnboardingDraft struct {
	Step  Step            `json:"step"`
	State OnboardingState `json:"state"`
	Done  bool            `json:"done"`
}
