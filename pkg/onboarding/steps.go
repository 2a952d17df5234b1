package onboarding

import "github.com/aretw0/mentorai/pkg/domain"

// StepView is the rendering of the current step. Each variant carries only the
// data its step shows.
type StepView interface {
	Step() domain.Step
}

// NameStep asks for the display name.
type NameStep struct {
	Name string `json:"name"`
}

// GoalStep asks for the career goal.
type GoalStep struct {
	CareerGoal string `json:"career_goal"`
}

// ExperienceStep offers the three experience levels.
type ExperienceStep struct {
	Level   domain.ExperienceLevel   `json:"level"`
	Options []domain.ExperienceLevel `json:"options"`
}

// DomainOption is a catalog entry with its selection state.
type DomainOption struct {
	domain.DomainOption
	Selected bool `json:"selected"`
}

// DomainsStep offers the domain catalog.
type DomainsStep struct {
	Options []DomainOption `json:"options"`
}

// ReviewStep summarizes the answers before submission.
type ReviewStep struct {
	Name            string                 `json:"name"`
	CareerGoal      string                 `json:"career_goal"`
	ExperienceLevel domain.ExperienceLevel `json:"experience_level"`
	Domains         []string               `json:"domains"`
}

func (NameStep) Step() domain.Step       { return domain.StepName }
func (GoalStep) Step() domain.Step       { return domain.StepGoal }
func (ExperienceStep) Step() domain.Step { return domain.StepExperience }
func (DomainsStep) Step() domain.Step    { return domain.StepDomains }
func (ReviewStep) Step() domain.Step     { return domain.StepReview }

var levels = []domain.ExperienceLevel{domain.LevelBeginner, domain.LevelIntermediate, domain.LevelAdvanced}

// viewOf renders the draft's current step.
func viewOf(d *domain.OnboardingDraft) StepView {
	st := &d.State
	switch d.Step {
	case domain.StepGoal:
		return GoalStep{CareerGoal: st.CareerGoal}
	case domain.StepExperience:
		return ExperienceStep{Level: st.ExperienceLevel, Options: levels}
	case domain.StepDomains:
		opts := make([]DomainOption, len(domain.Domains))
		for i, o := range domain.Domains {
			opts[i] = DomainOption{DomainOption: o, Selected: st.HasDomain(o.ID)}
		}
		return DomainsStep{Options: opts}
	case domain.StepReview:
		return ReviewStep{
			Name:            st.Name,
			CareerGoal:      st.CareerGoal,
			ExperienceLevel: st.ExperienceLevel,
			Domains:         st.DomainNames(),
		}
	default:
		return NameStep{Name: st.Name}
	}
}
