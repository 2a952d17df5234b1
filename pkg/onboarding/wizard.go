package onboarding

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/mentorai/internal/logging"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/ports"
)

// RedirectAfterSubmit is where a user lands once onboarding is stored.
const RedirectAfterSubmit = "/profile"

var (
	noticeNameRequired    = domain.Warning("Name is required", "Please enter your name to continue")
	noticeGoalRequired    = domain.Warning("Career goal is required", "Please enter your career goal to continue")
	noticeDomainsRequired = domain.Warning("Domain selection is required", "Please select at least one domain to continue")
	noticeUnknownDomain   = domain.Warning("Unknown domain", "Pick one of the listed domains")
	noticeUnknownLevel    = domain.Warning("Unknown experience level", "Choose beginner, intermediate or advanced")
	noticeSubmitFailed    = domain.Warning("Something went wrong", "Please try again later")

	// NoticeComplete is shown after a successful submission.
	NoticeComplete = domain.Info("Onboarding complete!", "Welcome to your personalized career dashboard")
)

// Outcome reports where the wizard stands after an action.
type Outcome struct {
	Step      domain.Step    `json:"step"`
	Submitted bool           `json:"submitted"`
	Redirect  string         `json:"redirect,omitempty"`
	Notice    *domain.Notice `json:"notice,omitempty"`
}

// Wizard drives one user's onboarding draft.
type Wizard struct {
	draft     *domain.OnboardingDraft
	userID    string
	sessionID string
	profiles  ports.ProfileStore
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithHooks sets the lifecycle hooks notified on every action.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(w *Wizard) { w.hooks = h }
}

// WithLogger configures a logger for submission failures.
func WithLogger(l *slog.Logger) Option {
	return func(w *Wizard) { w.logger = l }
}

// WithSessionID tags emitted events with the session.
func WithSessionID(id string) Option {
	return func(w *Wizard) { w.sessionID = id }
}

// Start returns a fresh draft on the first step, prefilled with name.
func Start(name string) *domain.OnboardingDraft {
	return &domain.OnboardingDraft{
		Step:  domain.StepName,
		State: domain.NewOnboardingState(strings.TrimSpace(name)),
	}
}

// New wraps draft for userID. Mutations are applied to draft in place.
func New(draft *domain.OnboardingDraft, userID string, profiles ports.ProfileStore, opts ...Option) *Wizard {
	w := &Wizard{
		draft:    draft,
		userID:   userID,
		profiles: profiles,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Step returns the current step.
func (w *Wizard) Step() domain.Step { return w.draft.Step }

// State returns a copy of the collected answers.
func (w *Wizard) State() domain.OnboardingState {
	st := w.draft.State
	st.PreferredDomains = slices.Clone(st.PreferredDomains)
	return st
}

// View renders the current step.
func (w *Wizard) View() StepView { return viewOf(w.draft) }

// Done reports whether the answers were submitted successfully.
func (w *Wizard) Done() bool { return w.draft.Done }

// SetName records the step-0 answer.
func (w *Wizard) SetName(name string) { w.draft.State.Name = name }

// SetCareerGoal records the step-1 answer.
func (w *Wizard) SetCareerGoal(goal string) { w.draft.State.CareerGoal = goal }

// SetExperienceLevel records the step-2 answer.
func (w *Wizard) SetExperienceLevel(level string) error {
	l, err := domain.ParseExperienceLevel(level)
	if err != nil {
		return domain.WithNotice(err, noticeUnknownLevel)
	}
	w.draft.State.ExperienceLevel = l
	return nil
}

// ToggleDomain adds id to the preferred domains, or removes it when present.
func (w *Wizard) ToggleDomain(id string) error {
	if _, ok := domain.LookupDomain(id); !ok {
		return domain.WithNotice(fmt.Errorf("%w: unknown domain %q", domain.ErrValidation, id), noticeUnknownDomain)
	}
	w.draft.State.ToggleDomain(id)
	return nil
}

// Next validates the current step and advances by one. On the last step it submits.
func (w *Wizard) Next(ctx context.Context) (Outcome, error) {
	from := w.draft.Step
	if err := validateStep(from, &w.draft.State); err != nil {
		w.emit(ctx, "next", from, from, true)
		return Outcome{Step: from}, err
	}
	if from >= domain.TerminalStep {
		return w.Submit(ctx)
	}
	w.draft.Step = from + 1
	w.emit(ctx, "next", from, w.draft.Step, false)
	return Outcome{Step: w.draft.Step}, nil
}

// Back moves to the previous step. It is a no-op on the first step.
func (w *Wizard) Back() Outcome {
	from := w.draft.Step
	if from > domain.StepName {
		w.draft.Step = from - 1
	}
	w.emit(context.Background(), "back", from, w.draft.Step, false)
	return Outcome{Step: w.draft.Step}
}

// Submit sends the answers as one profile update marking the user onboarded.
// On failure the draft is left untouched and the error carries a notice.
func (w *Wizard) Submit(ctx context.Context) (Outcome, error) {
	step := w.draft.Step
	for s := domain.StepName; s <= domain.TerminalStep; s++ {
		if err := validateStep(s, &w.draft.State); err != nil {
			w.emit(ctx, "submit", step, step, true)
			return Outcome{Step: step}, err
		}
	}

	st := w.draft.State
	name := strings.TrimSpace(st.Name)
	goal := strings.TrimSpace(st.CareerGoal)
	level := st.ExperienceLevel
	onboarded := true
	update := domain.ProfileUpdate{
		FullName:         &name,
		CareerGoal:       &goal,
		ExperienceLevel:  &level,
		PreferredDomains: append([]string{}, st.PreferredDomains...),
		Onboarded:        &onboarded,
	}

	err := w.profiles.Update(ctx, w.userID, update)
	w.hooks.EmitSubmit(ctx, w.event("submit", step, step, err != nil), err)
	if err != nil {
		w.logger.ErrorContext(ctx, "Error updating user", "user_id", w.userID, "err", err)
		return Outcome{Step: step}, domain.WithNotice(fmt.Errorf("submit onboarding: %w", err), noticeSubmitFailed)
	}

	w.draft.Done = true
	n := NoticeComplete
	return Outcome{Step: step, Submitted: true, Redirect: RedirectAfterSubmit, Notice: &n}, nil
}

func validateStep(s domain.Step, st *domain.OnboardingState) error {
	switch s {
	case domain.StepName:
		if strings.TrimSpace(st.Name) == "" {
			return domain.WithNotice(fmt.Errorf("%w: name is empty", domain.ErrValidation), noticeNameRequired)
		}
	case domain.StepGoal:
		if strings.TrimSpace(st.CareerGoal) == "" {
			return domain.WithNotice(fmt.Errorf("%w: career goal is empty", domain.ErrValidation), noticeGoalRequired)
		}
	case domain.StepDomains:
		if len(st.PreferredDomains) == 0 {
			return domain.WithNotice(fmt.Errorf("%w: no domain selected", domain.ErrValidation), noticeDomainsRequired)
		}
	}
	return nil
}

func (w *Wizard) event(action string, from, to domain.Step, rejected bool) *domain.FlowEvent {
	return &domain.FlowEvent{
		Timestamp: time.Now().UTC(),
		SessionID: w.sessionID,
		Flow:      "onboarding",
		Action:    action,
		From:      from.String(),
		To:        to.String(),
		Rejected:  rejected,
	}
}

func (w *Wizard) emit(ctx context.Context, action string, from, to domain.Step, rejected bool) {
	w.hooks.Emit(ctx, w.event(action, from, to, rejected))
}
