package mentorai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/mentorai/internal/logging"
	"github.com/aretw0/mentorai/internal/sanitize"
	"github.com/aretw0/mentorai/pkg/credentials"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/onboarding"
	"github.com/aretw0/mentorai/pkg/ports"
	"github.com/aretw0/mentorai/pkg/profile"
	"github.com/aretw0/mentorai/pkg/roadmap"
	"github.com/aretw0/mentorai/pkg/selector"
	"github.com/aretw0/mentorai/pkg/session"
	"github.com/aretw0/mentorai/pkg/settings"
)

var noticeDuplicateCompany = domain.Warning("Company selected twice", "Each company can be part of the roadmap only once")

// Backend bundles the hosted-backend collaborators.
type Backend struct {
	Profiles    ports.ProfileStore
	Companies   ports.CompanyCatalog
	Settings    ports.SettingsStore
	Credentials credentials.Stores
	Feed        ports.ChangeFeed
	Verifier    ports.SessionVerifier
	Revoker     ports.SessionRevoker
}

// App is the high-level entry point: it runs the onboarding, selector and
// roadmap flows for authenticated sessions and exposes the profile services.
type App struct {
	backend  Backend
	sessions *session.Manager

	settings    *settings.Service
	credentials *credentials.Service
	profiles    *profile.Service

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *App) {
		a.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// New wires the services around backend. Drafts are kept through sessions.
func New(backend Backend, sessions *session.Manager, opts ...Option) *App {
	a := &App{
		backend:  backend,
		sessions: sessions,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.settings = settings.NewService(backend.Settings,
		settings.WithFeed(backend.Feed),
		settings.WithLogger(a.logger),
		settings.WithClock(a.now),
	)
	a.credentials = credentials.NewService(backend.Credentials,
		credentials.WithLogger(a.logger),
		credentials.WithClock(a.now),
	)
	a.profiles = profile.NewService(backend.Profiles, a.credentials)
	return a
}

// Settings returns the settings service.
func (a *App) Settings() *settings.Service { return a.settings }

// Credentials returns the credentials service.
func (a *App) Credentials() *credentials.Service { return a.credentials }

// Profiles returns the profile service.
func (a *App) Profiles() *profile.Service { return a.profiles }

// Sessions returns the workspace manager.
func (a *App) Sessions() *session.Manager { return a.sessions }

// Authenticate turns an access token into a session.
func (a *App) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	if strings.TrimSpace(token) == "" || a.backend.Verifier == nil {
		return nil, domain.ErrUnauthenticated
	}
	return a.backend.Verifier.Verify(ctx, token)
}

// IsOnboarded reports whether the user finished onboarding. Session metadata is
// trusted when it says so; otherwise the stored profile is consulted, since a
// token issued before submission still carries the old flag.
func (a *App) IsOnboarded(ctx context.Context, sess *domain.Session) (bool, error) {
	if sess == nil {
		return false, domain.ErrUnauthenticated
	}
	if sess.Metadata.Onboarded {
		return true, nil
	}
	p, err := a.backend.Profiles.Get(ctx, sess.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.Onboarded, nil
}

// RequireOnboarded fails with domain.ErrNotOnboarded until onboarding is complete.
func (a *App) RequireOnboarded(ctx context.Context, sess *domain.Session) error {
	ok, err := a.IsOnboarded(ctx, sess)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotOnboarded
	}
	return nil
}

// SignOut revokes the token and drops the session's drafts.
func (a *App) SignOut(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return domain.ErrUnauthenticated
	}
	if a.backend.Revoker != nil && sess.AccessToken != "" {
		if err := a.backend.Revoker.Revoke(ctx, sess.AccessToken); err != nil {
			a.logger.WarnContext(ctx, "Failed to revoke session", "user_id", sess.UserID, "err", err)
		}
	}
	return a.sessions.Delete(ctx, sess.ID)
}

// OnboardingView is the wizard screen.
type OnboardingView struct {
	Step       domain.Step            `json:"step"`
	StepName   string                 `json:"step_name"`
	TotalSteps int                    `json:"total_steps"`
	View       onboarding.StepView    `json:"view"`
	State      domain.OnboardingState `json:"state"`
}

// OnboardingResult is the answer to a wizard action.
type OnboardingResult struct {
	OnboardingView
	Outcome onboarding.Outcome `json:"outcome"`
}

// OnboardingAction is one user event on the wizard.
type OnboardingAction struct {
	Type  string `json:"type"` // next, back, submit, toggle_domain, set_name, set_goal, set_level
	Value string `json:"value,omitempty"`
}

func onboardingView(w *onboarding.Wizard) OnboardingView {
	return OnboardingView{
		Step:       w.Step(),
		StepName:   w.Step().String(),
		TotalSteps: int(domain.TerminalStep) + 1,
		View:       w.View(),
		State:      w.State(),
	}
}

func (a *App) wizard(ws *domain.Workspace, sess *domain.Session) *onboarding.Wizard {
	if ws.Onboarding == nil {
		ws.Onboarding = onboarding.Start(sess.Metadata.FullName)
	}
	return onboarding.New(ws.Onboarding, sess.UserID, a.backend.Profiles,
		onboarding.WithHooks(a.hooks),
		onboarding.WithLogger(a.logger),
		onboarding.WithSessionID(sess.ID),
	)
}

func (a *App) guardOnboarding(ctx context.Context, sess *domain.Session) error {
	done, err := a.IsOnboarded(ctx, sess)
	if err != nil {
		return err
	}
	if done {
		return domain.ErrAlreadyOnboarded
	}
	return nil
}

// Onboarding returns the current wizard screen, starting the wizard when needed.
func (a *App) Onboarding(ctx context.Context, sess *domain.Session) (OnboardingView, error) {
	if err := a.guardOnboarding(ctx, sess); err != nil {
		return OnboardingView{}, err
	}
	var view OnboardingView
	_, err := a.sessions.Update(ctx, sess.ID, sess.UserID, func(ws *domain.Workspace) error {
		view = onboardingView(a.wizard(ws, sess))
		return nil
	})
	return view, err
}

// Onboard applies one wizard action. A successful submission discards the draft.
func (a *App) Onboard(ctx context.Context, sess *domain.Session, act OnboardingAction) (OnboardingResult, error) {
	if err := a.guardOnboarding(ctx, sess); err != nil {
		return OnboardingResult{}, err
	}
	value, err := sanitize.Input(act.Value)
	if err != nil {
		return OnboardingResult{}, err
	}
	act.Value = value

	var res OnboardingResult
	_, err = a.sessions.Update(ctx, sess.ID, sess.UserID, func(ws *domain.Workspace) error {
		w := a.wizard(ws, sess)
		res.Outcome.Step = w.Step()
		var err error
		switch act.Type {
		case "next":
			res.Outcome, err = w.Next(ctx)
		case "back":
			res.Outcome = w.Back()
		case "submit":
			res.Outcome, err = w.Submit(ctx)
		case "toggle_domain":
			err = w.ToggleDomain(act.Value)
		case "set_name":
			w.SetName(act.Value)
		case "set_goal":
			w.SetCareerGoal(act.Value)
		case "set_level":
			err = w.SetExperienceLevel(act.Value)
		default:
			err = fmt.Errorf("%w: unknown onboarding action %q", domain.ErrValidation, act.Type)
		}
		res.OnboardingView = onboardingView(w)
		if err != nil {
			return err
		}
		if w.Done() {
			ws.Onboarding = nil
		}
		return nil
	})
	return res, err
}

// SelectorView is the company browser screen.
type SelectorView struct {
	Filter    domain.CompanyFilter `json:"filter"`
	Companies []domain.Company     `json:"companies"`
	Domains   []string             `json:"domains"`
	Selected  []string             `json:"selected"`
	Max       int                  `json:"max"`
}

// SelectorResult is the answer to a selector action.
type SelectorResult struct {
	SelectorView
	Added   *bool          `json:"added,omitempty"`
	Notice  *domain.Notice `json:"notice,omitempty"`
	Roadmap *roadmap.View  `json:"roadmap,omitempty"`
}

// SelectorAction is one user event on the company browser.
type SelectorAction struct {
	Type     string  `json:"type"` // search, domain, salary, dsa, toggle, reset, generate, leave
	Value    string  `json:"value,omitempty"`
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	DSALevel int     `json:"dsa_level,omitempty"`
}

func selectorView(s *selector.Selector) SelectorView {
	return SelectorView{
		Filter:    s.Filter(),
		Companies: s.Visible(),
		Domains:   s.Domains(),
		Selected:  append([]string{}, s.Draft().Selection.IDs...),
		Max:       domain.MaxSelection,
	}
}

func (a *App) selector(ws *domain.Workspace, sess *domain.Session, companies []domain.Company) *selector.Selector {
	if ws.Selector == nil {
		ws.Selector = domain.NewSelectorDraft()
	}
	return selector.New(ws.Selector, companies,
		selector.WithHooks(a.hooks),
		selector.WithSessionID(sess.ID),
		selector.WithClock(a.now),
	)
}

// Companies lists the catalog.
func (a *App) Companies(ctx context.Context) ([]domain.Company, error) {
	companies, err := a.backend.Companies.List(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to load companies", "err", err)
		return nil, domain.WithNotice(err, domain.Warning("Failed to load companies", "Please try again later"))
	}
	return companies, nil
}

// Selector returns the company browser screen. Onboarding must be complete.
func (a *App) Selector(ctx context.Context, sess *domain.Session) (SelectorView, error) {
	res, err := a.Select(ctx, sess, SelectorAction{Type: "view"})
	return res.SelectorView, err
}

// Select applies one selector action.
func (a *App) Select(ctx context.Context, sess *domain.Session, act SelectorAction) (SelectorResult, error) {
	if err := a.RequireOnboarded(ctx, sess); err != nil {
		return SelectorResult{}, err
	}
	value, err := sanitize.Input(act.Value)
	if err != nil {
		return SelectorResult{}, err
	}
	act.Value = value
	companies, err := a.Companies(ctx)
	if err != nil {
		return SelectorResult{}, err
	}

	var res SelectorResult
	_, err = a.sessions.Update(ctx, sess.ID, sess.UserID, func(ws *domain.Workspace) error {
		s := a.selector(ws, sess, companies)
		var err error
		switch act.Type {
		case "view":
		case "search":
			s.SetSearchTerm(act.Value)
		case "domain":
			s.SetDomainFilter(act.Value)
		case "salary":
			err = s.SetSalaryRange(act.Min, act.Max)
		case "dsa":
			level := act.DSALevel
			if level == 0 && act.Value != "" {
				if level, err = strconv.Atoi(act.Value); err != nil {
					err = fmt.Errorf("%w: dsa level %q", domain.ErrValidation, act.Value)
				}
			}
			if err == nil {
				err = s.SetDSALevel(level)
			}
		case "toggle":
			var added bool
			if added, err = s.ToggleCompanySelection(ctx, act.Value); err == nil {
				res.Added = &added
			}
		case "reset":
			s.ResetFilters()
		case "generate":
			var r *domain.Roadmap
			if r, err = s.Generate(ctx); err == nil {
				ws.Roadmap = r
				v := roadmap.NewView(r)
				n := roadmap.NoticeGenerated
				res.Roadmap, res.Notice = &v, &n
			}
		case "leave":
			s.Leave()
		default:
			err = fmt.Errorf("%w: unknown selector action %q", domain.ErrValidation, act.Type)
		}
		res.SelectorView = selectorView(s)
		return err
	})
	return res, err
}

// Roadmap returns the roadmap screen: the last generated roadmap, or the call
// to action when none was generated in this session.
func (a *App) Roadmap(ctx context.Context, sess *domain.Session) (roadmap.View, error) {
	if err := a.RequireOnboarded(ctx, sess); err != nil {
		return roadmap.View{}, err
	}
	ws, err := a.sessions.Load(ctx, sess.ID)
	if errors.Is(err, domain.ErrWorkspaceNotFound) {
		return roadmap.NewView(nil), nil
	}
	if err != nil {
		return roadmap.View{}, err
	}
	return roadmap.NewView(ws.Roadmap), nil
}

// ToggleMilestone flips one milestone of the session's roadmap.
func (a *App) ToggleMilestone(ctx context.Context, sess *domain.Session, id string) (roadmap.View, error) {
	if err := a.RequireOnboarded(ctx, sess); err != nil {
		return roadmap.View{}, err
	}
	ws, err := a.sessions.Update(ctx, sess.ID, sess.UserID, func(ws *domain.Workspace) error {
		_, err := roadmap.ToggleMilestoneCompletion(ws.Roadmap, id)
		return err
	})
	if err != nil {
		return roadmap.View{}, err
	}
	return roadmap.NewView(ws.Roadmap), nil
}

// BuildRoadmap builds a roadmap straight from company ids, without a session.
// The ids form a set: at most MaxSelection distinct ids are accepted.
func (a *App) BuildRoadmap(ctx context.Context, ids []string) (*domain.Roadmap, error) {
	if len(ids) > domain.MaxSelection {
		return nil, domain.WithNotice(domain.ErrSelectionLimit, selector.NoticeLimit)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, domain.WithNotice(fmt.Errorf("%w: company %q selected twice", domain.ErrValidation, id), noticeDuplicateCompany)
		}
		seen[id] = struct{}{}
	}
	companies, err := a.Companies(ctx)
	if err != nil {
		return nil, err
	}
	picked := domain.CompaniesByID(companies, ids)
	if len(picked) != len(ids) {
		return nil, fmt.Errorf("%w: unknown company id in %v", domain.ErrNotFound, ids)
	}
	return roadmap.Build(picked, a.now())
}
