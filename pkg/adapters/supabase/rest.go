package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aretw0/mentorai/pkg/credentials"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/ports"
)

const (
	restPath = "/rest/v1/"

	// acceptObject makes PostgREST answer with one object, or PGRST116 when
	// the filter matched no row.
	acceptObject = "application/vnd.pgrst.object+json"
)

var (
	_ ports.ProfileStore   = (*Profiles)(nil)
	_ ports.CompanyCatalog = (*Companies)(nil)
	_ ports.SettingsStore  = (*Settings)(nil)
)

func eq(v string) string { return "eq." + v }

// Profiles reads the profiles table. Onboarding answers live in the auth
// user's metadata, so Update writes there and Get merges them back in.
type Profiles struct{ c *Client }

// Profiles returns the ports.ProfileStore of the project.
func (c *Client) Profiles() *Profiles { return &Profiles{c: c} }

// Get implements ports.ProfileStore.
func (p *Profiles) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	prof, err := p.one(ctx, "profile.get", url.Values{"id": {eq(userID)}, "select": {"*"}})
	if err != nil {
		return nil, err
	}
	if s, ok := domain.SessionFromContext(ctx); ok && s.UserID == userID {
		u, err := p.c.user(ctx, s.AccessToken)
		if err != nil {
			return nil, err
		}
		mergeMetadata(prof, u.Metadata)
	}
	return prof, nil
}

// GetByUsername implements ports.ProfileStore.
func (p *Profiles) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	if username == "" {
		return nil, domain.ErrNotFound
	}
	return p.one(ctx, "profile.get_by_username", url.Values{"username": {eq(username)}, "select": {"*"}})
}

func (p *Profiles) one(ctx context.Context, op string, q url.Values) (*domain.Profile, error) {
	var prof domain.Profile
	err := p.c.do(ctx, op, request{
		method:  http.MethodGet,
		path:    restPath + "profiles",
		query:   q,
		headers: map[string]string{"Accept": acceptObject},
	}, &prof)
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

// Update implements ports.ProfileStore by writing the auth user's metadata.
// It needs the caller's session in ctx.
func (p *Profiles) Update(ctx context.Context, userID string, update domain.ProfileUpdate) error {
	s, ok := domain.SessionFromContext(ctx)
	if !ok || s.UserID != userID {
		return fmt.Errorf("%w: profile update needs the user's session", domain.ErrUnauthenticated)
	}
	return p.c.do(ctx, "profile.update", request{
		method: http.MethodPut,
		path:   authPath + "user",
		body:   map[string]any{"data": update},
		token:  s.AccessToken,
	}, nil)
}

func mergeMetadata(p *domain.Profile, m domain.UserMetadata) {
	if m.FullName != "" {
		p.FullName = m.FullName
	}
	if m.CareerGoal != "" {
		p.CareerGoal = m.CareerGoal
	}
	if m.ExperienceLevel != "" {
		p.ExperienceLevel = domain.ExperienceLevel(m.ExperienceLevel)
	}
	if m.PreferredDomains != nil {
		p.PreferredDomains = m.PreferredDomains
	}
	p.Onboarded = p.Onboarded || m.Onboarded
}

// Companies reads the company catalog.
type Companies struct{ c *Client }

// Companies returns the ports.CompanyCatalog of the project.
func (c *Client) Companies() *Companies { return &Companies{c: c} }

// List implements ports.CompanyCatalog.
func (cc *Companies) List(ctx context.Context) ([]domain.Company, error) {
	out := make([]domain.Company, 0)
	err := cc.c.do(ctx, "companies.list", request{
		method: http.MethodGet,
		path:   restPath + "company",
		query:  url.Values{"select": {"*"}, "order": {"created_at.asc"}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Settings is the user_settings table.
type Settings struct {
	c   *Client
	now func() time.Time
}

// Settings returns the ports.SettingsStore of the project.
func (c *Client) Settings() *Settings { return &Settings{c: c, now: time.Now} }

// Get implements ports.SettingsStore.
func (t *Settings) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	var st domain.Settings
	err := t.c.do(ctx, "settings.get", request{
		method:  http.MethodGet,
		path:    restPath + "user_settings",
		query:   url.Values{"user_id": {eq(userID)}, "select": {"*"}},
		headers: map[string]string{"Accept": acceptObject},
	}, &st)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Insert implements ports.SettingsStore.
func (t *Settings) Insert(ctx context.Context, st domain.Settings) (string, error) {
	st.ID = ""
	st.UpdatedAt = t.now().UTC()
	var rows []domain.Settings
	err := t.c.do(ctx, "settings.insert", request{
		method:  http.MethodPost,
		path:    restPath + "user_settings",
		body:    st,
		headers: map[string]string{"Prefer": "return=representation"},
	}, &rows)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: settings.insert: no row returned", domain.ErrRemote)
	}
	return rows[0].ID, nil
}

// Update implements ports.SettingsStore.
func (t *Settings) Update(ctx context.Context, st domain.Settings) error {
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = t.now().UTC()
	}
	var rows []domain.Settings
	err := t.c.do(ctx, "settings.update", request{
		method: http.MethodPatch,
		path:   restPath + "user_settings",
		query:  url.Values{"id": {eq(st.ID)}, "user_id": {eq(st.UserID)}},
		body: map[string]any{
			"email_notifications":   st.EmailNotifications,
			"public_profile":        st.PublicProfile,
			"ai_learning_assistant": st.AILearningAssistant,
			"updated_at":            st.UpdatedAt,
		},
		headers: map[string]string{"Prefer": "return=representation"},
	}, &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Table is a per-user PostgREST table. It implements ports.Collection.
type Table[T domain.Record] struct {
	c     *Client
	name  string
	order string
}

// NewTable returns the table name of c. order is a PostgREST order clause
// such as "start_date.desc"; empty keeps the server's order.
func NewTable[T domain.Record](c *Client, name, order string) *Table[T] {
	return &Table[T]{c: c, name: name, order: order}
}

// List implements ports.Lister.
func (t *Table[T]) List(ctx context.Context, userID string) ([]T, error) {
	q := url.Values{"user_id": {eq(userID)}, "select": {"*"}}
	if t.order != "" {
		q.Set("order", t.order)
	}
	out := make([]T, 0)
	if err := t.c.do(ctx, t.name+".list", request{method: http.MethodGet, path: restPath + t.name, query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert implements ports.Collection. The row id is assigned by the database.
func (t *Table[T]) Insert(ctx context.Context, rec T) (T, error) {
	var rows []T
	err := t.c.do(ctx, t.name+".insert", request{
		method:  http.MethodPost,
		path:    restPath + t.name,
		body:    []T{rec},
		headers: map[string]string{"Prefer": "return=representation"},
	}, &rows)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(rows) == 0 {
		var zero T
		return zero, fmt.Errorf("%w: %s.insert: no row returned", domain.ErrRemote, t.name)
	}
	return rows[0], nil
}

// Get implements ports.Collection.
func (t *Table[T]) Get(ctx context.Context, userID, id string) (T, error) {
	var rec T
	err := t.c.do(ctx, t.name+".get", request{
		method:  http.MethodGet,
		path:    restPath + t.name,
		query:   url.Values{"id": {eq(id)}, "user_id": {eq(userID)}, "select": {"*"}},
		headers: map[string]string{"Accept": acceptObject},
	}, &rec)
	return rec, err
}

// Delete implements ports.Collection.
func (t *Table[T]) Delete(ctx context.Context, userID, id string) error {
	return t.c.do(ctx, t.name+".delete", request{
		method: http.MethodDelete,
		path:   restPath + t.name,
		query:  url.Values{"id": {eq(id)}, "user_id": {eq(userID)}},
	}, nil)
}

// CredentialStores returns the credential tables and certificate storage of c,
// ordered the way the public profile lists them.
func (c *Client) CredentialStores() credentials.Stores {
	return credentials.Stores{
		Education:      NewTable[domain.Education](c, "education", "start_date.desc"),
		Experiences:    NewTable[domain.Experience](c, "experiences", "start_date.desc"),
		Certifications: NewTable[domain.Certification](c, "licenses_certifications", "issue_date.desc"),
		Projects:       NewTable[domain.Project](c, "projects", "start_date.desc"),
		Skills:         NewTable[domain.Skill](c, "skills", "level.desc"),
		Files:          c.Storage(),
	}
}
