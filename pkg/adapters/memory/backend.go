package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/google/uuid"
)

// Backend is an in-memory stand-in for the hosted backend. It implements
// ports.ProfileStore, ports.CompanyCatalog, ports.SettingsStore,
// ports.ObjectStorage, ports.SessionVerifier and ports.SessionRevoker, and
// exposes one Table per credential collection. Writes publish on Feed.
type Backend struct {
	Feed *Feed

	Education      *Table[domain.Education]
	Experiences    *Table[domain.Experience]
	Certifications *Table[domain.Certification]
	Projects       *Table[domain.Project]
	Skills         *Table[domain.Skill]

	mu        sync.RWMutex
	profiles  map[string]domain.Profile
	companies []domain.Company
	settings  map[string]domain.Settings
	objects   map[string][]byte
	sessions  map[string]domain.Session
	failures  map[string]error
	calls     map[string]int
}

// NewBackend creates an empty backend.
func NewBackend() *Backend {
	feed := NewFeed()
	return &Backend{
		Feed: feed,
		Education: NewTable("education", func(r domain.Education, id string) domain.Education {
			r.ID = id
			return r
		}, feed),
		Experiences: NewTable("experiences", func(r domain.Experience, id string) domain.Experience {
			r.ID = id
			return r
		}, feed),
		Certifications: NewTable("licenses_certifications", func(r domain.Certification, id string) domain.Certification {
			r.ID = id
			return r
		}, feed),
		Projects: NewTable("projects", func(r domain.Project, id string) domain.Project {
			r.ID = id
			return r
		}, feed),
		Skills: NewTable("skills", func(r domain.Skill, id string) domain.Skill {
			r.ID = id
			return r
		}, feed),
		profiles: make(map[string]domain.Profile),
		settings: make(map[string]domain.Settings),
		objects:  make(map[string][]byte),
		sessions: make(map[string]domain.Session),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// FailOn makes every call to op ("profile.update", "settings.update", ...) return err.
// A nil err clears the failure.
func (b *Backend) FailOn(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failures, op)
		return
	}
	b.failures[op] = err
}

// Calls returns how many times op was invoked.
func (b *Backend) Calls(op string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.calls[op]
}

func (b *Backend) enter(op string) error {
	b.calls[op]++
	if err := b.failures[op]; err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrRemote, op, err)
	}
	return nil
}

// PutProfile stores p as is.
func (b *Backend) PutProfile(p domain.Profile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profiles[p.ID] = p
}

// PutCompanies replaces the catalog.
func (b *Backend) PutCompanies(companies ...domain.Company) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.companies = slices.Clone(companies)
}

// AddSession registers a token accepted by Verify.
func (b *Backend) AddSession(token string, s domain.Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s.AccessToken = token
	b.sessions[token] = s
}

// Get implements ports.ProfileStore.
func (b *Backend) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("profile.get"); err != nil {
		return nil, err
	}
	p, ok := b.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.PreferredDomains = slices.Clone(p.PreferredDomains)
	return &p, nil
}

// GetByUsername implements ports.ProfileStore.
func (b *Backend) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("profile.get"); err != nil {
		return nil, err
	}
	for _, p := range b.profiles {
		if p.Username != "" && p.Username == username {
			p.PreferredDomains = slices.Clone(p.PreferredDomains)
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Update implements ports.ProfileStore. Unknown users get a fresh profile.
func (b *Backend) Update(ctx context.Context, userID string, update domain.ProfileUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("profile.update"); err != nil {
		return err
	}
	p, ok := b.profiles[userID]
	if !ok {
		p = domain.Profile{ID: userID}
	}
	update.Apply(&p)
	p.UpdatedAt = time.Now().UTC()
	b.profiles[userID] = p

	for token, s := range b.sessions {
		if s.UserID != userID {
			continue
		}
		if update.Onboarded != nil {
			s.Metadata.Onboarded = *update.Onboarded
		}
		if update.FullName != nil {
			s.Metadata.FullName = *update.FullName
		}
		b.sessions[token] = s
	}
	return nil
}

// Companies is the ports.CompanyCatalog view of the backend.
func (b *Backend) Companies() *Catalog { return (*Catalog)(b) }

// Catalog adapts Backend to ports.CompanyCatalog.
type Catalog Backend

// List returns the whole catalog.
func (c *Catalog) List(ctx context.Context) ([]domain.Company, error) {
	b := (*Backend)(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("companies.list"); err != nil {
		return nil, err
	}
	return slices.Clone(b.companies), nil
}

// Settings is the ports.SettingsStore view of the backend.
func (b *Backend) Settings() *SettingsTable { return (*SettingsTable)(b) }

// SettingsTable adapts Backend to ports.SettingsStore.
type SettingsTable Backend

// Get returns the row of userID.
func (t *SettingsTable) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	b := (*Backend)(t)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("settings.get"); err != nil {
		return nil, err
	}
	s, ok := b.settings[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

// Insert creates the row of s.UserID.
func (t *SettingsTable) Insert(ctx context.Context, s domain.Settings) (string, error) {
	b := (*Backend)(t)
	b.mu.Lock()
	if err := b.enter("settings.insert"); err != nil {
		b.mu.Unlock()
		return "", err
	}
	s.ID = uuid.NewString()
	s.UpdatedAt = time.Now().UTC()
	b.settings[s.UserID] = s
	b.mu.Unlock()

	b.Feed.Publish(s.UserID, domain.ChangeEvent{Table: "user_settings", Type: domain.ChangeInsert, Record: asRecord(s)})
	return s.ID, nil
}

// Update overwrites the row identified by s.ID.
func (t *SettingsTable) Update(ctx context.Context, s domain.Settings) error {
	b := (*Backend)(t)
	b.mu.Lock()
	if err := b.enter("settings.update"); err != nil {
		b.mu.Unlock()
		return err
	}
	cur, ok := b.settings[s.UserID]
	if !ok || cur.ID != s.ID {
		b.mu.Unlock()
		return domain.ErrNotFound
	}
	old := cur
	b.settings[s.UserID] = s
	b.mu.Unlock()

	b.Feed.Publish(s.UserID, domain.ChangeEvent{
		Table:     "user_settings",
		Type:      domain.ChangeUpdate,
		Record:    asRecord(s),
		OldRecord: asRecord(old),
	})
	return nil
}

// Upload implements ports.ObjectStorage.
func (b *Backend) Upload(ctx context.Context, bucket, path, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("storage.upload"); err != nil {
		return err
	}
	b.objects[bucket+"/"+path] = data
	return nil
}

// Remove implements ports.ObjectStorage.
func (b *Backend) Remove(ctx context.Context, bucket string, paths ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("storage.remove"); err != nil {
		return err
	}
	for _, p := range paths {
		delete(b.objects, bucket+"/"+p)
	}
	return nil
}

// PublicURL implements ports.ObjectStorage.
func (b *Backend) PublicURL(bucket, path string) string {
	return "memory://" + bucket + "/" + path
}

// Object returns a stored file.
func (b *Backend) Object(bucket, path string) (io.Reader, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[bucket+"/"+path]
	if !ok {
		return nil, false
	}
	return bytes.NewReader(data), true
}

// Verify implements ports.SessionVerifier.
func (b *Backend) Verify(ctx context.Context, token string) (*domain.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("session.verify"); err != nil {
		return nil, err
	}
	s, ok := b.sessions[token]
	if !ok || s.Expired(time.Now()) {
		return nil, domain.ErrUnauthenticated
	}
	s.Metadata.PreferredDomains = slices.Clone(s.Metadata.PreferredDomains)
	return &s, nil
}

// Revoke implements ports.SessionRevoker.
func (b *Backend) Revoke(ctx context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, token)
	return nil
}
