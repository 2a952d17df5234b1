// Package sqlite is a single-file local backend: profiles, the company
// catalog, settings, the credential collections and certificate files, kept in
// one SQLite database. Writes to settings and collections are published on an
// in-process change feed.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/mentorai/pkg/adapters/memory"
	"github.com/aretw0/mentorai/pkg/adapters/sqlite/migrations"
	"github.com/aretw0/mentorai/pkg/credentials"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/ports"
	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SettingsTable is the name change events for settings carry.
const SettingsTable = "user_settings"

// Store implements the backend ports on SQLite.
type Store struct {
	db   *sql.DB
	Feed *memory.Feed

	Education      *Table[domain.Education]
	Experiences    *Table[domain.Experience]
	Certifications *Table[domain.Certification]
	Projects       *Table[domain.Project]
	Skills         *Table[domain.Skill]

	now func() time.Time
}

var (
	_ ports.ProfileStore   = (*Store)(nil)
	_ ports.CompanyCatalog = (*Catalog)(nil)
	_ ports.SettingsStore  = (*Settings)(nil)
	_ ports.ObjectStorage  = (*Store)(nil)
)

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// Open opens (creating when needed) the database at path and applies the
// embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := Migrate(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return New(db), nil
}

// New wraps an already migrated database.
func New(db *sql.DB) *Store {
	s := &Store{db: db, Feed: memory.NewFeed(), now: time.Now}
	s.Education = NewTable(s, "education", func(e domain.Education, id string) domain.Education { e.ID = id; return e })
	s.Experiences = NewTable(s, "experiences", func(e domain.Experience, id string) domain.Experience { e.ID = id; return e })
	s.Certifications = NewTable(s, "licenses_certifications", func(c domain.Certification, id string) domain.Certification { c.ID = id; return c })
	s.Projects = NewTable(s, "projects", func(p domain.Project, id string) domain.Project { p.ID = id; return p })
	s.Skills = NewTable(s, "skills", func(k domain.Skill, id string) domain.Skill { k.ID = id; return k })
	return s
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrRemote, op, err)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

// Get implements ports.ProfileStore.
func (s *Store) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.profile(ctx, `SELECT data FROM profiles WHERE id = ?`, userID)
}

// GetByUsername implements ports.ProfileStore.
func (s *Store) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	if username == "" {
		return nil, domain.ErrNotFound
	}
	return s.profile(ctx, `SELECT data FROM profiles WHERE username = ?`, username)
}

func (s *Store) profile(ctx context.Context, query string, arg string) (*domain.Profile, error) {
	var data string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, remote("profile.get", err)
	}
	var p domain.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, remote("profile.get", err)
	}
	return &p, nil
}

// Update implements ports.ProfileStore. Unknown users get a fresh profile.
func (s *Store) Update(ctx context.Context, userID string, update domain.ProfileUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return remote("profile.update", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := domain.Profile{ID: userID}
	var data string
	switch err := tx.QueryRowContext(ctx, `SELECT data FROM profiles WHERE id = ?`, userID).Scan(&data); {
	case err == nil:
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return remote("profile.update", err)
		}
	case !errors.Is(err, sql.ErrNoRows):
		return remote("profile.update", err)
	}

	update.Apply(&p)
	p.UpdatedAt = s.now().UTC()
	if err := putProfile(ctx, tx, p); err != nil {
		return remote("profile.update", err)
	}
	return remote("profile.update", tx.Commit())
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putProfile(ctx context.Context, db execer, p domain.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO profiles (id, username, data, updated_at) VALUES (?, NULLIF(?, ''), ?, ?)
		 ON CONFLICT(id) DO UPDATE SET username = excluded.username, data = excluded.data, updated_at = excluded.updated_at`,
		p.ID, p.Username, string(raw), toMillis(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: username %q is taken", domain.ErrValidation, p.Username)
	}
	return err
}

// PutProfile inserts or replaces a profile, for seeding.
func (s *Store) PutProfile(ctx context.Context, p domain.Profile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = s.now()
	}
	return putProfile(ctx, s.db, p)
}

// Companies is the ports.CompanyCatalog view of the store.
func (s *Store) Companies() *Catalog { return (*Catalog)(s) }

// Catalog adapts Store to ports.CompanyCatalog.
type Catalog Store

// List returns the catalog in creation order.
func (c *Catalog) List(ctx context.Context) ([]domain.Company, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT data FROM companies ORDER BY created_at, rowid`)
	if err != nil {
		return nil, remote("companies.list", err)
	}
	defer rows.Close()

	out := make([]domain.Company, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, remote("companies.list", err)
		}
		var co domain.Company
		if err := json.Unmarshal([]byte(data), &co); err != nil {
			return nil, remote("companies.list", err)
		}
		out = append(out, co)
	}
	return out, remote("companies.list", rows.Err())
}

// PutCompanies inserts or replaces catalog rows. Companies without an id get one.
func (s *Store) PutCompanies(ctx context.Context, companies ...domain.Company) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, co := range companies {
		if co.ID == "" {
			co.ID = uuid.NewString()
		}
		if co.CreatedAt.IsZero() {
			co.CreatedAt = s.now().UTC()
		}
		raw, err := json.Marshal(co)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO companies (id, data, created_at) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
			co.ID, string(raw), toMillis(co.CreatedAt),
		); err != nil {
			return fmt.Errorf("put company %s: %w", co.ID, err)
		}
	}
	return tx.Commit()
}

// Settings is the ports.SettingsStore view of the store.
func (s *Store) Settings() *Settings { return (*Settings)(s) }

// Settings adapts Store to ports.SettingsStore.
type Settings Store

// Get returns the row of userID.
func (t *Settings) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	var (
		st        domain.Settings
		updatedAt int64
	)
	err := t.db.QueryRowContext(ctx,
		`SELECT id, user_id, email_notifications, public_profile, ai_learning_assistant, updated_at
		 FROM user_settings WHERE user_id = ?`, userID,
	).Scan(&st.ID, &st.UserID, &st.EmailNotifications, &st.PublicProfile, &st.AILearningAssistant, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, remote("settings.get", err)
	}
	st.UpdatedAt = fromMillis(updatedAt)
	return &st, nil
}

// Insert creates the row of st.UserID.
func (t *Settings) Insert(ctx context.Context, st domain.Settings) (string, error) {
	st.ID = uuid.NewString()
	st.UpdatedAt = t.now().UTC()
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO user_settings (id, user_id, email_notifications, public_profile, ai_learning_assistant, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		st.ID, st.UserID, st.EmailNotifications, st.PublicProfile, st.AILearningAssistant, toMillis(st.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return "", fmt.Errorf("%w: settings.insert: row exists for %s", domain.ErrRemote, st.UserID)
	}
	if err != nil {
		return "", remote("settings.insert", err)
	}
	t.Feed.Publish(st.UserID, domain.ChangeEvent{Table: SettingsTable, Type: domain.ChangeInsert, Record: record(st)})
	return st.ID, nil
}

// Update overwrites the row identified by st.ID.
func (t *Settings) Update(ctx context.Context, st domain.Settings) error {
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = t.now().UTC()
	}
	res, err := t.db.ExecContext(ctx,
		`UPDATE user_settings
		 SET email_notifications = ?, public_profile = ?, ai_learning_assistant = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		st.EmailNotifications, st.PublicProfile, st.AILearningAssistant, toMillis(st.UpdatedAt), st.ID, st.UserID,
	)
	if err != nil {
		return remote("settings.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	t.Feed.Publish(st.UserID, domain.ChangeEvent{Table: SettingsTable, Type: domain.ChangeUpdate, Record: record(st)})
	return nil
}

// Upload implements ports.ObjectStorage.
func (s *Store) Upload(ctx context.Context, bucket, path, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO objects (bucket, path, content_type, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		bucket, path, contentType, data, toMillis(s.now()),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: storage.upload: %s/%s already exists", domain.ErrRemote, bucket, path)
	}
	return remote("storage.upload", err)
}

// Remove implements ports.ObjectStorage.
func (s *Store) Remove(ctx context.Context, bucket string, paths ...string) error {
	for _, p := range paths {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM objects WHERE bucket = ? AND path = ?`, bucket, p); err != nil {
			return remote("storage.remove", err)
		}
	}
	return nil
}

// PublicURL implements ports.ObjectStorage.
func (s *Store) PublicURL(bucket, path string) string {
	return "sqlite://" + url.PathEscape(bucket) + "/" + path
}

// Object returns a stored file and its content type.
func (s *Store) Object(ctx context.Context, bucket, path string) (io.Reader, string, error) {
	var (
		data        []byte
		contentType string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT body, content_type FROM objects WHERE bucket = ? AND path = ?`, bucket, path,
	).Scan(&data, &contentType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", domain.ErrNotFound
	}
	if err != nil {
		return nil, "", remote("storage.get", err)
	}
	return bytes.NewReader(data), contentType, nil
}

func record(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// CredentialStores returns the credential collections backed by s.
func (s *Store) CredentialStores() credentials.Stores {
	return credentials.Stores{
		Education:      s.Education,
		Experiences:    s.Experiences,
		Certifications: s.Certifications,
		Projects:       s.Projects,
		Skills:         s.Skills,
		Files:          s,
	}
}
