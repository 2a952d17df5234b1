package supabase_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/mentorai/pkg/adapters/supabase"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anonKey = "anon-key"

// recorder is a fake project: handlers are looked up by "METHOD /path".
type recorder struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []*http.Request
	bodies   []string
}

func newProject(t *testing.T) (*recorder, *supabase.Client) {
	t.Helper()
	rec := &recorder{routes: make(map[string]http.HandlerFunc)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, r)
		rec.bodies = append(rec.bodies, string(body))
		h, ok := rec.routes[r.Method+" "+r.URL.Path]
		rec.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"no route"}`))
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := supabase.New(srv.URL, anonKey)
	require.NoError(t, err)
	return rec, c
}

func (r *recorder) handle(pattern string, status int, body string) {
	r.routes[pattern] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (r *recorder) last() (*http.Request, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1], r.bodies[len(r.bodies)-1]
}

func withSession(userID string) context.Context {
	return domain.ContextWithSession(context.Background(), &domain.Session{ID: "s1", UserID: userID, AccessToken: "user-token"})
}

func TestNew_Validates(t *testing.T) {
	_, err := supabase.New("not a url", anonKey)
	assert.Error(t, err)
	_, err = supabase.New("https://x.supabase.co", "")
	assert.Error(t, err)
}

func TestProfiles(t *testing.T) {
	rec, c := newProject(t)
	rec.handle("GET /rest/v1/profiles", http.StatusOK, `{"id":"u1","username":"ada","full_name":"Ada L"}`)
	rec.handle("GET /auth/v1/user", http.StatusOK, `{"id":"u1","email":"ada@example.com","user_metadata":{"onboarded":true,"career_goal":"SRE"}}`)

	p, err := c.Profiles().GetByUsername(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada L", p.FullName)
	req, _ := rec.last()
	assert.Equal(t, "eq.ada", req.URL.Query().Get("username"))
	assert.Equal(t, "application/vnd.pgrst.object+json", req.Header.Get("Accept"))
	assert.Equal(t, "Bearer "+anonKey, req.Header.Get("Authorization"))
	assert.Equal(t, anonKey, req.Header.Get("apikey"))

	p, err = c.Profiles().Get(withSession("u1"), "u1")
	require.NoError(t, err)
	assert.True(t, p.Onboarded, "metadata of the signed-in user is merged")
	assert.Equal(t, "SRE", p.CareerGoal)
	req, _ = rec.last()
	assert.Equal(t, "Bearer user-token", req.Header.Get("Authorization"))

	_, err = c.Profiles().GetByUsername(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfiles_NotFound(t *testing.T) {
	rec, c := newProject(t)
	rec.handle("GET /rest/v1/profiles", http.StatusNotAcceptable,
		`{"code":"PGRST116","details":"The result contains 0 rows","hint":null,"message":"JSON object requested, multiple (or no) rows returned"}`)

	_, err := c.Profiles().GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfiles_Update(t *testing.T) {
	rec, c := newProject(t)
	rec.handle("PUT /auth/v1/user", http.StatusOK, `{"id":"u1"}`)

	onboarded := true
	update := domain.ProfileUpdate{Onboarded: &onboarded, PreferredDomains: []string{"ai-ml"}}

	err := c.Profiles().Update(context.Background(), "u1", update)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	require.NoError(t, c.Profiles().Update(withSession("u1"), "u1", update))
	req, body := rec.last()
	assert.Equal(t, "Bearer user-token", req.Header.Get("Authorization"))
	assert.JSONEq(t, `{"data":{"onboarded":true,"preferred_domains":["ai-ml"]}}`, body)
}

func TestErrors(t *testing.T) {
	rec, c := newProject(t)
	rec.handle("GET /rest/v1/company", http.StatusInternalServerError, `{"message":"boom"}`)
	rec.handle("GET /auth/v1/user", http.StatusUnauthorized, `{"code":401,"msg":"invalid JWT"}`)

	_, err := c.Companies().List(context.Background())
	assert.ErrorIs(t, err, domain.ErrRemote)
	assert.Contains(t, err.Error(), "boom")

	_, err = c.Auth().Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestCompanies(t *testing.T) {
	rec, c := newProject(t)
	rec.handle("GET /rest/v1/company", http.StatusOK, `[{"id":"a","company_name":"Acme","dsa_level":2,"ug_compensation":20}]`)

	list, err := c.Companies().List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Name)
	assert.Equal(t, 2, list[0].DSALevel)
	req, _ := rec.last()
	assert.Equal(t, "created_at.asc", req.URL.Query().Get("order"))
}

func TestSettings(t *testing.T) {
	rec, c := newProject(t)
	rec.handle("POST /rest/v1/user_settings", http.StatusCreated, `[{"id":"row-1","user_id":"u1"}]`)
	rec.handle("PATCH /rest/v1/user_settings", http.StatusOK, `[]`)

	id, err := c.Settings().Insert(context.Background(), domain.Settings{UserID: "u1", PublicProfile: true})
	require.NoError(t, err)
	assert.Equal(t, "row-1", id)
	req, body := rec.last()
	assert.Equal(t, "return=representation", req.Header.Get("Prefer"))
	assert.NotContains(t, body, `"id"`)
	assert.Contains(t, body, `"public_profile":true`)

	err = c.Settings().Update(context.Background(), domain.Settings{ID: "row-9", UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	req, _ = rec.last()
	assert.Equal(t, "eq.row-9", req.URL.Query().Get("id"))
}

func TestTable(t *testing.T) {
	rec, c := newProject(t)
	rec.handle("GET /rest/v1/education", http.StatusOK, `[{"id":"e1","user_id":"u1","school":"MIT"}]`)
	rec.handle("POST /rest/v1/education", http.StatusCreated, `[{"id":"e2","user_id":"u1","school":"ETH"}]`)
	rec.handle("DELETE /rest/v1/education", http.StatusNoContent, ``)

	stores := c.CredentialStores()

	list, err := stores.Education.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	req, _ := rec.last()
	assert.Equal(t, "start_date.desc", req.URL.Query().Get("order"))
	assert.Equal(t, "eq.u1", req.URL.Query().Get("user_id"))

	row, err := stores.Education.Insert(context.Background(), domain.Education{UserID: "u1", School: "ETH"})
	require.NoError(t, err)
	assert.Equal(t, "e2", row.ID)
	_, body := rec.last()
	assert.True(t, strings.HasPrefix(body, "["), "PostgREST inserts take an array")

	require.NoError(t, stores.Education.Delete(context.Background(), "u1", "e2"))
	req, _ = rec.last()
	assert.Equal(t, "eq.e2", req.URL.Query().Get("id"))
}

func TestStorage(t *testing.T) {
	rec, c := newProject(t)
	rec.handle("POST /storage/v1/object/cert/certifications/u1/1_a.pdf", http.StatusOK, `{"Key":"cert/certifications/u1/1_a.pdf"}`)
	rec.handle("DELETE /storage/v1/object/cert", http.StatusOK, `[]`)

	st := c.Storage()
	require.NoError(t, st.Upload(context.Background(), "cert", "certifications/u1/1_a.pdf", "application/pdf", strings.NewReader("%PDF")))
	req, body := rec.last()
	assert.Equal(t, "application/pdf", req.Header.Get("Content-Type"))
	assert.Equal(t, "%PDF", body)

	require.NoError(t, st.Remove(context.Background(), "cert", "certifications/u1/1_a.pdf"))
	_, body = rec.last()
	assert.JSONEq(t, `{"prefixes":["certifications/u1/1_a.pdf"]}`, body)

	assert.True(t, strings.HasSuffix(st.PublicURL("cert", "certifications/u1/1_a.pdf"),
		"/storage/v1/object/public/cert/certifications/u1/1_a.pdf"))
}

func TestAuth(t *testing.T) {
	rec, c := newProject(t)
	rec.handle("GET /auth/v1/user", http.StatusOK, `{"id":"u1","email":"ada@example.com","user_metadata":{"full_name":"Ada"}}`)
	rec.handle("POST /auth/v1/logout", http.StatusNoContent, ``)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        "u1",
		"session_id": "sess-7",
		"exp":        exp.Unix(),
	}).SignedString([]byte("whatever"))
	require.NoError(t, err)

	s, err := c.Auth().Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "sess-7", s.ID)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "Ada", s.Metadata.FullName)
	assert.True(t, s.ExpiresAt.Equal(exp))

	require.NoError(t, c.Auth().Revoke(context.Background(), token))
	req, _ := rec.last()
	assert.Equal(t, "Bearer "+token, req.Header.Get("Authorization"))

	_, err = c.Auth().Verify(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestDecodeChange(t *testing.T) {
	frame := []byte(`{"event":"postgres_changes","topic":"realtime:x","payload":{"ids":[1],"data":{
		"schema":"public","table":"user_settings","type":"UPDATE",
		"commit_timestamp":"2024-05-01T10:00:00.123Z",
		"record":{"id":"row-1","public_profile":true},"old_record":{"id":"row-1"},"columns":[],"errors":null}}}`)

	evt, err := supabase.DecodeChange(frame)
	require.NoError(t, err)
	assert.Equal(t, "user_settings", evt.Table)
	assert.Equal(t, domain.ChangeUpdate, evt.Type)
	assert.Equal(t, true, evt.Record["public_profile"])
	assert.Equal(t, "row-1", evt.OldRecord["id"])
	assert.Equal(t, 2024, evt.At.Year())

	_, err = supabase.DecodeChange([]byte(`{"event":"phx_reply","payload":{"status":"ok"}}`))
	assert.Error(t, err)
}

func TestRealtime(t *testing.T) {
	upgrader := websocket.Upgrader{}
	joined := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/realtime/v1/websocket", r.URL.Path)
		assert.Equal(t, anonKey, r.URL.Query().Get("apikey"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var join map[string]any
		if err := conn.ReadJSON(&join); err != nil {
			return
		}
		joined <- join
		_ = conn.WriteJSON(map[string]any{
			"topic": join["topic"], "event": "phx_reply", "ref": join["ref"],
			"payload": map[string]any{"status": "ok", "response": map[string]any{}},
		})
		_ = conn.WriteJSON(map[string]any{
			"topic": join["topic"], "event": "postgres_changes", "ref": nil,
			"payload": map[string]any{"data": map[string]any{
				"table": "user_settings", "type": "INSERT",
				"commit_timestamp": "2024-05-01T10:00:00Z",
				"record":           map[string]any{"user_id": "u1"},
			}},
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c, err := supabase.New(srv.URL, anonKey)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(withSession("u1"))
	events, err := c.Realtime().Subscribe(ctx, "user_settings", "u1")
	require.NoError(t, err)

	join := <-joined
	assert.Equal(t, "phx_join", join["event"])
	payload, _ := json.Marshal(join["payload"])
	assert.Contains(t, string(payload), `"filter":"user_id=eq.u1"`)
	assert.Contains(t, string(payload), `"access_token":"user-token"`)

	select {
	case evt := <-events:
		assert.Equal(t, domain.ChangeInsert, evt.Type)
		assert.Equal(t, "u1", evt.Record["user_id"])
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel closes when the subscription ends")
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed")
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRealtime_ServerCloseStopsHeartbeat(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var join map[string]any
		if err := conn.ReadJSON(&join); err == nil {
			_ = conn.WriteJSON(map[string]any{
				"topic": join["topic"], "event": "phx_reply", "ref": join["ref"],
				"payload": map[string]any{"status": "ok", "response": map[string]any{}},
			})
		}
		_ = conn.Close()
	}))
	defer srv.Close()

	var logs lockedBuffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, err := supabase.New(srv.URL, anonKey, supabase.WithLogger(logger), supabase.WithHeartbeat(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := c.Realtime().Subscribe(ctx, "user_settings", "u1")
	require.NoError(t, err)

	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel closes when the server hangs up")
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed")
	}

	time.Sleep(200 * time.Millisecond)
	assert.Contains(t, logs.String(), "Realtime connection closed")
	assert.NotContains(t, logs.String(), "Realtime heartbeat failed", "no pings on a dead connection")
}
