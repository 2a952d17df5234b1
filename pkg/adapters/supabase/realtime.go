package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/ports"
	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/gjson"
)

const (
	realtimePath      = "/realtime/v1/websocket"
	heartbeatInterval = 25 * time.Second
	joinTimeout       = 10 * time.Second
)

var _ ports.ChangeFeed = (*Realtime)(nil)

// phxMessage is a Phoenix channel frame.
type phxMessage struct {
	Topic   string `json:"topic"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
	Ref     string `json:"ref"`
	JoinRef string `json:"join_ref,omitempty"`
}

// Realtime subscribes to postgres_changes over the realtime websocket.
// Each subscription owns one connection.
type Realtime struct {
	c      *Client
	dialer *websocket.Dialer
}

// Realtime returns the ports.ChangeFeed of the project.
func (c *Client) Realtime() *Realtime {
	return &Realtime{c: c, dialer: websocket.DefaultDialer}
}

func (r *Realtime) endpoint() string {
	u := *r.c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path += realtimePath
	q := u.Query()
	q.Set("apikey", r.c.anonKey)
	q.Set("vsn", "1.0.0")
	u.RawQuery = q.Encode()
	return u.String()
}

// Subscribe implements ports.ChangeFeed. It returns once the channel join is
// acknowledged.
func (r *Realtime) Subscribe(ctx context.Context, table, userID string) (<-chan domain.ChangeEvent, error) {
	conn, _, err := r.dialer.DialContext(ctx, r.endpoint(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: realtime dial: %w", domain.ErrRemote, err)
	}

	sub := &subscription{
		conn:   conn,
		topic:  "realtime:" + table + ":" + userID,
		out:    make(chan domain.ChangeEvent, 16),
		done:   make(chan struct{}),
		logger: r.c.logger,
	}
	join := phxMessage{
		Topic: sub.topic,
		Event: "phx_join",
		Payload: map[string]any{
			"config": map[string]any{
				"postgres_changes": []map[string]string{{
					"event":  "*",
					"schema": "public",
					"table":  table,
					"filter": "user_id=eq." + userID,
				}},
			},
			"access_token": r.c.bearer(ctx),
		},
		Ref:     sub.nextRef(),
		JoinRef: "1",
	}
	if err := sub.write(join); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: realtime join: %w", domain.ErrRemote, err)
	}
	if err := sub.awaitJoin(join.Ref); err != nil {
		_ = conn.Close()
		return nil, err
	}

	go sub.heartbeat(ctx, r.c.heartbeat)
	go sub.read(ctx)
	return sub.out, nil
}

type subscription struct {
	conn   *websocket.Conn
	topic  string
	out    chan domain.ChangeEvent
	done   chan struct{} // closed when read stops
	logger *slog.Logger

	mu  sync.Mutex
	ref int
}

func (s *subscription) nextRef() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ref++
	return strconv.Itoa(s.ref)
}

func (s *subscription) write(msg phxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(msg)
}

func (s *subscription) awaitJoin(ref string) error {
	_ = s.conn.SetReadDeadline(time.Now().Add(joinTimeout))
	defer func() { _ = s.conn.SetReadDeadline(time.Time{}) }()
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("%w: realtime join: %w", domain.ErrRemote, err)
		}
		frame := gjson.ParseBytes(raw)
		if frame.Get("event").String() != "phx_reply" || frame.Get("ref").String() != ref {
			continue
		}
		if status := frame.Get("payload.status").String(); status != "ok" {
			reason := frame.Get("payload.response.reason").String()
			return fmt.Errorf("%w: realtime join %s: %s", domain.ErrRemote, status, reason)
		}
		return nil
	}
}

func (s *subscription) heartbeat(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			_ = s.conn.Close()
			return
		case <-ctx.Done():
			s.mu.Lock()
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			s.mu.Unlock()
			_ = s.conn.Close()
			return
		case <-ticker.C:
			if err := s.write(phxMessage{Topic: "phoenix", Event: "heartbeat", Payload: map[string]any{}, Ref: s.nextRef()}); err != nil {
				s.logger.Debug("Realtime heartbeat failed", "topic", s.topic, "err", err)
			}
		}
	}
}

func (s *subscription) read(ctx context.Context) {
	defer close(s.out)
	defer close(s.done)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("Realtime connection closed", "topic", s.topic, "err", err)
			}
			return
		}
		frame := gjson.ParseBytes(raw)
		if frame.Get("event").String() != "postgres_changes" {
			continue
		}
		evt, err := DecodeChange(raw)
		if err != nil {
			s.logger.Debug("Dropping realtime frame", "topic", s.topic, "err", err)
			continue
		}
		select {
		case s.out <- evt:
		case <-ctx.Done():
			return
		}
	}
}

// DecodeChange decodes the data of a postgres_changes frame.
func DecodeChange(frame []byte) (domain.ChangeEvent, error) {
	var evt domain.ChangeEvent
	data := gjson.GetBytes(frame, "payload.data")
	if !data.IsObject() {
		return evt, fmt.Errorf("frame has no change data")
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(data.Raw), &raw); err != nil {
		return evt, err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     &evt,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return evt, err
	}
	if err := dec.Decode(raw); err != nil {
		return evt, fmt.Errorf("decode change: %w", err)
	}
	return evt, nil
}
