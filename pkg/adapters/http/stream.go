package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/mentorai/internal/logging"
	"github.com/aretw0/mentorai/pkg/domain"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager. A nil logger discards output.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener for sessionID. The returned func unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
		})
	}
}

// Broadcast sends msg to every listener of sessionID without blocking.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// Publish broadcasts a workspace diff to its session. Its signature matches
// session.WithDiffHook.
func (sm *StreamManager) Publish(ctx context.Context, diff *domain.WorkspaceDiff) {
	if diff == nil {
		return
	}
	b, err := json.Marshal(diff)
	if err != nil {
		sm.logger.ErrorContext(ctx, "SSE: diff encode failed", "session_id", diff.SessionID, "err", err)
		return
	}
	sm.Broadcast(diff.SessionID, string(b))
}

// Listeners returns how many listeners sessionID has.
func (sm *StreamManager) Listeners(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// SubscribeEvents handles the GET /api/events request (SSE). It streams the
// caller's workspace diffs as "diff" events and, when the backend has a change
// feed, refreshed settings as "settings" events. The optional watch query
// parameter (comma separated: onboarding, selector, roadmap) filters diffs.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, r, fmt.Errorf("streaming not supported"))
		return
	}
	sess := session(r)
	ctx := r.Context()

	ch, cancel := s.Streams.Subscribe(sess.ID)
	defer cancel()

	settingsCh := make(chan domain.Settings, 1)
	go func() {
		err := s.App.Settings().Watch(ctx, sess.UserID, func(st domain.Settings) {
			select {
			case settingsCh <- st:
			default:
			}
		})
		if err != nil && ctx.Err() == nil {
			s.logger.DebugContext(ctx, "SSE: settings watch unavailable", "err", err)
		}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.InfoContext(ctx, "SSE: Subscribing to session updates", "session_id", sess.ID)

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "SSE Client Disconnected", "session_id", sess.ID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !watched(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", msg)
			flusher.Flush()
		case st := <-settingsCh:
			b, err := json.Marshal(st)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: settings\ndata: %s\n\n", b)
			flusher.Flush()
		}
	}
}

// watched reports whether the diff in msg touches any of the watched sections.
// Undecodable messages are passed through.
func watched(msg string, watchList []string) bool {
	var diff domain.WorkspaceDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watchList {
		field = strings.TrimSpace(field)
		switch field {
		case "onboarding":
			if diff.Step != nil || diff.Onboarding != nil || slices.Contains(diff.Cleared, field) {
				return true
			}
		case "selector":
			if diff.Filter != nil || diff.Selection != nil || slices.Contains(diff.Cleared, field) {
				return true
			}
		case "roadmap":
			if len(diff.Milestones) > 0 || slices.Contains(diff.Cleared, field) {
				return true
			}
		}
	}
	return false
}
