package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aretw0/mentorai/pkg/domain"
)

// Feed is an in-process change feed. It implements ports.ChangeFeed.
type Feed struct {
	mu   sync.Mutex
	subs map[string]map[chan domain.ChangeEvent]struct{}
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[string]map[chan domain.ChangeEvent]struct{})}
}

func topic(table, userID string) string { return table + ":" + userID }

// Subscribe delivers changes of table owned by userID until ctx is done.
func (f *Feed) Subscribe(ctx context.Context, table, userID string) (<-chan domain.ChangeEvent, error) {
	ch := make(chan domain.ChangeEvent, 16)
	key := topic(table, userID)

	f.mu.Lock()
	if f.subs[key] == nil {
		f.subs[key] = make(map[chan domain.ChangeEvent]struct{})
	}
	f.subs[key][ch] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs[key], ch)
		if len(f.subs[key]) == 0 {
			delete(f.subs, key)
		}
		f.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// Publish fans a change out to subscribers. Slow subscribers miss events.
func (f *Feed) Publish(userID string, evt domain.ChangeEvent) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[topic(evt.Table, userID)] {
		select {
		case ch <- evt:
		default:
		}
	}
}

// asRecord converts a row into the loose map shape a change event carries.
func asRecord(v any) map[string]any {
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
