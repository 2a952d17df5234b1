package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/google/uuid"
)

// Table is an in-memory per-user collection. It implements ports.Collection.
type Table[T domain.Record] struct {
	name   string
	assign func(T, string) T
	feed   *Feed

	mu   sync.RWMutex
	rows []T
}

// NewTable creates a table. assign returns the row with its ID set.
func NewTable[T domain.Record](name string, assign func(T, string) T, feed *Feed) *Table[T] {
	return &Table[T]{name: name, assign: assign, feed: feed}
}

// List returns the rows owned by userID in insertion order.
func (t *Table[T]) List(ctx context.Context, userID string) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0)
	for _, r := range t.rows {
		if r.OwnerID() == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Insert stores rec under a fresh ID.
func (t *Table[T]) Insert(ctx context.Context, rec T) (T, error) {
	rec = t.assign(rec, uuid.NewString())

	t.mu.Lock()
	t.rows = append(t.rows, rec)
	t.mu.Unlock()

	t.publish(rec.OwnerID(), domain.ChangeEvent{Table: t.name, Type: domain.ChangeInsert, Record: asRecord(rec)})
	return rec, nil
}

// Get returns one row.
func (t *Table[T]) Get(ctx context.Context, userID, id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, r := range t.rows {
		if r.RecordID() == id && r.OwnerID() == userID {
			return r, nil
		}
	}
	var zero T
	return zero, domain.ErrNotFound
}

// Delete removes one row. Deleting a missing row is not an error.
func (t *Table[T]) Delete(ctx context.Context, userID, id string) error {
	t.mu.Lock()
	i := slices.IndexFunc(t.rows, func(r T) bool { return r.RecordID() == id && r.OwnerID() == userID })
	if i < 0 {
		t.mu.Unlock()
		return nil
	}
	old := t.rows[i]
	t.rows = slices.Delete(t.rows, i, i+1)
	t.mu.Unlock()

	t.publish(userID, domain.ChangeEvent{Table: t.name, Type: domain.ChangeDelete, OldRecord: asRecord(old)})
	return nil
}

func (t *Table[T]) publish(userID string, evt domain.ChangeEvent) {
	if t.feed != nil {
		t.feed.Publish(userID, evt)
	}
}
