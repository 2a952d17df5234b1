package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/ports"
	"github.com/google/uuid"
)

var _ ports.Collection[domain.Skill] = (*Table[domain.Skill])(nil)

// Table is a per-user collection stored as JSON documents in the records
// table. It implements ports.Collection.
type Table[T domain.Record] struct {
	store  *Store
	name   string
	assign func(T, string) T
}

// NewTable creates a table named name. assign returns the row with its ID set.
func NewTable[T domain.Record](s *Store, name string, assign func(T, string) T) *Table[T] {
	return &Table[T]{store: s, name: name, assign: assign}
}

// List returns the rows owned by userID in insertion order.
func (t *Table[T]) List(ctx context.Context, userID string) ([]T, error) {
	rows, err := t.store.db.QueryContext(ctx,
		`SELECT data FROM records WHERE tbl = ? AND user_id = ? ORDER BY created_at, rowid`,
		t.name, userID,
	)
	if err != nil {
		return nil, remote(t.name+".list", err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, remote(t.name+".list", err)
		}
		var rec T
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, remote(t.name+".list", err)
		}
		out = append(out, rec)
	}
	return out, remote(t.name+".list", rows.Err())
}

// Insert stores rec under a fresh ID.
func (t *Table[T]) Insert(ctx context.Context, rec T) (T, error) {
	rec = t.assign(rec, uuid.NewString())
	raw, err := json.Marshal(rec)
	if err != nil {
		var zero T
		return zero, err
	}
	if _, err := t.store.db.ExecContext(ctx,
		`INSERT INTO records (tbl, id, user_id, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.name, rec.RecordID(), rec.OwnerID(), string(raw), toMillis(t.store.now()),
	); err != nil {
		var zero T
		return zero, remote(t.name+".insert", err)
	}
	t.store.Feed.Publish(rec.OwnerID(), domain.ChangeEvent{Table: t.name, Type: domain.ChangeInsert, Record: record(rec)})
	return rec, nil
}

// Get returns one row.
func (t *Table[T]) Get(ctx context.Context, userID, id string) (T, error) {
	var (
		zero T
		data string
	)
	err := t.store.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE tbl = ? AND id = ? AND user_id = ?`, t.name, id, userID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, domain.ErrNotFound
	}
	if err != nil {
		return zero, remote(t.name+".get", err)
	}
	var rec T
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return zero, remote(t.name+".get", err)
	}
	return rec, nil
}

// Delete removes one row. Deleting a missing row is not an error.
func (t *Table[T]) Delete(ctx context.Context, userID, id string) error {
	old, err := t.Get(ctx, userID, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := t.store.db.ExecContext(ctx,
		`DELETE FROM records WHERE tbl = ? AND id = ? AND user_id = ?`, t.name, id, userID,
	); err != nil {
		return remote(t.name+".delete", err)
	}
	t.store.Feed.Publish(userID, domain.ChangeEvent{Table: t.name, Type: domain.ChangeDelete, OldRecord: record(old)})
	return nil
}
