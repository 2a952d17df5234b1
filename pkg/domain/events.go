package domain

import (
	"context"
	"time"
)

// ChangeType is the kind of row change delivered by a change feed.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent is one row change on a subscribed table.
type ChangeEvent struct {
	Table     string         `json:"table"`
	Type      ChangeType     `json:"type"`
	Record    map[string]any `json:"record,omitempty"`
	OldRecord map[string]any `json:"old_record,omitempty"`
	At        time.Time      `json:"commit_timestamp"`
}

// FlowEvent is emitted by the flows for observability.
type FlowEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Flow      string    `json:"flow"`
	Action    string    `json:"action"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Rejected  bool      `json:"rejected,omitempty"`
}

// LifecycleHooks defines callbacks for flow observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *FlowEvent)
	OnSubmit     func(context.Context, *FlowEvent, error)
}

// Emit calls OnTransition when set.
func (h LifecycleHooks) Emit(ctx context.Context, e *FlowEvent) {
	if h.OnTransition != nil {
		h.OnTransition(ctx, e)
	}
}

// EmitSubmit calls OnSubmit when set.
func (h LifecycleHooks) EmitSubmit(ctx context.Context, e *FlowEvent, err error) {
	if h.OnSubmit != nil {
		h.OnSubmit(ctx, e, err)
	}
}
