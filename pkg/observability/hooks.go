package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/mentorai/pkg/domain"
)

// Hooks builds lifecycle hooks that log through logger and count on m.
// Either may be nil.
func Hooks(logger *slog.Logger, m *Metrics) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.FlowEvent) {
			if logger != nil {
				logger.DebugContext(ctx, "flow_transition",
					"flow", e.Flow,
					"action", e.Action,
					"from", e.From,
					"to", e.To,
					"rejected", e.Rejected,
					"session_id", e.SessionID,
				)
			}
			if m == nil {
				return
			}
			if e.Rejected {
				m.Rejections.WithLabelValues(e.Flow, e.Action).Inc()
				return
			}
			m.Transitions.WithLabelValues(e.Flow, e.Action).Inc()
			if e.Flow == "roadmap" && e.Action == "build" {
				m.RoadmapBuilds.Inc()
			}
		},
		OnSubmit: func(ctx context.Context, e *domain.FlowEvent, err error) {
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			if logger != nil {
				if err != nil {
					logger.ErrorContext(ctx, "onboarding_submit_failed", "session_id", e.SessionID, "err", err)
				} else {
					logger.InfoContext(ctx, "onboarding_submitted", "session_id", e.SessionID)
				}
			}
			if m != nil {
				m.Submissions.WithLabelValues(outcome).Inc()
			}
		},
	}
}
