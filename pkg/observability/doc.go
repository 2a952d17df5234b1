/*
Package observability wires flow lifecycle hooks to structured logs and Prometheus metrics.

Flows emit domain.FlowEvent values through domain.LifecycleHooks; Hooks returns a set
that logs each event with slog and records it on a Metrics instance.
*/
package observability
