/*
Package domain contains the core models of the mentorai flows.

It defines the onboarding state, the company catalog records and filters, the
selection set, the roadmap milestones and the per-session Workspace that ties
them together. This package is kept pure and free of I/O; adapters and
services live in sibling packages and reach the outside world through ports.

# Key Entities

  - OnboardingState: the data collected by the five-step wizard.
  - CompanyFilter / Selection: derived filtering and the bounded (<= 3) pick list.
  - Roadmap / Milestone: the templated plan built from a selection.
  - Workspace: the draft state of one session (wizard, selector, roadmap).
  - Session: the authenticated caller, injected per request.
*/
package domain
