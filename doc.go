/*
Package mentorai is the server side of a career-mentoring application.

Users authenticate against a hosted backend, complete a five-step onboarding
wizard, browse a catalog of companies, pick up to three of them and follow a
roadmap of five milestones built for that selection.

# Architecture

The flows live in small packages (onboarding, selector, roadmap) that operate
on a per-session domain.Workspace. An App ties them to a session.Manager, which
serializes updates to each workspace, and to the hosted backend reached through
the interfaces in pkg/ports. Adapters implement those interfaces for the hosted
service (supabase), a local SQLite database and memory; Redis keeps workspaces
shared between replicas.

# Usage

	backend := memory.NewBackend()
	app := mentorai.New(mentorai.Backend{
		Profiles:  backend,
		Companies: backend.Companies(),
		Settings:  backend.Settings(),
		Verifier:  backend,
	}, session.NewManager(memory.NewStore()))

	view, err := app.Onboarding(ctx, sess)

The HTTP API (pkg/adapters/http), the MCP tool server (pkg/adapters/mcp) and
the mentorai CLI are thin shells around App.
*/
package mentorai
