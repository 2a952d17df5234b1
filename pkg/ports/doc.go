/*
Package ports defines the driven ports (interfaces) of mentorai.

These interfaces decouple the flows from the hosted backend, allowing the same
wizard, selector and roadmap code to run against the hosted service, a local
SQLite database or in-memory fakes.

# Key Interfaces

  - WorkspaceStore: persists per-session drafts (memory or Redis).
  - DistributedLocker: coordinates workspace access across replicas.
  - ProfileStore, CompanyCatalog, SettingsStore: the remote tables the flows read and update.
  - Collection / Lister: per-user rows (education, experience, certifications, projects, skills).
  - ObjectStorage: certificate files.
  - ChangeFeed: realtime row changes.
  - SessionVerifier: turns a bearer token into a domain.Session.
*/
package ports
