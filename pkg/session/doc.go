/*
Package session serializes access to per-session workspaces.

A Manager wraps a ports.WorkspaceStore with a reference-counted local mutex per
session and an optional distributed lock, so read-modify-write cycles from
concurrent requests (or replicas) never interleave. Each successful Update
yields a domain.WorkspaceDiff that can be pushed to live clients.
*/
package session
