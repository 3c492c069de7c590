// Package session is a small SQLite-backed store for per-viewer browsing
// state. Payloads are opaque bytes so the package has no knowledge of what
// a session contains; expiry is enforced on read and reclaimed by a
// periodic sweep.
package session
