// Package handlers implements the HTTP API: next-photo selection, photo
// byte serving, enrichment status and triggering, and health checks.
// Browsing state rides a session cookie backed by the session store, so
// the selection engine itself stays stateless between requests.
package handlers
