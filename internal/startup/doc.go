// Package startup loads and validates runtime configuration. Settings come
// from built-in defaults, a JSON config file, and SLIDESHOW_-prefixed
// environment variables, in increasing order of precedence. A filesystem
// watcher surfaces config edits so long-lived sessions can pick up playlist
// changes without a restart.
package startup
