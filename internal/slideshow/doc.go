// Package slideshow orchestrates fair photo selection across three tiers:
// playlists, folders within the chosen playlist, and pictures within the
// chosen folder. Each tier prefers its least-played candidates so nothing
// repeats until its siblings have caught up. The orchestrator is stateless
// between calls; all per-viewer state travels in the Session value.
package slideshow
