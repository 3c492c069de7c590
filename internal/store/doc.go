// Package store reads and writes the JSON index documents that persist
// fairness state and geolocation enrichment between requests.
//
// Three document families live in a single base directory:
//   - playlists_index.json: play counts per configured playlist
//   - playlist-<name>-index.json: play counts and GUIDs per folder
//   - folderpics-<GUID>-index.json: play counts and geodata per photo
//
// plus the geolocation_processing.lock marker used to keep enrichment
// passes from overlapping.
//
// Loads never fail: an absent or corrupt document is indistinguishable
// from one that has never existed. Saves rewrite the whole document, so
// concurrent writers are last-write-wins; this is a deliberate
// single-host trade-off.
package store
