package store

import (
	"os"
	"time"

	"photo-slideshow/internal/logging"

	"github.com/goccy/go-json"
)

// lockFile is the marker preventing overlapping enrichment passes.
const lockFile = "geolocation_processing.lock"

// LockMarker records when and by whom an enrichment pass was started.
type LockMarker struct {
	StartedAt   int64  `json:"started_at"`
	TriggeredBy string `json:"triggered_by"`
}

// Age returns how long ago the marker was written.
func (m *LockMarker) Age(now time.Time) time.Duration {
	return now.Sub(time.Unix(m.StartedAt, 0))
}

// LockPath returns the location of the enrichment lock marker.
func (s *Store) LockPath() string {
	return s.resolve(lockFile)
}

// ReadLock returns the current lock marker, or nil when the marker is
// absent or unreadable. A corrupt marker is treated as absent so a broken
// file can never wedge enrichment permanently.
func (s *Store) ReadLock() *LockMarker {
	data, err := os.ReadFile(s.LockPath())
	if err != nil {
		return nil
	}

	var marker LockMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		logging.Warn("store: corrupt lock marker %s: %v", s.LockPath(), err)
		return nil
	}
	return &marker
}

// WriteLock overwrites the lock marker. Markers are never deleted; they
// expire by the staleness window instead.
func (s *Store) WriteLock(marker LockMarker) error {
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.LockPath(), data, 0o644)
}
