package enrich

import (
	"context"
	"sync"
	"time"

	"photo-slideshow/internal/logging"
	"photo-slideshow/internal/metrics"
	"photo-slideshow/internal/store"
)

// LockStaleness is how long a lock marker suppresses new enrichment runs.
// A marker older than this is presumed abandoned and gets overwritten.
const LockStaleness = 5 * time.Minute

// Trigger launches background enrichment passes, at most one at a time.
// The on-disk lock marker carries the suppression across restarts and
// between the server and the standalone geoprocessor.
type Trigger struct {
	mu        sync.Mutex
	store     *store.Store
	processor *Processor
	now       func() time.Time
}

// NewTrigger builds a Trigger around the given store and processor.
func NewTrigger(st *store.Store, p *Processor) *Trigger {
	return &Trigger{store: st, processor: p, now: time.Now}
}

// MaybeStart launches an enrichment pass in the background unless a fresh
// lock marker suppresses it. Reports whether a pass was launched. The lock
// marker is never deleted; each launch overwrites it with a new timestamp.
func (t *Trigger) MaybeStart(triggeredBy string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if marker := t.store.ReadLock(); marker != nil && marker.Age(now) < LockStaleness {
		logging.Debug("Enrichment suppressed: lock from %q is %s old", marker.TriggeredBy, marker.Age(now).Round(time.Second))
		metrics.EnrichmentTriggersTotal.WithLabelValues("suppressed").Inc()
		return false
	}

	marker := store.LockMarker{StartedAt: now.Unix(), TriggeredBy: triggeredBy}
	if err := t.store.WriteLock(marker); err != nil {
		logging.Error("Writing enrichment lock: %v", err)
		metrics.EnrichmentTriggersTotal.WithLabelValues("error").Inc()
		return false
	}

	metrics.EnrichmentTriggersTotal.WithLabelValues("launched").Inc()
	logging.Info("Starting background enrichment (triggered by %s)", triggeredBy)

	go func() {
		metrics.EnrichmentIsRunning.Set(1)
		defer metrics.EnrichmentIsRunning.Set(0)
		t.processor.ProcessAll(context.Background())
	}()

	return true
}
