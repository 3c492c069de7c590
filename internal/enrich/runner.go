package enrich

import (
	"context"
	"time"

	"photo-slideshow/internal/logging"
	"photo-slideshow/internal/store"
)

// Runner executes synchronous enrichment passes for the standalone
// geoprocessor, honoring the shared lock marker. A fresh marker written by
// someone else suppresses a pass; the runner's own marker from the previous
// pass does not, so back-to-back passes inside the staleness window keep
// running.
type Runner struct {
	store     *store.Store
	processor *Processor
	owner     string
	last      store.LockMarker

	now func() time.Time
}

// NewRunner builds a Runner that stamps lock markers with owner.
func NewRunner(st *store.Store, p *Processor, owner string) *Runner {
	return &Runner{store: st, processor: p, owner: owner, now: time.Now}
}

// RunPass executes one enrichment pass unless a fresh foreign lock marker
// shows another run is active. The marker is overwritten, never deleted; it
// goes stale on its own. Reports the pass stats and whether a pass ran.
func (r *Runner) RunPass(ctx context.Context) (Stats, bool) {
	now := r.now()
	if marker := r.store.ReadLock(); marker != nil && marker.Age(now) < LockStaleness && !r.ownMarker(marker) {
		logging.Info("Skipping pass: enrichment lock from %q is %s old",
			marker.TriggeredBy, marker.Age(now).Round(time.Second))
		return Stats{}, false
	}

	marker := store.LockMarker{StartedAt: now.Unix(), TriggeredBy: r.owner}
	if err := r.store.WriteLock(marker); err != nil {
		logging.Error("Writing enrichment lock: %v", err)
		return Stats{}, false
	}
	r.last = marker

	return r.processor.ProcessAll(ctx), true
}

// ownMarker reports whether m is the marker this runner wrote last. Anything
// written since, even under the same owner name, counts as foreign.
func (r *Runner) ownMarker(m *store.LockMarker) bool {
	return r.last.TriggeredBy != "" && *m == r.last
}
