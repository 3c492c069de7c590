package enrich

import (
	"testing"
	"time"

	"photo-slideshow/internal/store"
)

func newTestTrigger(t *testing.T) (*Trigger, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := NewProcessor(st, &fakeGeocoder{}, 10, 0)
	return NewTrigger(st, p), st
}

func TestMaybeStartWritesLock(t *testing.T) {
	tr, st := newTestTrigger(t)
	base := time.Unix(1700000000, 0)
	tr.now = func() time.Time { return base }

	if !tr.MaybeStart("index_build") {
		t.Fatal("first trigger should launch")
	}

	marker := st.ReadLock()
	if marker == nil {
		t.Fatal("lock marker not written")
	}
	if marker.StartedAt != base.Unix() {
		t.Errorf("started_at = %d, want %d", marker.StartedAt, base.Unix())
	}
	if marker.TriggeredBy != "index_build" {
		t.Errorf("triggered_by = %q, want index_build", marker.TriggeredBy)
	}
}

func TestMaybeStartSuppressedByFreshLock(t *testing.T) {
	tr, _ := newTestTrigger(t)
	base := time.Unix(1700000000, 0)
	tr.now = func() time.Time { return base }

	if !tr.MaybeStart("first") {
		t.Fatal("first trigger should launch")
	}

	// Just inside the staleness window: suppressed, lock untouched.
	tr.now = func() time.Time { return base.Add(LockStaleness - time.Second) }
	if tr.MaybeStart("second") {
		t.Error("trigger within staleness window should be suppressed")
	}
}

func TestMaybeStartOverwritesStaleLock(t *testing.T) {
	tr, st := newTestTrigger(t)
	base := time.Unix(1700000000, 0)
	tr.now = func() time.Time { return base }

	if !tr.MaybeStart("first") {
		t.Fatal("first trigger should launch")
	}

	later := base.Add(LockStaleness + time.Second)
	tr.now = func() time.Time { return later }
	if !tr.MaybeStart("second") {
		t.Fatal("stale lock should not suppress")
	}

	marker := st.ReadLock()
	if marker.TriggeredBy != "second" || marker.StartedAt != later.Unix() {
		t.Errorf("lock not overwritten: %+v", marker)
	}
}
