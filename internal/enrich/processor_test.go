package enrich

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"photo-slideshow/internal/geo"
	"photo-slideshow/internal/store"
)

type fakeGeocoder struct {
	calls int
	loc   geo.Location
}

func (f *fakeGeocoder) Reverse(ctx context.Context, lat, lon float64) geo.Location {
	f.calls++
	return f.loc
}

func strptr(s string) *string { return &s }

// newTestProcessor builds a processor with a faked extractor over a temp
// store and returns both plus a directory for photo files.
func newTestProcessor(t *testing.T, g Geocoder, batchSize int) (*Processor, *store.Store, string) {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := NewProcessor(st, g, batchSize, 0)
	p.extract = func(path string) (geo.Coordinates, error) {
		return geo.Coordinates{Lat: 48.856667, Lon: 2.352222}, nil
	}
	return p, st, t.TempDir()
}

func photoFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessIndexEnrichesPendingPhotos(t *testing.T) {
	g := &fakeGeocoder{loc: geo.Location{Country: strptr("France"), Village: strptr("Giverny")}}
	p, st, photos := newTestProcessor(t, g, 10)

	a := photoFile(t, photos, "a.jpg")
	b := photoFile(t, photos, "b.jpg")
	idx := store.PictureIndex{
		a: {PlayCount: 3},
		b: {},
	}
	path := st.PictureIndexPath("guid-1")
	if err := st.SavePictureIndexFile(path, idx); err != nil {
		t.Fatal(err)
	}

	stats := p.ProcessIndex(context.Background(), path)
	if stats.Processed != 2 || stats.Skipped != 0 || stats.NoGPS != 0 {
		t.Fatalf("stats = %+v, want 2 processed", stats)
	}
	if g.calls != 2 {
		t.Errorf("geocoder calls = %d, want 2", g.calls)
	}

	saved := st.LoadPictureIndexFile(path)
	rec := saved[a]
	if rec.GeocodeStatus != store.GeocodeCompleted {
		t.Errorf("status = %q, want completed", rec.GeocodeStatus)
	}
	if rec.PlayCount != 3 {
		t.Errorf("play count = %d, enrichment must not touch it", rec.PlayCount)
	}
	if rec.GPSLat == nil || *rec.GPSLat != 48.856667 {
		t.Errorf("gps_lat = %v, want 48.856667", rec.GPSLat)
	}
	if rec.Village == nil || *rec.Village != "Giverny" {
		t.Errorf("village = %v, want Giverny", rec.Village)
	}
	if rec.GeocodeTimestamp == 0 {
		t.Error("geocode_timestamp not set")
	}
}

func TestProcessIndexSkipRules(t *testing.T) {
	g := &fakeGeocoder{loc: geo.Location{Village: strptr("Somewhere")}}
	p, st, photos := newTestProcessor(t, g, 10)

	done := photoFile(t, photos, "done.jpg")
	nogps := photoFile(t, photos, "nogps.jpg")
	legacy := photoFile(t, photos, "legacy.jpg")
	missing := filepath.Join(photos, "gone.jpg")

	idx := store.PictureIndex{
		done:    {GeocodeStatus: store.GeocodeCompleted, Village: strptr("Old Town")},
		nogps:   {GeocodeStatus: store.GeocodeNoGPSData},
		legacy:  {GeocodeStatus: store.GeocodeCompleted}, // completed before villages were recorded
		missing: {},
	}
	path := st.PictureIndexPath("guid-2")
	if err := st.SavePictureIndexFile(path, idx); err != nil {
		t.Fatal(err)
	}

	stats := p.ProcessIndex(context.Background(), path)
	want := Stats{Processed: 1, Skipped: 1, AlreadyGeocoded: 2}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
	if g.calls != 1 {
		t.Errorf("geocoder calls = %d, want only the legacy record", g.calls)
	}

	saved := st.LoadPictureIndexFile(path)
	if saved[legacy].Village == nil || *saved[legacy].Village != "Somewhere" {
		t.Errorf("legacy record village = %v, want re-geocoded value", saved[legacy].Village)
	}
	if saved[missing].GeocodeStatus != "" {
		t.Errorf("missing photo record was modified: %+v", saved[missing])
	}
	if got := *saved[done].Village; got != "Old Town" {
		t.Errorf("already-geocoded village = %q, want untouched Old Town", got)
	}
}

func TestProcessIndexCompletedWithoutVillageStaysDone(t *testing.T) {
	g := &fakeGeocoder{loc: geo.Location{Country: strptr("France"), Town: strptr("Vernon")}}
	p, st, photos := newTestProcessor(t, g, 10)

	a := photoFile(t, photos, "a.jpg")
	path := st.PictureIndexPath("guid-5")
	if err := st.SavePictureIndexFile(path, store.PictureIndex{a: {}}); err != nil {
		t.Fatal(err)
	}

	stats := p.ProcessIndex(context.Background(), path)
	if stats.Processed != 1 || g.calls != 1 {
		t.Fatalf("first pass stats = %+v, calls = %d", stats, g.calls)
	}

	// The lookup found only a town; a second pass must not redo it.
	stats = p.ProcessIndex(context.Background(), path)
	if stats.Processed != 0 || stats.AlreadyGeocoded != 1 {
		t.Fatalf("second pass stats = %+v, want already geocoded", stats)
	}
	if g.calls != 1 {
		t.Errorf("geocoder calls = %d, want no repeat lookup", g.calls)
	}
}

func TestProcessIndexNoGPSData(t *testing.T) {
	g := &fakeGeocoder{}
	p, st, photos := newTestProcessor(t, g, 10)
	p.extract = func(path string) (geo.Coordinates, error) {
		return geo.Coordinates{}, geo.ErrNoGPSData
	}
	p.now = func() time.Time { return time.Unix(1700000000, 0) }

	a := photoFile(t, photos, "a.jpg")
	path := st.PictureIndexPath("guid-3")
	if err := st.SavePictureIndexFile(path, store.PictureIndex{a: {}}); err != nil {
		t.Fatal(err)
	}

	stats := p.ProcessIndex(context.Background(), path)
	if stats.NoGPS != 1 || stats.Processed != 0 {
		t.Fatalf("stats = %+v, want 1 no-GPS", stats)
	}
	if g.calls != 0 {
		t.Error("geocoder must not be called without coordinates")
	}

	saved := st.LoadPictureIndexFile(path)
	if saved[a].GeocodeStatus != store.GeocodeNoGPSData {
		t.Errorf("status = %q, want no_gps_data", saved[a].GeocodeStatus)
	}
	if saved[a].GeocodeTimestamp != 1700000000 {
		t.Errorf("timestamp = %d, want 1700000000", saved[a].GeocodeTimestamp)
	}
}

func TestProcessIndexBatchLimit(t *testing.T) {
	g := &fakeGeocoder{}
	p, st, photos := newTestProcessor(t, g, 2)

	idx := store.PictureIndex{}
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"} {
		idx[photoFile(t, photos, name)] = &store.PictureRecord{}
	}
	path := st.PictureIndexPath("guid-4")
	if err := st.SavePictureIndexFile(path, idx); err != nil {
		t.Fatal(err)
	}

	stats := p.ProcessIndex(context.Background(), path)
	if stats.Processed != 2 {
		t.Fatalf("processed = %d, want batch limit 2", stats.Processed)
	}

	// A second pass picks up where the first stopped.
	stats = p.ProcessIndex(context.Background(), path)
	if stats.Processed != 2 || stats.AlreadyGeocoded != 2 {
		t.Fatalf("second pass stats = %+v", stats)
	}
}

func TestProcessAllSumsAcrossIndexes(t *testing.T) {
	g := &fakeGeocoder{loc: geo.Location{Village: strptr("V")}}
	p, st, photos := newTestProcessor(t, g, 10)

	for i, guid := range []string{"g1", "g2"} {
		name := []string{"one.jpg", "two.jpg"}[i]
		photo := photoFile(t, photos, name)
		if err := st.SavePictureIndex(guid, store.PictureIndex{photo: {}}); err != nil {
			t.Fatal(err)
		}
	}

	stats := p.ProcessAll(context.Background())
	if stats.Processed != 2 {
		t.Errorf("ProcessAll processed = %d, want 2", stats.Processed)
	}
}

func TestProcessIndexEmptyIndexIsNoop(t *testing.T) {
	p, st, _ := newTestProcessor(t, &fakeGeocoder{}, 10)
	stats := p.ProcessIndex(context.Background(), st.PictureIndexPath("absent"))
	if stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
}
