package enrich

import (
	"context"
	"os"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"photo-slideshow/internal/geo"
	"photo-slideshow/internal/logging"
	"photo-slideshow/internal/metrics"
	"photo-slideshow/internal/store"
)

// Geocoder resolves coordinates to place names.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) geo.Location
}

// Stats counts what one enrichment pass did.
type Stats struct {
	Processed       int
	Skipped         int
	Errors          int
	NoGPS           int
	AlreadyGeocoded int
}

func (s *Stats) add(other Stats) {
	s.Processed += other.Processed
	s.Skipped += other.Skipped
	s.Errors += other.Errors
	s.NoGPS += other.NoGPS
	s.AlreadyGeocoded += other.AlreadyGeocoded
}

// Processor walks picture indexes and fills in geolocation data for photos
// that have not been looked at yet. Each index file is saved at most once
// per pass, after all its photos have been handled.
type Processor struct {
	store     *store.Store
	geocoder  Geocoder
	batchSize int
	limiter   *rate.Limiter

	// extract is swappable for tests; defaults to EXIF extraction.
	extract func(path string) (geo.Coordinates, error)

	now func() time.Time
}

// NewProcessor builds a Processor. batchSize caps how many photos one pass
// touches per index file; delay spaces out geocoding calls (the first call
// of a pass is never delayed).
func NewProcessor(st *store.Store, g Geocoder, batchSize int, delay time.Duration) *Processor {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Processor{
		store:     st,
		geocoder:  g,
		batchSize: batchSize,
		limiter:   rate.NewLimiter(limit, 1),
		extract:   geo.ExtractGPS,
		now:       time.Now,
	}
}

// ProcessIndex enriches one picture index document. Photos already resolved
// by an enrichment pass, or already known to carry no GPS data, are left
// alone; photos marked completed without a geocode timestamp predate village
// capture and are looked up again.
func (p *Processor) ProcessIndex(ctx context.Context, path string) Stats {
	var stats Stats

	idx := p.store.LoadPictureIndexFile(path)
	if len(idx) == 0 {
		return stats
	}

	photos := make([]string, 0, len(idx))
	for photo := range idx {
		photos = append(photos, photo)
	}
	sort.Strings(photos)

	modified := false
	touched := 0

	for _, photo := range photos {
		if p.batchSize > 0 && touched >= p.batchSize {
			break
		}

		record := idx[photo]
		if alreadyGeocoded(record) {
			stats.AlreadyGeocoded++
			continue
		}

		if _, err := os.Stat(photo); err != nil {
			logging.Debug("Skipping %s: %v", photo, err)
			stats.Skipped++
			continue
		}

		touched++
		coords, err := p.extract(photo)
		if err != nil {
			record.GeocodeStatus = store.GeocodeNoGPSData
			record.GeocodeTimestamp = p.now().Unix()
			modified = true
			stats.NoGPS++
			metrics.EnrichmentPhotosTotal.WithLabelValues("no_gps").Inc()
			continue
		}

		if err := p.limiter.Wait(ctx); err != nil {
			stats.Errors++
			metrics.EnrichmentPhotosTotal.WithLabelValues("error").Inc()
			break
		}

		loc := p.geocoder.Reverse(ctx, coords.Lat, coords.Lon)
		record.GPSLat = &coords.Lat
		record.GPSLon = &coords.Lon
		record.Country = loc.Country
		record.Village = loc.Village
		record.Town = loc.Town
		record.City = loc.City
		record.GeocodeStatus = store.GeocodeCompleted
		record.GeocodeTimestamp = p.now().Unix()
		modified = true
		stats.Processed++
		metrics.EnrichmentPhotosTotal.WithLabelValues("processed").Inc()
		logging.Debug("Geocoded %s at %.6f,%.6f", photo, coords.Lat, coords.Lon)
	}

	if modified {
		if err := p.store.SavePictureIndexFile(path, idx); err != nil {
			logging.Error("Saving enriched index %s: %v", path, err)
			stats.Errors++
			metrics.EnrichmentPhotosTotal.WithLabelValues("error").Inc()
		}
	}

	return stats
}

// ProcessAll runs one enrichment pass over every picture index in the
// store.
func (p *Processor) ProcessAll(ctx context.Context) Stats {
	var stats Stats

	metrics.EnrichmentRunsTotal.Inc()

	files, err := p.store.PictureIndexFiles()
	if err != nil {
		logging.Error("Listing picture indexes: %v", err)
		stats.Errors++
		return stats
	}

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		fileStats := p.ProcessIndex(ctx, file)
		stats.add(fileStats)
		if fileStats.Processed > 0 || fileStats.NoGPS > 0 {
			logging.Info("Enriched %s: %d processed, %d without GPS, %d skipped",
				file, fileStats.Processed, fileStats.NoGPS, fileStats.Skipped)
		}
	}

	logging.Info("Enrichment pass done: %d processed, %d already geocoded, %d without GPS, %d skipped, %d errors",
		stats.Processed, stats.AlreadyGeocoded, stats.NoGPS, stats.Skipped, stats.Errors)
	return stats
}

// alreadyGeocoded reports whether a record needs no further work. Completed
// records carrying a geocode timestamp are done even when the lookup found
// no village; timestamp-less completed records predate village capture and
// are retried unless a village was somehow recorded.
func alreadyGeocoded(r *store.PictureRecord) bool {
	if r.GeocodeStatus == store.GeocodeNoGPSData {
		return true
	}
	if r.GeocodeStatus != store.GeocodeCompleted {
		return false
	}
	return r.GeocodeTimestamp != 0 || r.Village != nil
}
