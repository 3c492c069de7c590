package geo

import (
	"math"

	"photo-slideshow/internal/store"
)

// Status summarizes how far geolocation enrichment has progressed over a
// set of pictures.
type Status struct {
	TotalPhotos     int     `json:"total_photos"`
	Geocoded        int     `json:"geocoded"`
	NoGPS           int     `json:"no_gps"`
	Pending         int     `json:"pending"`
	PercentComplete float64 `json:"percent_complete"`
}

// StatusOf tallies enrichment progress for one picture index. Completed and
// no-GPS pictures both count toward the completion percentage, since no
// further work remains for either.
func StatusOf(idx store.PictureIndex) Status {
	var s Status
	s.TotalPhotos = len(idx)

	for _, rec := range idx {
		switch rec.GeocodeStatus {
		case store.GeocodeCompleted:
			s.Geocoded++
		case store.GeocodeNoGPSData:
			s.NoGPS++
		case "", store.GeocodeNotProcessed:
			s.Pending++
		}
	}

	if s.TotalPhotos > 0 {
		done := float64(s.Geocoded+s.NoGPS) / float64(s.TotalPhotos) * 100
		s.PercentComplete = math.Round(done*10) / 10
	}
	return s
}

// Merge adds other's tallies into s and recomputes the percentage. Used to
// aggregate status across every folder's picture index.
func (s *Status) Merge(other Status) {
	s.TotalPhotos += other.TotalPhotos
	s.Geocoded += other.Geocoded
	s.NoGPS += other.NoGPS
	s.Pending += other.Pending
	if s.TotalPhotos > 0 {
		done := float64(s.Geocoded+s.NoGPS) / float64(s.TotalPhotos) * 100
		s.PercentComplete = math.Round(done*10) / 10
	} else {
		s.PercentComplete = 0
	}
}
