package store

import (
	"fmt"
	"path/filepath"
	"sort"

	"photo-slideshow/internal/metrics"
)

// Geocode status values stored in picture records.
const (
	GeocodeNotProcessed = "not_processed"
	GeocodeNoGPSData    = "no_gps_data"
	GeocodeCompleted    = "completed"
)

// PictureRecord tracks play count and geolocation enrichment for one photo.
// The geolocation fields are optional: absent until an enrichment pass has
// looked at the photo.
type PictureRecord struct {
	PlayCount        uint64   `json:"play_count"`
	GPSLat           *float64 `json:"gps_lat,omitempty"`
	GPSLon           *float64 `json:"gps_lon,omitempty"`
	Country          *string  `json:"country,omitempty"`
	Village          *string  `json:"village,omitempty"`
	Town             *string  `json:"town,omitempty"`
	City             *string  `json:"city,omitempty"`
	GeocodeStatus    string   `json:"geocode_status,omitempty"`
	GeocodeTimestamp int64    `json:"geocode_timestamp,omitempty"`
}

// HasGeodata reports whether any geolocation field has been populated.
func (r *PictureRecord) HasGeodata() bool {
	return r.GPSLat != nil || r.GPSLon != nil || r.Country != nil ||
		r.Village != nil || r.Town != nil || r.City != nil || r.GeocodeStatus != ""
}

// copyGeodata carries geolocation fields from src without touching the play
// count.
func (r *PictureRecord) copyGeodata(src *PictureRecord) {
	r.GPSLat = src.GPSLat
	r.GPSLon = src.GPSLon
	r.Country = src.Country
	r.Village = src.Village
	r.Town = src.Town
	r.City = src.City
	r.GeocodeStatus = src.GeocodeStatus
	r.GeocodeTimestamp = src.GeocodeTimestamp
}

// PictureIndex maps absolute photo paths to their records.
type PictureIndex map[string]*PictureRecord

// PictureIndexPath returns the location of the picture index document for
// the folder identified by guid.
func (s *Store) PictureIndexPath(guid string) string {
	return s.resolve(fmt.Sprintf("folderpics-%s-index.json", guid))
}

// LoadPictureIndex reads a folder's picture index by GUID. Absent or
// corrupt documents yield an empty index.
func (s *Store) LoadPictureIndex(guid string) PictureIndex {
	return s.LoadPictureIndexFile(s.PictureIndexPath(guid))
}

// LoadPictureIndexFile reads a picture index document directly by path.
// The geoprocessor uses this when iterating discovered index files.
func (s *Store) LoadPictureIndexFile(path string) PictureIndex {
	idx := PictureIndex{}
	s.loadDocument("picture", path, &idx)
	return idx
}

// SavePictureIndex persists a folder's picture index by GUID.
func (s *Store) SavePictureIndex(guid string, idx PictureIndex) error {
	return s.SavePictureIndexFile(s.PictureIndexPath(guid), idx)
}

// SavePictureIndexFile persists a picture index document directly by path.
func (s *Store) SavePictureIndexFile(path string, idx PictureIndex) error {
	return s.saveDocument("picture", path, idx)
}

// BuildPictureIndex reconciles the current photo set of a folder with its
// stored picture index. When the photo set differs from the stored set
// (any addition or removal), every surviving photo's play count resets to
// zero while its geolocation fields are preserved; vanished photos are
// dropped. A first-ever build never counts as a change. Reports whether a
// change was detected.
func (s *Store) BuildPictureIndex(guid string, photos []string) (PictureIndex, bool, error) {
	path := s.PictureIndexPath(guid)

	existing := PictureIndex{}
	hadIndex := s.loadDocument("picture", path, &existing)

	changed := hadIndex && !sameKeys(existing, photos)

	merged := PictureIndex{}
	for _, photo := range photos {
		record := &PictureRecord{}
		if prev, ok := existing[photo]; ok {
			record.copyGeodata(prev)
			if !changed {
				record.PlayCount = prev.PlayCount
			}
		}
		merged[photo] = record
	}

	if changed {
		metrics.StoreResetsTotal.Inc()
	}

	if !hadIndex || changed {
		if err := s.SavePictureIndexFile(path, merged); err != nil {
			return nil, changed, err
		}
	}
	return merged, changed, nil
}

// IncrementPictureCount bumps the play count for one photo in the folder
// index identified by guid.
func (s *Store) IncrementPictureCount(guid, photoPath string) error {
	idx := s.LoadPictureIndex(guid)
	record, ok := idx[photoPath]
	if !ok {
		record = &PictureRecord{}
		idx[photoPath] = record
	}
	record.PlayCount++
	return s.SavePictureIndex(guid, idx)
}

// PictureIndexFiles returns the paths of every picture index document in
// the store, sorted for deterministic processing order.
func (s *Store) PictureIndexFiles() ([]string, error) {
	files, err := filepath.Glob(s.resolve("folderpics-*-index.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// sameKeys reports whether idx contains exactly the given photo paths.
func sameKeys(idx PictureIndex, photos []string) bool {
	if len(idx) != len(photos) {
		return false
	}
	for _, photo := range photos {
		if _, ok := idx[photo]; !ok {
			return false
		}
	}
	return true
}
