package store

import (
	"fmt"

	"github.com/google/uuid"
)

// FolderRecord tracks how often a folder has been chosen within its
// playlist, and carries the stable GUID naming its picture index document.
type FolderRecord struct {
	PlayCount uint64 `json:"play_count"`
	GUID      string `json:"guid"`
}

// FolderIndex maps absolute folder paths to their records.
type FolderIndex map[string]*FolderRecord

// FolderIndexPath returns the location of the folder index document for the
// named playlist.
func (s *Store) FolderIndexPath(playlistName string) string {
	return s.resolve(fmt.Sprintf("playlist-%s-index.json", SanitizeName(playlistName)))
}

// LoadFolderIndex reads a playlist's folder index. Absent or corrupt
// documents yield an empty index.
func (s *Store) LoadFolderIndex(playlistName string) FolderIndex {
	idx := FolderIndex{}
	s.loadDocument("folder", s.FolderIndexPath(playlistName), &idx)
	return idx
}

// SaveFolderIndex persists a playlist's folder index.
func (s *Store) SaveFolderIndex(playlistName string, idx FolderIndex) error {
	return s.saveDocument("folder", s.FolderIndexPath(playlistName), idx)
}

// BuildFolderIndex merges the current physical folder set into the stored
// folder index: surviving folders keep their GUID and play count, new
// folders get a fresh UUIDv4 at count zero, and vanished folders are
// dropped. The rebuilt index is persisted and returned.
func (s *Store) BuildFolderIndex(playlistName string, folders []string) (FolderIndex, error) {
	existing := s.LoadFolderIndex(playlistName)

	merged := FolderIndex{}
	for _, folder := range folders {
		if prev, ok := existing[folder]; ok {
			merged[folder] = prev
			continue
		}
		merged[folder] = &FolderRecord{GUID: uuid.NewString()}
	}

	if err := s.SaveFolderIndex(playlistName, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// IncrementFolderCount bumps the play count for folderPath in the named
// playlist's folder index.
func (s *Store) IncrementFolderCount(playlistName, folderPath string) error {
	idx := s.LoadFolderIndex(playlistName)
	record, ok := idx[folderPath]
	if !ok {
		record = &FolderRecord{GUID: uuid.NewString()}
		idx[folderPath] = record
	}
	record.PlayCount++
	return s.SaveFolderIndex(playlistName, idx)
}
