package store

// playlistIndexFile is the single document tracking playlist-tier play
// counts for the whole store.
const playlistIndexFile = "playlists_index.json"

// PlaylistRecord tracks how often a playlist has been chosen.
type PlaylistRecord struct {
	Name      string `json:"name"`
	RootPath  string `json:"root_path"`
	PlayCount uint64 `json:"play_count"`
}

// PlaylistIndex maps playlist root paths to their records.
type PlaylistIndex map[string]*PlaylistRecord

// PlaylistIndexPath returns the location of the playlist index document.
func (s *Store) PlaylistIndexPath() string {
	return s.resolve(playlistIndexFile)
}

// LoadPlaylistIndex reads the playlist index. Absent or corrupt documents
// yield an empty index.
func (s *Store) LoadPlaylistIndex() PlaylistIndex {
	idx := PlaylistIndex{}
	s.loadDocument("playlist", s.PlaylistIndexPath(), &idx)
	return idx
}

// SavePlaylistIndex persists the playlist index.
func (s *Store) SavePlaylistIndex(idx PlaylistIndex) error {
	return s.saveDocument("playlist", s.PlaylistIndexPath(), idx)
}

// SyncPlaylistIndex reconciles the stored playlist index with the playlists
// currently configured (root path -> display name). Existing records keep
// their play counts, newly configured playlists start at zero, and records
// for playlists no longer configured are purged. The merged index is
// persisted and returned.
func (s *Store) SyncPlaylistIndex(configured map[string]string) (PlaylistIndex, error) {
	existing := s.LoadPlaylistIndex()

	merged := PlaylistIndex{}
	for rootPath, name := range configured {
		record := &PlaylistRecord{Name: name, RootPath: rootPath}
		if prev, ok := existing[rootPath]; ok {
			record.PlayCount = prev.PlayCount
		}
		merged[rootPath] = record
	}

	if err := s.SavePlaylistIndex(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// IncrementPlaylistCount bumps the play count for the playlist at rootPath
// with full read-modify-write of the document.
func (s *Store) IncrementPlaylistCount(rootPath string) error {
	idx := s.LoadPlaylistIndex()
	record, ok := idx[rootPath]
	if !ok {
		// Selection raced a config reload; recreate the record rather
		// than losing the play.
		record = &PlaylistRecord{RootPath: rootPath}
		idx[rootPath] = record
	}
	record.PlayCount++
	return s.SavePlaylistIndex(idx)
}
