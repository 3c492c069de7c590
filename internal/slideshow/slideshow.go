package slideshow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"photo-slideshow/internal/geo"
	"photo-slideshow/internal/logging"
	"photo-slideshow/internal/metrics"
	"photo-slideshow/internal/scanner"
	"photo-slideshow/internal/selector"
	"photo-slideshow/internal/startup"
	"photo-slideshow/internal/store"
)

// ErrNoPhotos means no playlist could produce a displayable photo.
var ErrNoPhotos = errors.New("slideshow: no playable photos")

// folderAttempts bounds how many fresh folders one request will try before
// giving up; empty folders and vanished files burn attempts.
const folderAttempts = 4

// Trigger launches background geolocation enrichment.
type Trigger interface {
	MaybeStart(triggeredBy string) bool
}

// Geodata carries whatever location fields enrichment has stored for a
// photo. Nil fields are unknown.
type Geodata struct {
	Country *string `json:"country,omitempty"`
	Village *string `json:"village,omitempty"`
	Town    *string `json:"town,omitempty"`
	City    *string `json:"city,omitempty"`
}

// Photo is one selection result, ready for display.
type Photo struct {
	Path  string  `json:"path"`
	Year  string  `json:"year"`
	Month string  `json:"month"`
	Label string  `json:"label"`
	Geo   Geodata `json:"geo"`
}

// Session is the per-viewer selection state, passed in and mutated by
// SelectNext. It is a plain value so callers can persist it between
// requests; the orchestrator itself keeps no state.
type Session struct {
	PlaylistRoot   string   `json:"playlist_root,omitempty"`
	PlaylistName   string   `json:"playlist_name,omitempty"`
	FolderPath     string   `json:"folder_path,omitempty"`
	FolderGUID     string   `json:"folder_guid,omitempty"`
	Remaining      []string `json:"remaining,omitempty"`
	DisplayedCount int      `json:"displayed_count,omitempty"`
	MaxPhotos      int      `json:"max_photos,omitempty"`
	CurrentPhoto   string   `json:"current_photo,omitempty"`
	LastScan       int64    `json:"last_scan,omitempty"`
	ConfigModTime  int64    `json:"config_mod_time,omitempty"`
}

// resetSelection forgets the current playlist/folder so the next request
// starts a fresh cycle. The current photo stays so the image endpoint keeps
// working across the boundary.
func (s *Session) resetSelection() {
	s.PlaylistRoot = ""
	s.PlaylistName = ""
	s.FolderPath = ""
	s.FolderGUID = ""
	s.Remaining = nil
	s.DisplayedCount = 0
	s.MaxPhotos = 0
}

// Orchestrator runs the three-tier fair selection: playlists, then folders
// within the chosen playlist, then pictures within the chosen folder.
type Orchestrator struct {
	config  func() *startup.Config
	store   *store.Store
	scan    *scanner.Scanner
	trigger Trigger

	now         func() time.Time
	captureDate func(path string) (time.Time, error)
}

// New builds an Orchestrator. config is a getter so a reloaded
// configuration takes effect without rebuilding the orchestrator.
func New(config func() *startup.Config, st *store.Store, sc *scanner.Scanner, tr Trigger) *Orchestrator {
	return &Orchestrator{
		config:      config,
		store:       st,
		scan:        sc,
		trigger:     tr,
		now:         time.Now,
		captureDate: geo.CaptureDate,
	}
}

// SelectNext picks the next photo to display for the given session. The
// session is mutated: candidate bookkeeping, the displayed-photo counter
// and the current photo all live in it.
func (o *Orchestrator) SelectNext(sess *Session) (Photo, error) {
	cfg := o.config()
	o.maybeInvalidate(sess, cfg)

	for attempt := 0; attempt < folderAttempts; attempt++ {
		if o.needsNewFolder(sess) {
			if err := o.advance(sess, cfg); err != nil {
				return Photo{}, err
			}
		}

		photo, ok := o.pickExisting(sess)
		if !ok {
			// Folder exhausted without a displayable photo.
			sess.resetSelection()
			continue
		}

		sess.Remaining = remove(sess.Remaining, photo)
		sess.DisplayedCount++
		sess.CurrentPhoto = photo

		if err := o.store.IncrementPictureCount(sess.FolderGUID, photo); err != nil {
			logging.Error("Recording play for %s: %v", photo, err)
		}

		return o.describe(sess, photo), nil
	}

	return Photo{}, ErrNoPhotos
}

// maybeInvalidate forces a fresh cycle when the session's last scan is
// older than the rescan interval; with rescanning disabled, a config file
// edit invalidates instead.
func (o *Orchestrator) maybeInvalidate(sess *Session, cfg *startup.Config) {
	if sess.FolderGUID == "" {
		return
	}
	if cfg.RescanAfter > 0 {
		if o.now().Sub(time.Unix(sess.LastScan, 0)) > cfg.RescanAfter {
			logging.Debug("Session scan is stale, restarting selection")
			sess.resetSelection()
		}
		return
	}
	if sess.ConfigModTime != o.configModTime(cfg) {
		logging.Debug("Config changed, restarting selection")
		sess.resetSelection()
	}
}

// configModTime returns the config file's current mtime, so a config edit
// invalidates sessions even if the reload watcher is not running. Falls back
// to the mtime captured at load when the file cannot be statted.
func (o *Orchestrator) configModTime(cfg *startup.Config) int64 {
	if info, err := os.Stat(cfg.ConfigPath); err == nil {
		return info.ModTime().Unix()
	}
	return cfg.ConfigModTime.Unix()
}

func (o *Orchestrator) needsNewFolder(sess *Session) bool {
	if sess.FolderGUID == "" || len(sess.Remaining) == 0 {
		return true
	}
	return sess.MaxPhotos > 0 && sess.DisplayedCount >= sess.MaxPhotos
}

// advance runs the playlist and folder tiers: fair-pick a playlist, then a
// folder within it, rebuild the folder's picture index, and load the
// eligible picture set into the session.
func (o *Orchestrator) advance(sess *Session, cfg *startup.Config) error {
	sess.resetSelection()

	playlists, err := o.store.SyncPlaylistIndex(cfg.PlaylistRoots())
	if err != nil {
		return fmt.Errorf("syncing playlist index: %w", err)
	}
	if len(playlists) == 0 {
		return ErrNoPhotos
	}

	counts := make(map[string]uint64, len(playlists))
	for root, rec := range playlists {
		counts[root] = rec.PlayCount
	}
	root, err := selector.Pick("playlist", counts)
	if err != nil {
		return ErrNoPhotos
	}
	if err := o.store.IncrementPlaylistCount(root); err != nil {
		logging.Error("Recording playlist play for %s: %v", root, err)
	}

	spec, ok := cfg.Playlist(root)
	if !ok {
		spec = startup.PlaylistSpec{Name: playlists[root].Name, Path: root}
	}

	folder, guid, err := o.chooseFolder(spec)
	if err != nil {
		return err
	}

	photos, err := o.scan.Photos(folder)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", folder, err)
	}

	pictures, changed, err := o.store.BuildPictureIndex(guid, photos)
	if err != nil {
		return fmt.Errorf("building picture index for %s: %w", folder, err)
	}
	if o.trigger != nil && (changed || hasPending(pictures)) {
		o.trigger.MaybeStart("index_build")
	}

	pictureCounts := make(map[string]uint64, len(pictures))
	for path, rec := range pictures {
		pictureCounts[path] = rec.PlayCount
	}

	now := o.now()
	sess.PlaylistRoot = root
	sess.PlaylistName = spec.Name
	sess.FolderPath = folder
	sess.FolderGUID = guid
	sess.Remaining = selector.Eligible(pictureCounts)
	sess.MaxPhotos = spec.MaxPhotosPerSelect
	sess.LastScan = now.Unix()
	sess.ConfigModTime = o.configModTime(cfg)

	logging.Debug("Selected folder %s (%d candidates) in playlist %q", folder, len(sess.Remaining), spec.Name)
	return nil
}

// chooseFolder runs the folder tier for one playlist. A playlist that does
// not scan subfolders, or has none, rotates over its root as the single
// folder. The folder index supplies the stable GUID naming the folder's
// picture index document.
func (o *Orchestrator) chooseFolder(spec startup.PlaylistSpec) (string, string, error) {
	folders := []string{spec.Path}
	if spec.ScanSubFolders {
		subs, err := o.scan.Subfolders(spec.Path, false)
		if err != nil {
			return "", "", fmt.Errorf("listing folders of %s: %w", spec.Path, err)
		}
		if len(subs) > 0 {
			folders = subs
		}
	}

	idx, err := o.store.BuildFolderIndex(spec.Name, folders)
	if err != nil {
		return "", "", fmt.Errorf("building folder index for %q: %w", spec.Name, err)
	}

	counts := make(map[string]uint64, len(idx))
	for path, rec := range idx {
		counts[path] = rec.PlayCount
	}
	folder, err := selector.Pick("folder", counts)
	if err != nil {
		return "", "", ErrNoPhotos
	}
	if err := o.store.IncrementFolderCount(spec.Name, folder); err != nil {
		logging.Error("Recording folder play for %s: %v", folder, err)
	}

	return folder, idx[folder].GUID, nil
}

// pickExisting draws uniformly from the session's remaining candidates,
// dropping any whose file has vanished since indexing. Vanished files are
// logged and counted but the persisted index is left alone.
func (o *Orchestrator) pickExisting(sess *Session) (string, bool) {
	for len(sess.Remaining) > 0 {
		photo, err := selector.PickFrom(sess.Remaining)
		if err != nil {
			return "", false
		}
		if _, statErr := os.Stat(photo); statErr == nil {
			return photo, true
		}
		logging.Warn("Photo %s is in the index but missing on disk", photo)
		metrics.MissingPhotosTotal.Inc()
		sess.Remaining = remove(sess.Remaining, photo)
	}
	return "", false
}

// describe assembles the display result: capture date, label, and any
// stored geodata for the chosen photo.
func (o *Orchestrator) describe(sess *Session, photo string) Photo {
	result := Photo{Path: photo, Year: "-", Month: "-"}

	if taken, err := o.captureDate(photo); err == nil {
		result.Year = taken.Format("2006")
		result.Month = taken.Format("January")
	}

	result.Label = sess.PlaylistName
	if folderName := filepath.Base(sess.FolderPath); folderName != "" && folderName != sess.PlaylistName {
		result.Label = sess.PlaylistName + " - " + folderName
	}

	if rec, ok := o.store.LoadPictureIndex(sess.FolderGUID)[photo]; ok {
		result.Geo = Geodata{Country: rec.Country, Village: rec.Village, Town: rec.Town, City: rec.City}
	}

	return result
}

// hasPending reports whether any picture still awaits enrichment.
func hasPending(idx store.PictureIndex) bool {
	for _, rec := range idx {
		if rec.GeocodeStatus == "" || rec.GeocodeStatus == store.GeocodeNotProcessed {
			return true
		}
	}
	return false
}

func remove(candidates []string, victim string) []string {
	out := candidates[:0]
	for _, c := range candidates {
		if c != victim {
			out = append(out, c)
		}
	}
	return out
}
