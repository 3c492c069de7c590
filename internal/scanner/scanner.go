package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"photo-slideshow/internal/logging"
)

// reservedDirs are system directories that never contain user photos.
// @eaDir and #recycle are Synology metadata/recycle-bin folders.
var reservedDirs = map[string]bool{
	"@eaDir":   true,
	"#recycle": true,
}

// Scanner lists photo files and subfolders beneath playlist roots.
type Scanner struct {
	photoExt    string // without leading dot, matched case-insensitively
	excludeText string // substring filter on full paths, case-insensitive; empty disables
}

// New creates a Scanner for the given photo extension and exclusion substring.
func New(photoExt, excludeText string) *Scanner {
	return &Scanner{
		photoExt:    strings.ToLower(strings.TrimPrefix(photoExt, ".")),
		excludeText: strings.ToLower(excludeText),
	}
}

// Photos walks dir recursively and returns absolute paths of all files with
// the configured extension, skipping reserved and hidden directories and any
// path containing the exclusion substring. Results are sorted. Unreadable
// subtrees are logged and skipped rather than failing the scan.
func (s *Scanner) Photos(dir string) ([]string, error) {
	var photos []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logging.Warn("scan: error accessing %s: %v", path, err)
			return nil
		}

		if info.IsDir() {
			if path != dir && s.skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.matches(path, info.Name()) {
			abs, absErr := filepath.Abs(path)
			if absErr != nil {
				abs = path
			}
			photos = append(photos, abs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(photos)
	return photos, nil
}

// Subfolders returns the subdirectories of dir, immediate only or recursive,
// excluding reserved and hidden directories.
func (s *Scanner) Subfolders(dir string, recursive bool) ([]string, error) {
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}

		var folders []string
		for _, entry := range entries {
			if !entry.IsDir() || s.skipDir(entry.Name()) {
				continue
			}
			abs, err := filepath.Abs(filepath.Join(dir, entry.Name()))
			if err != nil {
				continue
			}
			folders = append(folders, abs)
		}
		sort.Strings(folders)
		return folders, nil
	}

	var folders []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logging.Warn("scan: error accessing %s: %v", path, err)
			return nil
		}
		if !info.IsDir() || path == dir {
			return nil
		}
		if s.skipDir(info.Name()) {
			return filepath.SkipDir
		}
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return nil
		}
		folders = append(folders, abs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(folders)
	return folders, nil
}

func (s *Scanner) skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || reservedDirs[name]
}

func (s *Scanner) matches(path, name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext != "."+s.photoExt {
		return false
	}
	if s.excludeText != "" && strings.Contains(strings.ToLower(path), s.excludeText) {
		return false
	}
	return true
}
