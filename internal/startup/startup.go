package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"photo-slideshow/internal/logging"
)

// EnvPrefix is the prefix for environment overrides: SLIDESHOW_LISTEN_ADDR
// overrides listen-addr, SLIDESHOW_GEOCODE_BATCH_SIZE overrides
// geocode-batch-size, and so on.
const EnvPrefix = "SLIDESHOW_"

// DefaultConfigPath is used when no --config flag or CONFIG_PATH variable
// points elsewhere.
const DefaultConfigPath = "config.json"

// PlaylistSpec configures one photo playlist rooted at a directory.
type PlaylistSpec struct {
	Name               string `koanf:"name"`
	Path               string `koanf:"path"`
	ScanSubFolders     bool   `koanf:"scan-sub-folders"`
	MaxPhotosPerSelect int    `koanf:"max-photos-per-select"`
}

// Config is the full runtime configuration, loaded from defaults, then the
// JSON config file, then SLIDESHOW_-prefixed environment variables.
type Config struct {
	ListenAddr  string        `koanf:"listen-addr"`
	IndexDir    string        `koanf:"index-dir"`
	PhotoExt    string        `koanf:"photo-ext"`
	ExcludeText string        `koanf:"exclude-text"`
	RescanAfter time.Duration `koanf:"rescan-after"`
	SessionTTL  time.Duration `koanf:"session-ttl"`

	MaxPhotosPerSelect int `koanf:"max-photos-per-select"`

	NominatimEndpoint  string        `koanf:"nominatim-endpoint"`
	NominatimUserAgent string        `koanf:"nominatim-user-agent"`
	GeocodeBatchSize   int           `koanf:"geocode-batch-size"`
	GeocodeDelay       time.Duration `koanf:"geocode-delay"`

	Playlists []PlaylistSpec `koanf:"playlists"`

	// ConfigPath and ConfigModTime describe the file the config was read
	// from; sessions use the mod time to notice edits between requests.
	ConfigPath    string    `koanf:"-"`
	ConfigModTime time.Time `koanf:"-"`
}

func defaultConfig() *Config {
	return &Config{
		ListenAddr:         ":8080",
		IndexDir:           "./index",
		PhotoExt:           "jpg",
		ExcludeText:        "SYNOPHOTO_THUMB",
		RescanAfter:        30 * time.Minute,
		SessionTTL:         24 * time.Hour,
		MaxPhotosPerSelect: 10,
		NominatimEndpoint:  "https://nominatim.openstreetmap.org",
		NominatimUserAgent: "photo-slideshow/1.0",
		GeocodeBatchSize:   10,
		GeocodeDelay:       2 * time.Second,
	}
}

// LoadConfig reads configuration with precedence env > file > defaults.
// An empty path falls back to CONFIG_PATH, then DefaultConfigPath.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultConfigPath
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	var modTime time.Time
	if info, err := os.Stat(path); err == nil {
		modTime = info.ModTime()
		if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else {
		logging.Warn("Config file %s not found, using defaults and environment", path)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.ConfigPath = path
	cfg.ConfigModTime = modTime

	cfg.applyPlaylistDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.log()
	return cfg, nil
}

// LogFatal logs a startup failure and exits.
func LogFatal(format string, v ...interface{}) {
	logging.Fatal(format, v...)
}

// envTransform maps SLIDESHOW_GEOCODE_BATCH_SIZE to geocode-batch-size.
func envTransform(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

// applyPlaylistDefaults fills in playlist names from their directory names
// and caps from the global default.
func (c *Config) applyPlaylistDefaults() {
	for i := range c.Playlists {
		p := &c.Playlists[i]
		if p.Name == "" && p.Path != "" {
			p.Name = filepath.Base(filepath.Clean(p.Path))
		}
		if p.MaxPhotosPerSelect <= 0 {
			p.MaxPhotosPerSelect = c.MaxPhotosPerSelect
		}
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.IndexDir == "" {
		return fmt.Errorf("index-dir must not be empty")
	}
	if c.MaxPhotosPerSelect <= 0 {
		return fmt.Errorf("max-photos-per-select must be positive, got %d", c.MaxPhotosPerSelect)
	}
	seen := map[string]bool{}
	for _, p := range c.Playlists {
		if p.Path == "" {
			return fmt.Errorf("playlist %q has no path", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate playlist name %q", p.Name)
		}
		seen[p.Name] = true
		if _, err := os.Stat(p.Path); err != nil {
			logging.Warn("Playlist %q path %s is not accessible: %v", p.Name, p.Path, err)
		}
	}
	return nil
}

// PlaylistRoots returns the configured playlists as a root-path-to-name
// map, the shape the index store reconciles against.
func (c *Config) PlaylistRoots() map[string]string {
	roots := make(map[string]string, len(c.Playlists))
	for _, p := range c.Playlists {
		roots[p.Path] = p.Name
	}
	return roots
}

// Playlist returns the spec for the playlist rooted at rootPath.
func (c *Config) Playlist(rootPath string) (PlaylistSpec, bool) {
	for _, p := range c.Playlists {
		if p.Path == rootPath {
			return p, true
		}
	}
	return PlaylistSpec{}, false
}

func (c *Config) log() {
	logging.Info("Configuration loaded from %s", c.ConfigPath)
	logging.Info("  listen-addr: %s", c.ListenAddr)
	logging.Info("  index-dir: %s", c.IndexDir)
	logging.Info("  photo-ext: %s", c.PhotoExt)
	logging.Info("  exclude-text: %s", c.ExcludeText)
	logging.Info("  rescan-after: %s", c.RescanAfter)
	logging.Info("  session-ttl: %s", c.SessionTTL)
	logging.Info("  max-photos-per-select: %d", c.MaxPhotosPerSelect)
	logging.Info("  nominatim-endpoint: %s", c.NominatimEndpoint)
	logging.Info("  geocode-batch-size: %d, geocode-delay: %s", c.GeocodeBatchSize, c.GeocodeDelay)
	logging.Info("  playlists: %d", len(c.Playlists))
	for _, p := range c.Playlists {
		logging.Info("    %q at %s (sub-folders: %v, max per select: %d)",
			p.Name, p.Path, p.ScanSubFolders, p.MaxPhotosPerSelect)
	}
}
