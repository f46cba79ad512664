package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultServerURL        = "http://localhost:3000"
	defaultNotesPath        = "/notes"
	defaultTimeoutMS        = 10000
	defaultDebounceMS       = 500
	defaultSilentWindowMS   = 100
	defaultRelatedLimit     = 3
	defaultPlaceholderTitle = "Untitled"
	defaultStorageBackend   = "bbolt"
)

type Config struct {
	Server   ServerConfig   `toml:"server" json:"server"`
	Autosave AutosaveConfig `toml:"autosave" json:"autosave"`
	Notes    NotesConfig    `toml:"notes" json:"notes"`
	Logging  LoggingConfig  `toml:"logging" json:"logging"`
	Storage  StorageConfig  `toml:"storage" json:"storage"`
}

type ServerConfig struct {
	URL       string `toml:"url" json:"url"`
	NotesPath string `toml:"notes_path" json:"notes_path"`
	TimeoutMS int    `toml:"timeout_ms" json:"timeout_ms"`
}

type AutosaveConfig struct {
	DebounceMS     int `toml:"debounce_ms" json:"debounce_ms"`
	SilentWindowMS int `toml:"silent_window_ms" json:"silent_window_ms"`
}

type NotesConfig struct {
	RelatedLimit     int    `toml:"related_limit" json:"related_limit"`
	PlaceholderTitle string `toml:"placeholder_title" json:"placeholder_title"`
}

type LoggingConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
}

type StorageConfig struct {
	Backend string `toml:"backend" json:"backend"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			URL:       defaultServerURL,
			NotesPath: defaultNotesPath,
			TimeoutMS: defaultTimeoutMS,
		},
		Autosave: AutosaveConfig{
			DebounceMS:     defaultDebounceMS,
			SilentWindowMS: defaultSilentWindowMS,
		},
		Notes: NotesConfig{
			RelatedLimit:     defaultRelatedLimit,
			PlaceholderTitle: defaultPlaceholderTitle,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			Backend: defaultStorageBackend,
		},
	}
}

// Load reads config.toml from the data dir, then applies .env files and
// NEURALNOTES_* environment overrides.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit config file path. A missing file yields
// the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg, os.LookupEnv)
	return cfg, nil
}

func (c Config) ServerURL() string {
	url := strings.TrimSpace(c.Server.URL)
	url = strings.TrimRight(url, "/")
	if url == "" {
		return defaultServerURL
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return url
}

func (c Config) NotesPath() string {
	path := strings.Trim(strings.TrimSpace(c.Server.NotesPath), "/")
	if path == "" {
		return defaultNotesPath
	}
	return "/" + path
}

func (c Config) RequestTimeout() time.Duration {
	return millis(c.Server.TimeoutMS, defaultTimeoutMS)
}

func (c Config) AutosaveDebounce() time.Duration {
	return millis(c.Autosave.DebounceMS, defaultDebounceMS)
}

func (c Config) SilentWindow() time.Duration {
	return millis(c.Autosave.SilentWindowMS, defaultSilentWindowMS)
}

func (c Config) RelatedLimit() int {
	if c.Notes.RelatedLimit <= 0 {
		return defaultRelatedLimit
	}
	return c.Notes.RelatedLimit
}

func (c Config) PlaceholderTitle() string {
	title := strings.TrimSpace(c.Notes.PlaceholderTitle)
	if title == "" {
		return defaultPlaceholderTitle
	}
	return title
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) LogFormat() string {
	if strings.EqualFold(strings.TrimSpace(c.Logging.Format), "json") {
		return "json"
	}
	return "console"
}

func (c Config) StorageBackend() string {
	backend := strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if backend == "" {
		return defaultStorageBackend
	}
	return backend
}

// MarshalTOML renders the config in the file format Load reads.
func (c Config) MarshalTOML() ([]byte, error) {
	return toml.Marshal(c)
}

func millis(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Millisecond
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func parsePositiveInt(raw string) (int, bool) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}
