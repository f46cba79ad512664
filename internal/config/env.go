package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvServerURL  = "NEURALNOTES_SERVER_URL"
	EnvNotesPath  = "NEURALNOTES_NOTES_PATH"
	EnvLogLevel   = "NEURALNOTES_LOG_LEVEL"
	EnvLogFormat  = "NEURALNOTES_LOG_FORMAT"
	EnvAutosaveMS = "NEURALNOTES_AUTOSAVE_MS"
	EnvTimeoutMS  = "NEURALNOTES_TIMEOUT_MS"
	EnvStorage    = "NEURALNOTES_STORAGE"
)

type lookupFunc func(key string) (string, bool)

// loadDotEnv loads ./.env and <data dir>/.env. Variables already present in
// the environment are never overwritten.
func loadDotEnv() error {
	paths := []string{".env"}
	if path, err := EnvPath(); err == nil {
		paths = append(paths, path)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
	}
	return nil
}

func applyEnv(cfg *Config, lookup lookupFunc) {
	if cfg == nil || lookup == nil {
		return
	}
	if value, ok := nonEmpty(lookup, EnvServerURL); ok {
		cfg.Server.URL = value
	}
	if value, ok := nonEmpty(lookup, EnvNotesPath); ok {
		cfg.Server.NotesPath = value
	}
	if value, ok := nonEmpty(lookup, EnvLogLevel); ok {
		cfg.Logging.Level = value
	}
	if value, ok := nonEmpty(lookup, EnvLogFormat); ok {
		cfg.Logging.Format = value
	}
	if value, ok := nonEmpty(lookup, EnvStorage); ok {
		cfg.Storage.Backend = value
	}
	if value, ok := nonEmpty(lookup, EnvAutosaveMS); ok {
		if ms, ok := parsePositiveInt(value); ok {
			cfg.Autosave.DebounceMS = ms
		}
	}
	if value, ok := nonEmpty(lookup, EnvTimeoutMS); ok {
		if ms, ok := parsePositiveInt(value); ok {
			cfg.Server.TimeoutMS = ms
		}
	}
}

func nonEmpty(lookup lookupFunc, key string) (string, bool) {
	value, ok := lookup(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
