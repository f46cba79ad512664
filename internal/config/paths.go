package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appDirName = ".neuralnotes"
	homeEnvVar = "NEURALNOTES_HOME"
)

// DataDir returns the base data directory. NEURALNOTES_HOME overrides the
// default of ~/.neuralnotes.
func DataDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(homeEnvVar)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

func ConfigPath() (string, error) {
	return dataPath("config.toml")
}

// DBPath returns the path to the bbolt database holding credentials and UI
// state.
func DBPath() (string, error) {
	return dataPath("state.db")
}

func CredentialsPath() (string, error) {
	return dataPath("credentials.json")
}

func AppStatePath() (string, error) {
	return dataPath("app_state.json")
}

func UILogPath() (string, error) {
	return dataPath("ui.log")
}

func EnvPath() (string, error) {
	return dataPath(".env")
}

func dataPath(name string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}
