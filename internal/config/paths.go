package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file and wins over every other location
	EnvConfigPath = "CLOUDSKETCH_CONFIG"
	// ConfigFileName is looked up next to the sketch being served
	ConfigFileName = "cloudsketch.yaml"
	// ConfigDirName is the per-user and system directory name
	ConfigDirName = "cloudsketch"
)

// SearchPaths lists the cloudsketch config locations in lookup order: the
// working directory (cloudsketch.yaml or .yml), then config.yaml under
// $XDG_CONFIG_HOME/cloudsketch, ~/.config/cloudsketch and /etc/cloudsketch.
// Locations whose environment variable is unset are left out.
func SearchPaths() []string {
	paths := []string{ConfigFileName, "cloudsketch.yml"}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, ConfigDirName, "config.yaml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// FindConfigPath returns $CLOUDSKETCH_CONFIG when it names an existing file,
// otherwise the first existing entry of SearchPaths. Relative hits are made
// absolute so the watcher and the database path resolve against the same
// directory after a chdir. Returns "" when nothing is found; the server then
// runs on DefaultConfig.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}

	for _, path := range SearchPaths() {
		if !fileExists(path) {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// EnsureConfigDir creates the directory holding configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0o755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
