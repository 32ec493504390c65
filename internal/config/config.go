// Package config loads tool settings from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the tool's settings.
type Config struct {
	// DocumentDir is where saved faction documents land.
	DocumentDir string `yaml:"document_dir"`
	// UpkeepTable is the path to the structure upkeep CSV.
	UpkeepTable string `yaml:"upkeep_table"`
	// ArchivePath is the SQLite snapshot archive database.
	ArchivePath string `yaml:"archive_path"`
	// ViewerPort is the local read-only viewer's HTTP port.
	ViewerPort int `yaml:"viewer_port"`
	// ArchiveKeep is how many snapshots Prune retains per faction.
	ArchiveKeep int `yaml:"archive_keep"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DocumentDir: "data",
		UpkeepTable: "data/upkeep.csv",
		ArchivePath: "data/archive.db",
		ViewerPort:  8735,
		ArchiveKeep: 20,
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies environment overrides. A file that
// exists but fails to parse is an error; silent misconfiguration is worse
// than a failed start.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No file is fine; defaults plus env apply.
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.DocumentDir = envOrDefault("FACTIONLEDGER_DOCUMENT_DIR", cfg.DocumentDir)
	cfg.UpkeepTable = envOrDefault("FACTIONLEDGER_UPKEEP_TABLE", cfg.UpkeepTable)
	cfg.ArchivePath = envOrDefault("FACTIONLEDGER_ARCHIVE_PATH", cfg.ArchivePath)
	cfg.ViewerPort = envIntOrDefault("FACTIONLEDGER_VIEWER_PORT", cfg.ViewerPort)
	cfg.ArchiveKeep = envIntOrDefault("FACTIONLEDGER_ARCHIVE_KEEP", cfg.ArchiveKeep)
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
