package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factionledger.yaml")
	body := "document_dir: /tmp/docs\nviewer_port: 9001\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DocumentDir != "/tmp/docs" || cfg.ViewerPort != 9001 {
		t.Fatalf("cfg = %+v", cfg)
	}
	// Untouched fields keep defaults.
	if cfg.UpkeepTable != Default().UpkeepTable {
		t.Fatalf("upkeep table = %q", cfg.UpkeepTable)
	}
}

func TestLoadBadYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("viewer_port: [not a port"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FACTIONLEDGER_DOCUMENT_DIR", "/env/docs")
	t.Setenv("FACTIONLEDGER_VIEWER_PORT", "9100")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DocumentDir != "/env/docs" || cfg.ViewerPort != 9100 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestEnvBadIntIgnored(t *testing.T) {
	t.Setenv("FACTIONLEDGER_VIEWER_PORT", "not-a-number")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ViewerPort != Default().ViewerPort {
		t.Fatalf("port = %d, want default", cfg.ViewerPort)
	}
}
