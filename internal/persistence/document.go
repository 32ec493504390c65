// Package persistence reads and writes the exported faction document and
// keeps a local snapshot archive for recovery.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hexhaven/factionledger/internal/faction"
)

// LoadDocument reads, parses, and normalizes a faction document. A file
// that does not parse as JSON, or parses to a non-object, returns
// faction.ErrMalformedDocument wrapped with context; the caller keeps its
// current state in that case.
func LoadDocument(path string) (*faction.Faction, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, faction.ErrMalformedDocument)
	}

	f, err := faction.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", path, err)
	}

	slog.Info("document loaded",
		"path", path,
		"size", humanize.Bytes(uint64(len(b))),
		"hexes", len(f.Hexes),
		"events", len(f.Events),
		"gains", len(f.SeasonGains),
	)
	return f, nil
}

// SaveDocument writes the faction as pretty-printed JSON into dir, named
// from the faction name plus a timestamp. The write goes through a temp
// file and rename so a crash never leaves a truncated document. Returns
// the written path.
func SaveDocument(dir string, f *faction.Faction) (string, error) {
	return saveDocumentAt(dir, f, time.Now())
}

func saveDocumentAt(dir string, f *faction.Faction, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create document dir: %w", err)
	}

	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	path := filepath.Join(dir, DocumentFilename(f.Name, now))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize document: %w", err)
	}

	slog.Info("document saved", "path", path, "size", humanize.Bytes(uint64(len(b))))
	return path, nil
}

// DocumentFilename builds "<sanitized-name>_<timestamp>.json". An unnamed
// faction saves as "faction_<timestamp>.json".
func DocumentFilename(name string, now time.Time) string {
	base := sanitizeName(name)
	if base == "" {
		base = "faction"
	}
	return fmt.Sprintf("%s_%s.json", base, now.Format("20060102-150405"))
}

// sanitizeName keeps letters, digits, dash, and underscore; runs of
// anything else collapse to a single underscore.
func sanitizeName(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
