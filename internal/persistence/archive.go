package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/hexhaven/factionledger/internal/faction"
)

// Archive is a local SQLite database of past document snapshots. Every
// successful save appends a zstd-compressed copy so a hand-edit gone wrong
// or an accidental overwrite is recoverable. The archive never feeds the
// live store on its own; restores go back through Normalize like any load.
type Archive struct {
	conn *sqlx.DB
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

// Entry describes one archived snapshot.
type Entry struct {
	ID       int64  `db:"id" json:"id"`
	Faction  string `db:"faction" json:"faction"`
	SavedAt  string `db:"saved_at" json:"savedAt"`
	RawBytes int64  `db:"raw_bytes" json:"rawBytes"`
}

// OpenArchive opens or creates the snapshot archive at path.
func OpenArchive(path string) (*Archive, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	a := &Archive{conn: conn}
	if err := a.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}

	if a.enc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init compressor: %w", err)
	}
	if a.dec, err = zstd.NewReader(nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init decompressor: %w", err)
	}

	return a, nil
}

// Close releases the database connection and codec state.
func (a *Archive) Close() error {
	a.enc.Close()
	a.dec.Close()
	return a.conn.Close()
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		faction TEXT NOT NULL,
		saved_at TEXT NOT NULL,
		raw_bytes INTEGER NOT NULL,
		document BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS archive_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_faction ON snapshots(faction);
	CREATE INDEX IF NOT EXISTS idx_snapshots_saved_at ON snapshots(saved_at);
	`
	_, err := a.conn.Exec(schema)
	return err
}

// Append stores a snapshot of the faction, compressed, stamped now.
func (a *Archive) Append(f *faction.Faction) (int64, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}
	blob := a.enc.EncodeAll(b, nil)

	savedAt := time.Now().UTC().Format(time.RFC3339)
	res, err := a.conn.Exec(
		"INSERT INTO snapshots (faction, saved_at, raw_bytes, document) VALUES (?, ?, ?, ?)",
		f.Name, savedAt, int64(len(b)), blob,
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := a.SetMeta("last_saved", savedAt); err != nil {
		return 0, err
	}

	slog.Info("snapshot archived", "id", id, "faction", f.Name, "raw_bytes", len(b), "stored_bytes", len(blob))
	return id, nil
}

// List returns archived snapshots, newest first.
func (a *Archive) List() ([]Entry, error) {
	var out []Entry
	err := a.conn.Select(&out,
		"SELECT id, faction, saved_at, raw_bytes FROM snapshots ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

// Restore decompresses snapshot id and runs it back through the normal
// load path. The archive holds documents this tool wrote, but Normalize
// still gets the final word.
func (a *Archive) Restore(id int64) (*faction.Faction, error) {
	var blob []byte
	if err := a.conn.Get(&blob, "SELECT document FROM snapshots WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("snapshot %d: %w", id, err)
	}

	b, err := a.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot %d: %w", id, err)
	}

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse snapshot %d: %w", id, faction.ErrMalformedDocument)
	}
	return faction.Normalize(raw)
}

// Prune deletes all but the newest keep snapshots per faction name.
func (a *Archive) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := a.conn.Exec(`
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY faction ORDER BY id DESC) AS rn
				FROM snapshots
			) WHERE rn <= ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		slog.Info("snapshots pruned", "removed", n, "keep", keep)
	}
	return n, nil
}

// SetMeta stores a key-value pair in archive metadata.
func (a *Archive) SetMeta(key, value string) error {
	_, err := a.conn.Exec(
		"INSERT OR REPLACE INTO archive_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (a *Archive) GetMeta(key string) (string, error) {
	var value string
	err := a.conn.Get(&value, "SELECT value FROM archive_meta WHERE key = ?", key)
	return value, err
}
