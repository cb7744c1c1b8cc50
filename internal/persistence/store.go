// Package persistence provides the SQLite-backed save store. A save is one
// JSON snapshot of the colony, lz4-compressed with a blake3 checksum, plus a
// key/value meta table carrying the last-saved timestamp that offline
// catch-up starts from.
package persistence

import (
	"bytes"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"

	"github.com/talgya/outpost/internal/colony"
)

const metaLastSaved = "last_saved_ms"

// lz4FrameMagic prefixes every lz4 frame; legacy saves stored plain JSON.
var lz4FrameMagic = []byte{0x04, 0x22, 0x4d, 0x18}

// Store wraps the SQLite connection.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates the save database at path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data BLOB NOT NULL,
		checksum TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveColony writes the snapshot and stamps savedAt as the catch-up anchor.
func (s *Store) SaveColony(snap colony.Snapshot, savedAt time.Time) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	compressed, err := compress(raw)
	if err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	sum := blake3.Sum256(compressed)

	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO snapshots (id, data, checksum) VALUES (1, ?, ?)",
		compressed, hex.EncodeToString(sum[:]),
	); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		metaLastSaved, fmt.Sprintf("%d", savedAt.UnixMilli()),
	); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return tx.Commit()
}

// LoadColony reads the stored snapshot. ok is false when no save exists.
// A corrupt checksum is logged and decoding attempted anyway; an undecodable
// blob reports no save rather than an error, so a damaged file degrades to a
// fresh start instead of a crash.
func (s *Store) LoadColony() (snap colony.Snapshot, savedAt time.Time, ok bool, err error) {
	var row struct {
		Data     []byte `db:"data"`
		Checksum string `db:"checksum"`
	}
	err = s.conn.Get(&row, "SELECT data, checksum FROM snapshots WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return colony.Snapshot{}, time.Time{}, false, nil
	}
	if err != nil {
		return colony.Snapshot{}, time.Time{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	sum := blake3.Sum256(row.Data)
	if hex.EncodeToString(sum[:]) != row.Checksum {
		slog.Warn("snapshot checksum mismatch, attempting load anyway")
	}

	raw := row.Data
	if bytes.HasPrefix(raw, lz4FrameMagic) {
		raw, err = decompress(raw)
		if err != nil {
			slog.Error("snapshot decompress failed, starting fresh", "error", err)
			return colony.Snapshot{}, time.Time{}, false, nil
		}
	}

	if err := json.Unmarshal(raw, &snap); err != nil {
		slog.Error("snapshot decode failed, starting fresh", "error", err)
		return colony.Snapshot{}, time.Time{}, false, nil
	}

	return snap, s.lastSaved(), true, nil
}

// lastSaved reads the catch-up anchor; zero time when absent or malformed.
func (s *Store) lastSaved() time.Time {
	var value string
	if err := s.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", metaLastSaved); err != nil {
		return time.Time{}
	}
	var ms int64
	if _, err := fmt.Sscanf(value, "%d", &ms); err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(src); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(src []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(src))
	return io.ReadAll(zr)
}
