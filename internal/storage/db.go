package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"inkmeta/internal"
)

type DB struct {
	conn *sql.DB
}

type WriteResult struct {
	Inserted  int
	Corrected int64
}

// Rebuild discards any store at path and returns a fresh one with an empty
// key_cards table. Prior contents are never merged.
func Rebuild(path string) (*DB, error) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, eris.Wrapf(err, "storage: remove %s", p)
		}
	}
	return Open(path)
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrap(err, "storage: create store dir")
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "storage: open")
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, eris.Wrap(err, "storage: set journal mode")
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS key_cards (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  archetype TEXT,
  quantity INTEGER,
  image_src TEXT,
  set_code TEXT,
  card_number TEXT
);
`
	_, err := d.conn.Exec(schema)
	return eris.Wrap(err, "storage: create schema")
}

// WriteRun owns the store for one full batch: rebuild, insert every record,
// apply the corrections, release.
func WriteRun(path string, records []internal.UsageRecord, corrections []internal.Correction) (result WriteResult, err error) {
	db, err := Rebuild(path)
	if err != nil {
		return WriteResult{}, err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = eris.Wrap(cerr, "storage: close")
		}
	}()

	if err := db.InsertUsage(records); err != nil {
		return WriteResult{}, err
	}
	corrected, err := db.ApplyCorrections(corrections)
	if err != nil {
		return WriteResult{}, err
	}

	return WriteResult{Inserted: len(records), Corrected: corrected}, nil
}

func (d *DB) InsertUsage(records []internal.UsageRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return eris.Wrap(err, "storage: begin insert")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO key_cards (archetype, quantity, image_src, set_code, card_number)
VALUES (?, ?, ?, ?, ?)
`)
	if err != nil {
		return eris.Wrap(err, "storage: prepare insert")
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.Archetype, r.Quantity, r.ImageSrc, r.SetCode, r.CardNumber); err != nil {
			return eris.Wrapf(err, "storage: insert %s %s/%s", r.Archetype, r.SetCode, r.CardNumber)
		}
	}

	return eris.Wrap(tx.Commit(), "storage: commit insert")
}

// ApplyCorrections rewrites card_number for every row matching an entry's
// (set, observed) pair, across the whole table. Returns the rows rewritten.
func (d *DB) ApplyCorrections(corrections []internal.Correction) (int64, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, eris.Wrap(err, "storage: begin corrections")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`UPDATE key_cards SET card_number = ? WHERE set_code = ? AND card_number = ?`)
	if err != nil {
		return 0, eris.Wrap(err, "storage: prepare corrections")
	}
	defer stmt.Close()

	var total int64
	for _, c := range corrections {
		res, err := stmt.Exec(c.Corrected, c.SetCode, c.Observed)
		if err != nil {
			return 0, eris.Wrapf(err, "storage: correct %s %s", c.SetCode, c.Observed)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "storage: rows affected")
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "storage: commit corrections")
	}
	return total, nil
}

func (d *DB) ListUsage() ([]internal.UsageRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, archetype, quantity, image_src, set_code, card_number
FROM key_cards ORDER BY id ASC`)
	if err != nil {
		return nil, eris.Wrap(err, "storage: list usage")
	}
	defer rows.Close()

	var out []internal.UsageRecord
	for rows.Next() {
		var r internal.UsageRecord
		if err := rows.Scan(&r.ID, &r.Archetype, &r.Quantity, &r.ImageSrc, &r.SetCode, &r.CardNumber); err != nil {
			return nil, eris.Wrap(err, "storage: scan usage")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) CountByArchetype() ([]internal.ArchetypeCount, error) {
	rows, err := d.conn.Query(`
SELECT archetype, COUNT(*), COALESCE(SUM(quantity), 0)
FROM key_cards
GROUP BY archetype
ORDER BY archetype ASC`)
	if err != nil {
		return nil, eris.Wrap(err, "storage: count by archetype")
	}
	defer rows.Close()

	var out []internal.ArchetypeCount
	for rows.Next() {
		var c internal.ArchetypeCount
		if err := rows.Scan(&c.Archetype, &c.Records, &c.Copies); err != nil {
			return nil, eris.Wrap(err, "storage: scan count")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
