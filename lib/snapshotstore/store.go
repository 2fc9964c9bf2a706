package snapshotstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"vitibrasil-backend/lib/scrapers/vitibrasil"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	category TEXT NOT NULL,
	year INTEGER NOT NULL,
	taken_at INTEGER NOT NULL,
	payload BLOB NOT NULL,
	PRIMARY KEY (category, year)
);
`

var ErrNotFound = errors.New("no snapshot for this category and year")
var ErrCorrupt = errors.New("stored snapshot is corrupt")

// Store persists raw-row snapshots keyed by (category, year), last write
// wins. payloads are ;-delimited CSV, the same shape as the upstream site's
// own CSV downloads, so a snapshot can also be seeded from those by hand.
type Store struct {
	db *sql.DB

	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
}

func NewStore(database *sql.DB) (*Store, error) {
	_, err := database.Exec(Schema)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:       database,
		keyLocks: map[string]*sync.Mutex{},
	}, nil
}

// Open opens a snapshot database at the given path. libsql urls are passed
// to the libsql driver, everything else is treated as a local sqlite file.
func Open(path string) (*Store, error) {
	driver := "sqlite"
	if strings.HasPrefix(path, "libsql://") {
		driver = "libsql"
	}
	database, err := sql.Open(driver, path)
	if err != nil {
		return nil, err
	}
	return NewStore(database)
}

func snapshotKey(category string, year int) string {
	return fmt.Sprintf("%s:%d", category, year)
}

// writes are serialized per (category, year) key, never globally, so
// concurrent refreshes of different categories don't block each other.
func (s *Store) lockKey(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.keyLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.keyLocks[key] = lock
	}
	return lock
}

// Get is a pure read: it never mutates the store.
func (s *Store) Get(ctx context.Context, category string, year int) ([]vitibrasil.RawRow, error) {
	var payload []byte
	err := s.db.QueryRowContext(
		ctx,
		`SELECT payload FROM snapshots WHERE category = ? AND year = ?`,
		category, year,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, err)
	}
	return rows, nil
}

func (s *Store) Put(ctx context.Context, category string, year int, rows []vitibrasil.RawRow) error {
	payload, err := encodeRows(rows)
	if err != nil {
		return err
	}

	lock := s.lockKey(snapshotKey(category, year))
	lock.Lock()
	defer lock.Unlock()

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO snapshots (category, year, taken_at, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT (category, year) DO UPDATE SET taken_at = excluded.taken_at, payload = excluded.payload`,
		category, year, time.Now().Unix(), payload,
	)
	return err
}

// absentCell marks a column a row never had, keeping it distinct from a
// present-but-empty cell across a round-trip. the header is the union of
// every row's keys, so rows missing a column still occupy its cell. cell
// text never contains control characters (extraction strips them).
const absentCell = "\x00"

func encodeRows(rows []vitibrasil.RawRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	headerSet := map[string]bool{}
	for _, row := range rows {
		for k := range row {
			headerSet[k] = true
		}
	}
	header := make([]string, 0, len(headerSet))
	for k := range headerSet {
		header = append(header, k)
	}
	sort.Strings(header)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(header); err != nil {
		return nil, err
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, k := range header {
			if v, ok := row[k]; ok {
				record[i] = v
			} else {
				record[i] = absentCell
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func decodeRows(payload []byte) ([]vitibrasil.RawRow, error) {
	if len(payload) == 0 {
		return []vitibrasil.RawRow{}, nil
	}

	r := csv.NewReader(bytes.NewReader(payload))
	r.Comma = ';'

	header, err := r.Read()
	if err != nil {
		return nil, err
	}

	rows := []vitibrasil.RawRow{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := vitibrasil.RawRow{}
		for i, k := range header {
			if record[i] != absentCell {
				row[k] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
