package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zots0127/codepoint/pkg/types"
	_ "modernc.org/sqlite"
)

// PageSize is the fixed page length for text search.
const PageSize = 20

// Store holds the postcode table and the import ledger.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS postcodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		postcode VARCHAR(7) NOT NULL UNIQUE,
		eastings INTEGER NOT NULL,
		northings INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_postcodes_eastings ON postcodes(eastings);
	CREATE INDEX IF NOT EXISTS idx_postcodes_northings ON postcodes(northings);

	CREATE TABLE IF NOT EXISTS imports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content_hash TEXT NOT NULL,
		size INTEGER NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE(content_hash, size)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// ByPrefix returns every stored postcode starting with prefix. Ingestion
// loads one area's rows with a single call instead of per-row lookups.
func (s *Store) ByPrefix(prefix string) ([]types.Postcode, error) {
	rows, err := s.db.Query(
		"SELECT id, postcode, eastings, northings, created_at, updated_at FROM postcodes WHERE postcode LIKE ?",
		prefix+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPostcodes(rows)
}

// InsertBatch writes the staged records in one multi-row statement.
func (s *Store) InsertBatch(batch []types.Postcode) error {
	if len(batch) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO postcodes (postcode, eastings, northings, created_at, updated_at) VALUES ")
	args := make([]interface{}, 0, len(batch)*5)
	for i, p := range batch {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, p.Postcode, p.Eastings, p.Northings, p.CreatedAt, p.UpdatedAt)
	}

	_, err := s.db.Exec(sb.String(), args...)
	return err
}

// UpdateCoordinates rewrites a postcode's grid reference and bumps
// updated_at. Callers only invoke this when the coordinates changed.
func (s *Store) UpdateCoordinates(postcode string, eastings, northings int) error {
	_, err := s.db.Exec(
		"UPDATE postcodes SET eastings = ?, northings = ?, updated_at = ? WHERE postcode = ?",
		eastings, northings, time.Now(), postcode,
	)
	return err
}

// likeEscaper makes a user-supplied term literal inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SearchText returns one page of postcodes containing term as a literal
// substring; LIKE wildcards in the term do not act as wildcards.
func (s *Store) SearchText(term string, page int) ([]types.Postcode, error) {
	if page < 1 {
		page = 1
	}
	rows, err := s.db.Query(
		`SELECT id, postcode, eastings, northings, created_at, updated_at FROM postcodes WHERE postcode LIKE ? ESCAPE '\' ORDER BY id LIMIT ? OFFSET ?`,
		"%"+likeEscaper.Replace(term)+"%", PageSize, (page-1)*PageSize,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPostcodes(rows)
}

// WithinBounds is the coarse square pre-filter: both axes inclusive.
func (s *Store) WithinBounds(minEastings, maxEastings, minNorthings, maxNorthings int) ([]types.Postcode, error) {
	rows, err := s.db.Query(
		"SELECT id, postcode, eastings, northings, created_at, updated_at FROM postcodes WHERE eastings BETWEEN ? AND ? AND northings BETWEEN ? AND ? ORDER BY id",
		minEastings, maxEastings, minNorthings, maxNorthings,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPostcodes(rows)
}

func (s *Store) CountPostcodes() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM postcodes").Scan(&count)
	return count, err
}

func scanPostcodes(rows *sql.Rows) ([]types.Postcode, error) {
	var out []types.Postcode
	for rows.Next() {
		var p types.Postcode
		if err := rows.Scan(&p.ID, &p.Postcode, &p.Eastings, &p.Northings, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
