package store

import "time"

// SeenImport reports whether an archive with this content hash was
// registered before.
func (s *Store) SeenImport(hash string) (bool, error) {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM imports WHERE content_hash = ?)", hash).Scan(&exists)
	return exists, err
}

// RecordImport registers a fetched archive. Re-registering an identical
// (hash, size) pair only refreshes updated_at, so the ledger stays at one
// row per archive.
func (s *Store) RecordImport(hash string, size int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"INSERT OR IGNORE INTO imports (content_hash, size, updated_at) VALUES (?, ?, ?)",
		hash, size, time.Now(),
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		_, err = tx.Exec(
			"UPDATE imports SET updated_at = ? WHERE content_hash = ? AND size = ?",
			time.Now(), hash, size,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
