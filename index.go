package floorsign

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// FingerprintIndex records the content checksum each encoded sibling was
// produced from, so the transcoding cache can notice a source file that
// changed after its first encode instead of serving the stale sibling
// forever.
type FingerprintIndex struct {
	db *sql.DB
}

// NewFingerprintIndex opens or creates the index database at file.
func NewFingerprintIndex(file string) (*FingerprintIndex, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS fingerprint (path TEXT PRIMARY KEY NOT NULL, crc TEXT NOT NULL)"); err != nil {
		return nil, err
	}

	return &FingerprintIndex{
		db: db,
	}, nil
}

// Lookup returns the recorded checksum for a source path, or "" if the path
// has never been encoded.
func (i *FingerprintIndex) Lookup(path string) (string, error) {
	var crc string
	switch err := i.db.QueryRow("SELECT crc FROM fingerprint WHERE path = ?", path).Scan(&crc); err {
	case sql.ErrNoRows:
		return "", nil
	case nil:
		return crc, nil
	default:
		return "", err
	}
}

// Store records the checksum a source path was encoded from.
func (i *FingerprintIndex) Store(path, crc string) error {
	if _, err := i.db.Exec("INSERT OR REPLACE INTO fingerprint (path, crc) VALUES (?, ?)", path, crc); err != nil {
		return err
	}
	return nil
}

// Close closes the index database.
func (i *FingerprintIndex) Close() error {
	return i.db.Close()
}
