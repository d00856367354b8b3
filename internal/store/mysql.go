// Package store persists parse results to MySQL for later review.
package store

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"

	perrors "screen-parser/internal/errors"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS parse_results (
	id INT AUTO_INCREMENT PRIMARY KEY,
	image_data LONGBLOB,
	merged_json LONGTEXT,
	digest LONGTEXT,
	source VARCHAR(32),
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// Store writes parse results to a MySQL database.
type Store struct {
	db *sql.DB
}

// Open connects to the database and ensures the results table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, perrors.Wrap(perrors.CodeStoreFailed, err, "open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, perrors.Wrap(perrors.CodeStoreFailed, err, "ping database")
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, perrors.Wrap(perrors.CodeStoreFailed, err, "create results table")
	}
	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult inserts one parse result and returns its row id.
func (s *Store) SaveResult(ctx context.Context, imagePNG, mergedJSON []byte, digest, source string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO parse_results (image_data, merged_json, digest, source) VALUES (?, ?, ?, ?)`,
		imagePNG, mergedJSON, digest, source)
	if err != nil {
		return 0, perrors.Wrap(perrors.CodeStoreFailed, err, "insert parse result")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, perrors.Wrap(perrors.CodeStoreFailed, err, "read insert id")
	}
	return id, nil
}
