// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

// Package sqlite stores entries in one table of a sqlite database.
// Callers must import a database/sql driver registered as "sqlite3".
package sqlite

import (
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ssbc/fleck/internal/persist"
)

type Saver struct {
	db *sql.DB
}

var _ persist.Saver = (*Saver)(nil)

func New(base string) (*Saver, error) {
	if err := os.MkdirAll(base, 0700); err != nil {
		return nil, errors.Wrap(err, "persist/sqlite: failed to create base directory")
	}

	db, err := sql.Open("sqlite3", filepath.Join(base, "persisted.db"))
	if err != nil {
		return nil, errors.Wrap(err, "persist/sqlite: failed to open db")
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS persisted_blobs (
		key  TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "persist/sqlite: failed to create table")
	}

	return &Saver{db: db}, nil
}

func (s Saver) Close() error { return s.db.Close() }

func (s Saver) Put(key persist.Key, data []byte) error {
	hexKey := hex.EncodeToString(key)
	_, err := s.db.Exec(`INSERT OR REPLACE INTO persisted_blobs (key,data) VALUES(?,?)`, hexKey, data)
	return errors.Wrap(err, "persist/sqlite: failed to upsert value")
}

func (s Saver) Get(key persist.Key) ([]byte, error) {
	var data []byte
	hexKey := hex.EncodeToString(key)
	err := s.db.QueryRow(`SELECT data FROM persisted_blobs WHERE key = ?`, hexKey).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, persist.ErrNotFound
		}
		return nil, errors.Wrapf(err, "persist/sqlite: get %s failed", hexKey)
	}
	return data, nil
}

func (s Saver) Delete(key persist.Key) error {
	res, err := s.db.Exec(`DELETE FROM persisted_blobs WHERE key = ?`, hex.EncodeToString(key))
	if err != nil {
		return errors.Wrap(err, "persist/sqlite: failed to delete value")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return persist.ErrNotFound
	}
	return nil
}

func (s Saver) List() ([]persist.Key, error) {
	rows, err := s.db.Query(`SELECT key FROM persisted_blobs`)
	if err != nil {
		return nil, errors.Wrap(err, "persist/sqlite: failed to execute list query")
	}
	defer rows.Close()

	var keys []persist.Key
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, errors.Wrap(err, "persist/sqlite: failed to scan row")
		}
		bk, err := hex.DecodeString(k)
		if err != nil {
			return nil, errors.Wrapf(err, "persist/sqlite: invalid key %q", k)
		}
		keys = append(keys, bk)
	}
	return keys, rows.Err()
}
