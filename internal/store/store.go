// Package store is the persistence layer for users, servers, channels,
// members and messages. It runs against sqlite in self-contained mode and
// mysql/mariadb otherwise; every mutating operation is a single transaction,
// so a failed call leaves no partial change behind.
package store

import (
	"database/sql"

	"go.uber.org/zap"
)

type Store struct {
	db    *sql.DB
	sugar *zap.SugaredLogger
}

func New(sugar *zap.SugaredLogger, db *sql.DB) *Store {
	return &Store{db: db, sugar: sugar}
}

func (s *Store) Close() error {
	return s.db.Close()
}
