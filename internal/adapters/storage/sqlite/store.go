package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"slot-swapper/internal/domain/events"
	"slot-swapper/internal/domain/swaps"
	"slot-swapper/internal/domain/users"

	sqlite3 "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

const (
	kindEvent = "event"
	kindSwap  = "swap_request"
	kindUser  = "user"
)

// queryer es lo común entre *sql.DB y *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persiste eventos, solicitudes y usuarios en un archivo SQLite.
// Usa una sola conexión: toda tx queda serializada contra el resto de la app.
type Store struct {
	db *sql.DB
}

// Open crea o abre la base en path y aplica el schema. Es idempotente.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Events() events.Repository  { return &eventRepo{rec: records{q: s.db, kind: kindEvent}} }
func (s *Store) Requests() swaps.Repository { return &swapRepo{rec: records{q: s.db, kind: kindSwap}} }
func (s *Store) Users() users.Repository    { return &userRepo{rec: records{q: s.db, kind: kindUser}} }

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx swaps.Tx) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(ctx, txView{tx: tx})
	})
}

func (s *Store) RunInEventTx(ctx context.Context, fn func(ctx context.Context, repo events.Repository) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(ctx, &eventRepo{rec: records{q: tx, kind: kindEvent}})
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type txView struct {
	tx *sql.Tx
}

func (v txView) Events() events.Repository  { return &eventRepo{rec: records{q: v.tx, kind: kindEvent}} }
func (v txView) Requests() swaps.Repository { return &swapRepo{rec: records{q: v.tx, kind: kindSwap}} }

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("execute %q: %w", p, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}
