package postgres

import (
	"context"
	"database/sql"
	"errors"

	"slot-swapper/internal/domain/events"
	"slot-swapper/internal/domain/swaps"
	"slot-swapper/internal/domain/users"

	"github.com/jackc/pgx/v5/pgconn"
)

// queryer es lo común entre *sql.DB y *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store agrupa los repos sobre un mismo *sql.DB.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Events() events.Repository  { return &EventsRepo{q: s.db} }
func (s *Store) Requests() swaps.Repository { return &SwapsRepo{q: s.db} }
func (s *Store) Users() users.Repository    { return &UsersRepo{q: s.db} }

func (s *Store) Close() error { return s.db.Close() }

// RunInTx corre fn en una sql.Tx; los GetByID dentro de la tx toman
// SELECT ... FOR UPDATE, así dos swaps sobre el mismo evento se serializan.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx swaps.Tx) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(ctx, txView{tx: tx})
	})
}

func (s *Store) RunInEventTx(ctx context.Context, fn func(ctx context.Context, repo events.Repository) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(ctx, &EventsRepo{q: tx, forUpdate: true})
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		// no-op si ya hubo Commit
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type txView struct {
	tx *sql.Tx
}

func (v txView) Events() events.Repository  { return &EventsRepo{q: v.tx, forUpdate: true} }
func (v txView) Requests() swaps.Repository { return &SwapsRepo{q: v.tx, forUpdate: true} }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func lockClause(forUpdate bool) string {
	if forUpdate {
		return " FOR UPDATE"
	}
	return ""
}
