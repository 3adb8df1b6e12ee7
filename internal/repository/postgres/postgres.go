package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"library-circulation-backend/internal/logger"
	"library-circulation-backend/internal/repository"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/lib/pq"
)

const dialectPostgres = "postgres"

// querier is satisfied by both *sql.DB and *sql.Tx so every repository can
// run either standalone or inside an atomic unit.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func dialect() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

type Store struct {
	db    *sql.DB
	repos repository.Repositories
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		repos: newRepositories(db),
	}
}

func newRepositories(q querier) repository.Repositories {
	return repository.Repositories{
		Books:        NewBookRepository(q),
		Members:      NewMemberRepository(q),
		Transactions: NewTransactionRepository(q),
		Fines:        NewFineRepository(q),
	}
}

func (s *Store) Repositories() repository.Repositories {
	return s.repos
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx runs fn inside a database transaction. The transaction is committed
// when fn returns nil and rolled back when it returns an error or panics.
func (s *Store) WithTx(ctx context.Context, fn repository.TxFunc) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, newRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.ErrorContext(ctx, "Failed to roll back transaction", "error", rbErr, "cause", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func columns(fields []string) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = f
	}
	return out
}

func qualified(alias string, fields []string) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = goqu.I(alias + "." + f)
	}
	return out
}

func applyPage(ds *goqu.SelectDataset, limit, offset int) *goqu.SelectDataset {
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}
	return ds
}
