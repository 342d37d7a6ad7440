package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/satheeshds/cashpilot/ledger"
)

// PostgreSQL error codes the store translates.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

var _ ledger.Store = (*Store)(nil)

// Store runs every CashPilot query against a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type scanner interface {
	Scan(dest ...any) error
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
