package postgres

import (
	"errors"
	"fmt"

	"invoicehub/internal/storage"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNumericOutOfRange   = "22003"
)

// builder returns a postgres statement builder; queries come out with $n placeholders.
func builder() *sql.DialectBuilder {
	return sql.Dialect(dialect.Postgres)
}

// mapError translates pgx errors to storage sentinels, wrapping everything else.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation, pgCheckViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, storage.ErrConflict)
		case pgNumericOutOfRange:
			return fmt.Errorf("%s: %w", op, storage.ErrOutOfRange)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
