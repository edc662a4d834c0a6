package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/shared"
	"github.com/mattn/go-sqlite3"
)

// DBTX is the query surface shared by [sql.DB] and [sql.Tx].
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner starts transactions; satisfied by [sql.DB].
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// InTx runs fn inside a transaction and commits it when fn returns nil.
//
// When fn fails the transaction is rolled back before InTx returns, so callers never observe a
// half-applied state. Errors that are not already classified are wrapped with [shared.ErrPersistence].
func InTx(ctx context.Context, db TxBeginner, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err, "begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(classify(err, "run transaction"), classify(rbErr, "roll back transaction"))
		}
		return classify(err, "run transaction")
	}

	if err := tx.Commit(); err != nil {
		return classify(err, "commit transaction")
	}

	return nil
}

// classify wraps a driver error with the matching catalog sentinel. Already classified errors pass through.
func classify(err error, action string) error {
	if err == nil {
		return nil
	}

	if classified(err) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s: %w", shared.ErrNotFound, action, err)
	}

	if isIntegrityViolation(err) {
		return fmt.Errorf("%w: failed to %s: %w", shared.ErrConstraint, action, err)
	}

	return fmt.Errorf("%w: failed to %s: %w", shared.ErrPersistence, action, err)
}

// isIntegrityViolation reports whether err is a schema integrity failure. Trigger aborts and other constraint
// codes are store failures.
func isIntegrityViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return false
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintForeignKey,
		sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
		return true
	}
	return false
}

func classified(err error) bool {
	for _, target := range []error{shared.ErrValidation, shared.ErrNotFound, shared.ErrConstraint, shared.ErrPersistence} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// kindTables names the dictionary table, join table and join column of one relationship kind.
type kindTables struct {
	table  string
	join   string
	column string
}

var tables = map[models.Kind]kindTables{
	models.Genre:    {table: "genres", join: "movie_genres", column: "genre_id"},
	models.Director: {table: "directors", join: "movie_directors", column: "director_id"},
	models.Actor:    {table: "actors", join: "movie_actors", column: "actor_id"},
	models.Studio:   {table: "studios", join: "movie_studios", column: "studio_id"},
}

func tablesFor(kind models.Kind) (kindTables, error) {
	t, ok := tables[kind]
	if !ok {
		return kindTables{}, fmt.Errorf("%w: unknown kind %d", shared.ErrValidation, int(kind))
	}
	return t, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// rowsAffected returns the affected row count of res, classified on failure.
func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(err, "get affected rows")
	}
	return n, nil
}
