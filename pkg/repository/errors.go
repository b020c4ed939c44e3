package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// ErrConstraint indicates a row was rejected by a CHECK constraint.
var ErrConstraint = errors.New("check constraint violated")

// MapError translates database errors to domain errors.
// sql.ErrNoRows becomes notFoundErr and a PostgreSQL unique violation becomes
// duplicateErr. Check violations are wrapped in ErrConstraint. Other errors
// are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return duplicateErr
		case pgCheckViolation:
			return errors.Join(ErrConstraint, err)
		}
	}

	return err
}
