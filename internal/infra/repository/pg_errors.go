package repository

import (
	"errors"

	repo "littlelemon/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

// postgresのSQLSTATE
const (
	pgNumericOutOfRange    = "22003"
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// DBエラーをrepositoryのエラーに寄せる。該当しなければそのまま返す
func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return repo.ErrDuplicate
	case pgNumericOutOfRange:
		return repo.ErrOutOfRange
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return repo.ErrConflict
	}
	return err
}
