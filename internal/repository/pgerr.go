package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgerrcode.UniqueViolation
}

func isOutOfRange(err error) bool {
	switch pgErrorCode(err) {
	case pgerrcode.NumericValueOutOfRange, pgerrcode.CheckViolation:
		return true
	default:
		return false
	}
}
