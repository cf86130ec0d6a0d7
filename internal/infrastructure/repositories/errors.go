package repositories

import (
	"errors"
	"strings"

	domainerrors "digimarket.backend/internal/domain/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

// isUniqueViolation recognises duplicate key errors from every driver we run on.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	// sqlite without TranslateError
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translateWriteError maps constraint violations to ErrConflict.
func translateWriteError(err error) error {
	if isUniqueViolation(err) {
		return domainerrors.ErrConflict
	}
	return err
}

// translateReadError maps a missing row to ErrNotFound.
func translateReadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainerrors.ErrNotFound
	}
	return err
}
