package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the postgres error code for a violated unique
// constraint.
const pgUniqueViolation = "23505"

// IsDuplicateKey reports whether err came from a violated unique
// constraint. Gorm translates driver errors when TranslateError is on;
// the pgconn check covers raw postgres errors that bypass translation.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
