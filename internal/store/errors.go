package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")
var ErrDuplicate = errors.New("already exists")

const pgUniqueViolation = "23505"

// translate turns driver errors into something safe to show a client.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s %w", uniqueField(pgErr), ErrDuplicate)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("unique field %w", ErrDuplicate)
	}
	return err
}

// uniqueField guesses the column from a constraint like "idx_users_email".
func uniqueField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	name := pgErr.ConstraintName
	if i := strings.LastIndex(name, "_"); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return "unique field"
}
