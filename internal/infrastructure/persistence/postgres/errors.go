package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/expertteam/expert/internal/domain"
)

// PostgreSQL error codes.
const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

// parseID validates a textual UUID.
func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return parsed, nil
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key constraint violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

// uniqueConstraint returns the name of the violated unique constraint, or "" if err is not one.
func uniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}

// checkRowsAffected returns notFound when a write matched no row.
func checkRowsAffected(tag pgconn.CommandTag, notFound error) error {
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
