package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"campaignhub/internal/domain"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// dbError wraps an unexpected driver error so callers see domain.ErrDatabase
// while the cause stays available for logging.
func dbError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrDatabase, op, err)
}

var errConcurrentStatusChange = fmt.Errorf("%w: campaign status was changed by another request", domain.ErrConflict)

// jsonValue stores v as a JSON text column in map based updates, where
// gorm does not run field serializers.
type jsonValue struct{ v any }

func (j jsonValue) Value() (driver.Value, error) {
	b, err := json.Marshal(j.v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
