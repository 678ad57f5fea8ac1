package services

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// isUnavailableError reports whether an error indicates the backing store is
// unreachable rather than a data-level failure. Used to map persistence
// outages onto 503 responses instead of generic 500s.
func isUnavailableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Postgres class 08 covers connection exceptions.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && strings.HasPrefix(pgErr.Code, "08") {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil {
		switch myErr.Number {
		case 1040, 1042, 1043, 1053, 2002, 2003, 2006, 2013:
			return true
		}
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "database is locked") ||
		strings.Contains(lower, "database is closed") ||
		strings.Contains(lower, "bad connection")
}
