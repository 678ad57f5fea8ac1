package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsUnavailableError(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{name: "nil", err: nil, unavailable: false},
		{name: "connection done", err: sql.ErrConnDone, unavailable: true},
		{name: "invalid db handle", err: gorm.ErrInvalidDB, unavailable: true},
		{name: "deadline exceeded", err: context.DeadlineExceeded, unavailable: true},
		{name: "bad driver connection", err: driver.ErrBadConn, unavailable: true},
		{name: "closed pool", err: errors.New("sql: database is closed"), unavailable: true},
		{name: "wrapped closed pool", err: fmt.Errorf("settings: get: %w", errors.New("sql: database is closed")), unavailable: true},
		{name: "net error", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("timeout")}, unavailable: true},
		{name: "postgres connection failure", err: &pgconn.PgError{Code: "08006"}, unavailable: true},
		{name: "postgres unique violation", err: &pgconn.PgError{Code: "23505"}, unavailable: false},
		{name: "mysql server gone", err: &mysql.MySQLError{Number: 2006}, unavailable: true},
		{name: "mysql duplicate entry", err: &mysql.MySQLError{Number: 1062}, unavailable: false},
		{name: "record not found", err: gorm.ErrRecordNotFound, unavailable: false},
		{name: "generic failure", err: errors.New("constraint violated"), unavailable: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.unavailable, isUnavailableError(tc.err))
		})
	}
}
