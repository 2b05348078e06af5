package database

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const postgresDefaultPort = 5432

// NewPostgres returns a client for PostgreSQL engines (postgres, aurora-postgresql).
func NewPostgres(opts ...Option) *SQLClient {
	c := &SQLClient{
		driver:         "pgx",
		defaultPort:    postgresDefaultPort,
		connectTimeout: 10 * time.Second,
		open:           sql.Open,
		dsn:            postgresDSN,
		setPassword: func(ctx context.Context, db *sql.DB, creds Credentials, newPassword string) error {
			_, err := db.ExecContext(ctx, alterRolePassword(creds.Username, newPassword))
			return err
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func postgresDSN(creds Credentials, timeout time.Duration) string {
	q := url.Values{}
	q.Set("sslmode", "require")
	if timeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(timeout.Seconds())))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(creds.Username, creds.Password),
		Host:     net.JoinHostPort(creds.Host, strconv.Itoa(creds.Port)),
		Path:     "/postgres",
		RawQuery: q.Encode(),
	}
	return u.String()
}

// ALTER ROLE takes no bind parameters, so the password is sent as a quoted literal.
func alterRolePassword(username, password string) string {
	return "ALTER ROLE " + pgx.Identifier{username}.Sanitize() +
		" PASSWORD '" + strings.ReplaceAll(password, "'", "''") + "'"
}
