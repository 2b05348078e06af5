package database

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	mysqlDefaultPort = 3306
	// Interpolated client side, see the DSN below.
	mysqlSetPassword = "SET PASSWORD = PASSWORD(?)"
)

// NewMySQL returns a client for MySQL-compatible engines (mysql, aurora-mysql, mariadb).
func NewMySQL(opts ...Option) *SQLClient {
	c := &SQLClient{
		driver:         "mysql",
		defaultPort:    mysqlDefaultPort,
		connectTimeout: 10 * time.Second,
		open:           sql.Open,
		dsn:            mysqlDSN,
		setPassword: func(ctx context.Context, db *sql.DB, _ Credentials, newPassword string) error {
			_, err := db.ExecContext(ctx, mysqlSetPassword, newPassword)
			return err
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func mysqlDSN(creds Credentials, timeout time.Duration) string {
	cfg := mysql.NewConfig()
	cfg.User = creds.Username
	cfg.Passwd = creds.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(creds.Host, strconv.Itoa(creds.Port))
	cfg.Timeout = timeout
	// SET PASSWORD cannot be prepared server side.
	cfg.InterpolateParams = true
	return cfg.FormatDSN()
}
