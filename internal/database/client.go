package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrConnect is returned when a connection handle cannot be created or reached.
	ErrConnect = errors.New("database connect")
	// ErrQuery is returned when a statement fails on an established connection.
	ErrQuery = errors.New("database query")
)

// Credentials identify one database account on one host.
type Credentials struct {
	Engine   string
	Host     string
	Port     int
	Username string
	Password string
}

// Client is the database collaborator used by the rotator.
type Client interface {
	// CheckLogin reports whether creds can log in. A rejected login is (false, nil).
	CheckLogin(ctx context.Context, creds Credentials) (bool, error)
	// SetPassword connects with creds and changes that account's password.
	SetPassword(ctx context.Context, creds Credentials, newPassword string) error
}

// OpenFunc matches sql.Open and lets tests substitute a mock connection.
type OpenFunc func(driverName, dsn string) (*sql.DB, error)

// Option configures an SQLClient.
type Option func(*SQLClient)

func WithOpener(open OpenFunc) Option {
	return func(c *SQLClient) { c.open = open }
}

func WithConnectTimeout(d time.Duration) Option {
	return func(c *SQLClient) { c.connectTimeout = d }
}

// SQLClient implements Client over database/sql for a single driver.
// Every call opens its own connection and closes it before returning.
type SQLClient struct {
	driver         string
	defaultPort    int
	connectTimeout time.Duration
	open           OpenFunc
	dsn            func(creds Credentials, timeout time.Duration) string
	setPassword    func(ctx context.Context, db *sql.DB, creds Credentials, newPassword string) error
}

func (c *SQLClient) connect(creds Credentials) (*sql.DB, error) {
	if creds.Host == "" || creds.Username == "" {
		return nil, fmt.Errorf("%w: host and username are required", ErrConnect)
	}
	if creds.Port == 0 {
		creds.Port = c.defaultPort
	}
	db, err := c.open(c.driver, c.dsn(creds, c.connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s@%s: %w", ErrConnect, creds.Username, creds.Host, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func (c *SQLClient) CheckLogin(ctx context.Context, creds Credentials) (bool, error) {
	db, err := c.connect(creds)
	if err != nil {
		return false, err
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, fmt.Errorf("%w: ping %s@%s: %w", ErrConnect, creds.Username, creds.Host, ctxErr)
		}
		return false, nil
	}
	return true, nil
}

func (c *SQLClient) SetPassword(ctx context.Context, creds Credentials, newPassword string) error {
	db, err := c.connect(creds)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping %s@%s: %w", ErrConnect, creds.Username, creds.Host, err)
	}
	if err := c.setPassword(ctx, db, creds, newPassword); err != nil {
		return fmt.Errorf("%w: set password for %s@%s: %w", ErrQuery, creds.Username, creds.Host, err)
	}
	return nil
}

// Dispatcher routes calls to the client matching the credentials' engine.
// MySQL is used when the engine is empty or unrecognised.
type Dispatcher struct {
	MySQL    Client
	Postgres Client
}

// NewDispatcher returns a Dispatcher over the default MySQL and PostgreSQL clients.
func NewDispatcher(opts ...Option) *Dispatcher {
	return &Dispatcher{
		MySQL:    NewMySQL(opts...),
		Postgres: NewPostgres(opts...),
	}
}

func (d *Dispatcher) clientFor(engine string) Client {
	if strings.Contains(strings.ToLower(engine), "postgres") {
		return d.Postgres
	}
	return d.MySQL
}

func (d *Dispatcher) CheckLogin(ctx context.Context, creds Credentials) (bool, error) {
	return d.clientFor(creds.Engine).CheckLogin(ctx, creds)
}

func (d *Dispatcher) SetPassword(ctx context.Context, creds Credentials, newPassword string) error {
	return d.clientFor(creds.Engine).SetPassword(ctx, creds, newPassword)
}
