package database

import (
	"context"
	"database/sql"
	"embed"
	"net/url"
	"path"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/minicrm/core"
)

//go:embed migrations
var migrationsFS embed.FS

var gooseRunFunc = goose.RunContext // mockable

func dsn(conf core.DatabaseConfig) (string, error) {
	switch Dialect(conf.Engine) {
	case Postgres:
		sslMode := "require"
		if conf.DisableTLS {
			sslMode = "disable"
		}
		q := make(url.Values)
		q.Set("sslmode", sslMode)
		q.Set("timezone", "utc")

		u := url.URL{
			Scheme:   conf.Engine,
			User:     url.UserPassword(conf.User, conf.Password),
			Host:     conf.Address(),
			Path:     conf.Name,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	case MySQL:
		cfg := mysql.NewConfig()
		cfg.User = conf.User
		cfg.Passwd = conf.Password
		cfg.Net = "tcp"
		cfg.Addr = conf.Address()
		cfg.DBName = conf.Name
		cfg.ParseTime = true
		cfg.ClientFoundRows = true // affected rows = matched rows, as on postgres
		cfg.Loc = time.UTC
		if !conf.DisableTLS {
			cfg.TLSConfig = "true"
		}
		return cfg.FormatDSN(), nil
	default:
		return "", errors.Errorf("unsupported database engine %q", conf.Engine)
	}
}

// Open connects to the configured database and waits for it to be ready.
func Open(ctx context.Context, conf core.DatabaseConfig) (*sqlx.DB, error) {
	src, err := dsn(conf)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(conf.Engine, src)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if conf.MaxOpenConns > 0 {
		db.SetMaxOpenConns(conf.MaxOpenConns)
		db.SetMaxIdleConns(conf.MaxOpenConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	if err = ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping cancelled")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate runs a goose command (up, down, status...) with the migrations of engine.
func Migrate(ctx context.Context, db *sql.DB, engine, command string, args ...string) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(engine); err != nil {
		return errors.Wrap(err, "setting migrations dialect")
	}
	dir := path.Join("migrations", engine)
	if err := gooseRunFunc(ctx, command, db, dir, args...); err != nil {
		return errors.Wrapf(err, "migrating database (%s)", command)
	}
	return nil
}
