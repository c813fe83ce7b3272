package database

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/trezcool/mafunzo/core"
	appfs "github.com/trezcool/mafunzo/fs"
)

const (
	driverName    = "sqlite"
	gooseDialect  = "sqlite3"
	migrationsDir = "migrations"
)

func dsn(path string) string {
	q := make(url.Values)
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_time_format", "sqlite")
	return filepath.Clean(path) + "?" + q.Encode()
}

// Open opens the SQLite database file at conf.Database.Path.
func Open(conf *core.Config) (*sqlx.DB, error) {
	return OpenPath(conf.Database.Path)
}

// OpenPath opens the SQLite database file at path and waits for it to be ready.
func OpenPath(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, dsn(path))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// CreateIfNotExist makes sure the directory holding the database file exists.
func CreateIfNotExist(conf *core.Config) error {
	dir := filepath.Dir(conf.Database.Path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating database directory")
	}
	return nil
}

var gooseRunFunc = goose.RunContext // mockable

func init() {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(gooseDialect); err != nil {
		panic(fmt.Sprintf("goose.SetDialect(%s): %v", gooseDialect, err))
	}
}

// SetMigrationLogger routes goose output to logger.
func SetMigrationLogger(logger core.Logger) {
	goose.SetLogger(gooseLogger{logger})
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	return RunMigrations(ctx, db, "up")
}

// RunMigrations runs the goose `command` (up, down, status, redo, version, ...) with args.
func RunMigrations(ctx context.Context, db *sqlx.DB, command string, args ...string) error {
	if err := gooseRunFunc(ctx, command, db.DB, migrationsDir, args...); err != nil {
		return errors.Wrapf(err, "running migrations (%s)", command)
	}
	return nil
}

type gooseLogger struct {
	logger core.Logger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatal(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}
