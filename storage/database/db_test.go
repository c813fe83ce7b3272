package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mafunzo/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestDSN(t *testing.T) {
	got := dsn("data/./app.db")
	assert.Contains(t, got, "data/app.db?")
	assert.Contains(t, got, "_pragma=foreign_keys%281%29")
	assert.Contains(t, got, "_time_format=sqlite")
}

func TestCreateIfNotExist(t *testing.T) {
	conf := &core.Config{Database: core.DatabaseConfig{Path: filepath.Join(t.TempDir(), "nested", "dir", "app.db")}}
	require.NoError(t, CreateIfNotExist(conf))
	assert.DirExists(t, filepath.Dir(conf.Database.Path))
}

func TestMigrate(t *testing.T) {
	SetMigrationLogger(nopLogger{})
	db, err := OpenPath(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "migrating twice is a no-op")

	var tables []string
	q := "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != 'goose_db_version' ORDER BY name"
	require.NoError(t, db.SelectContext(ctx, &tables, q))
	assert.Equal(t, []string{"training_modules", "user_training_progress", "users"}, tables)

	var fk bool
	require.NoError(t, db.GetContext(ctx, &fk, "PRAGMA foreign_keys"))
	assert.True(t, fk)
}

func TestRunMigrations(t *testing.T) {
	origRun := gooseRunFunc
	defer func() { gooseRunFunc = origRun }()

	var gotCommand string
	var gotArgs []string
	gooseRunFunc = func(_ context.Context, command string, _ *sql.DB, dir string, args ...string) error {
		gotCommand, gotArgs = command, args
		assert.Equal(t, migrationsDir, dir)
		return errors.New("boom")
	}

	db, err := OpenPath(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	err = RunMigrations(context.Background(), db, "down-to", "0")
	assert.EqualError(t, err, "running migrations (down-to): boom")
	assert.Equal(t, "down-to", gotCommand)
	assert.Equal(t, []string{"0"}, gotArgs)
}
