// Package testutil provides helpers shared by the test suites.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/mafunzo/core"
	"github.com/trezcool/mafunzo/core/training"
	"github.com/trezcool/mafunzo/core/user"
	"github.com/trezcool/mafunzo/storage/database"
	sqlxrepos "github.com/trezcool/mafunzo/storage/database/sqlx"
)

// NopLogger discards everything.
type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// NewConfig returns the TEST config with the default seed dataset.
func NewConfig(t *testing.T) *core.Config {
	t.Setenv("ENV", "TEST")
	conf := core.NewConfig()
	conf.Database.Path = filepath.Join(t.TempDir(), "test.db")
	return conf
}

// PrepareDB opens a fresh, fully migrated SQLite database living in a temp dir.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database.SetMigrationLogger(NopLogger{})
	db, err := database.OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("PrepareDB() failed to migrate: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, db core.DBExecutor, uname, pwd string, isAdmin bool, createdAt ...time.Time) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		IsAdmin:   isAdmin,
		CreatedAt: tstamp,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := sqlxrepos.NewUserRepository(db).CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateModule inserts a module whose answer is "answer", without reconciling progress.
func CreateModule(t *testing.T, db core.DBExecutor, title string, createdAt ...time.Time) training.Module {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	mod, err := sqlxrepos.NewTrainingRepository(db).CreateModule(context.Background(), training.Module{
		Title:     title,
		Duration:  "5 minutes",
		Question:  "question?",
		Answer:    "answer",
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateModule() failed: %v", err)
	}
	return mod
}

// CountProgress returns the number of stored progress records of (userID, moduleID).
func CountProgress(t *testing.T, db core.DBExecutor, userID, moduleID int) int {
	t.Helper()

	var n int
	q := "SELECT COUNT(*) FROM user_training_progress WHERE user_id = ? AND module_id = ?"
	if err := sqlx.GetContext(context.Background(), db, &n, q, userID, moduleID); err != nil {
		t.Fatalf("CountProgress() failed: %v", err)
	}
	return n
}
