package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core"
	"github.com/trezcool/mafunzo/core/seed"
)

type resetRepository struct {
	db core.DBExecutor
}

var _ seed.Truncater = (*resetRepository)(nil) // interface compliance check

func NewResetRepository(db core.DBExecutor) *resetRepository {
	return &resetRepository{db: db}
}

// TruncateAll empties every domain table (children first) and restarts their id sequences.
func (repo resetRepository) TruncateAll(ctx context.Context, exec ...core.DBExecutor) error {
	ex := core.GetExec(repo.db, exec)
	for _, table := range []string{"user_training_progress", "training_modules", "users"} {
		if _, err := ex.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrapf(err, "deleting from %s", table)
		}
	}
	q := "DELETE FROM sqlite_sequence WHERE name IN ('user_training_progress', 'training_modules', 'users')"
	if _, err := ex.ExecContext(ctx, q); err != nil {
		return errors.Wrap(err, "resetting id sequences")
	}
	return nil
}
