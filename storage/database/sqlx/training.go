package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core"
	"github.com/trezcool/mafunzo/core/training"
)

const moduleColumns = "m.id, m.title, m.duration, m.quiz_question, m.quiz_answer, m.created_at"

type trainingRepository struct {
	db core.DBExecutor
}

var _ training.Repository = (*trainingRepository)(nil) // interface compliance check

func NewTrainingRepository(db core.DBExecutor) *trainingRepository {
	return &trainingRepository{db: db}
}

func (repo trainingRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return training.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo trainingRepository) CheckTitleUniqueness(ctx context.Context, title string, exec ...core.DBExecutor) error {
	var exists bool
	q := "SELECT EXISTS (SELECT 1 FROM training_modules WHERE title = ?)"
	if err := sqlx.GetContext(ctx, core.GetExec(repo.db, exec), &exists, q, title); err != nil {
		return errors.Wrap(err, "checking title uniqueness")
	}
	if exists {
		return training.ErrTitleExists
	}
	return nil
}

func (repo trainingRepository) CreateModule(ctx context.Context, mod training.Module, exec ...core.DBExecutor) (training.Module, error) {
	q := `INSERT INTO training_modules (title, duration, quiz_question, quiz_answer, created_at)
		VALUES (?, ?, ?, ?, ?)`
	mod.CreatedAt = mod.CreatedAt.UTC()
	res, err := core.GetExec(repo.db, exec).ExecContext(ctx, q, mod.Title, mod.Duration, mod.Question, mod.Answer, mod.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return training.Module{}, training.ErrTitleExists
		}
		return training.Module{}, errors.Wrap(err, "inserting module")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return training.Module{}, errors.Wrap(err, "reading module id")
	}
	mod.ID = int(id)
	return mod, nil
}

func (repo trainingRepository) QueryModules(ctx context.Context, exec ...core.DBExecutor) ([]training.Module, error) {
	q := "SELECT " + moduleColumns + " FROM training_modules m ORDER BY m.created_at ASC, m.id ASC"
	mods := make([]training.Module, 0)
	if err := sqlx.SelectContext(ctx, core.GetExec(repo.db, exec), &mods, q); err != nil {
		return nil, errors.Wrap(err, "selecting modules")
	}
	return mods, nil
}

func (repo trainingRepository) GetModule(ctx context.Context, id int, exec ...core.DBExecutor) (training.Module, error) {
	var mod training.Module
	q := "SELECT " + moduleColumns + " FROM training_modules m WHERE m.id = ?"
	if err := sqlx.GetContext(ctx, core.GetExec(repo.db, exec), &mod, q, id); err != nil {
		return training.Module{}, repo.trapNoRowsErr(err, "selecting module")
	}
	return mod, nil
}

func (repo trainingRepository) ReconcileProgress(ctx context.Context, exec ...core.DBExecutor) (int64, error) {
	q := `INSERT OR IGNORE INTO user_training_progress (user_id, module_id, completed)
		SELECT u.id, m.id, 0 FROM users u CROSS JOIN training_modules m WHERE u.is_admin = 0`
	res, err := core.GetExec(repo.db, exec).ExecContext(ctx, q)
	if err != nil {
		return 0, errors.Wrap(err, "inserting missing progress")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "reading inserted progress count")
	}
	return n, nil
}

func (repo trainingRepository) QueryProgress(
	ctx context.Context,
	filter training.ProgressFilter,
	ordering []core.DBOrdering,
	exec ...core.DBExecutor,
) ([]training.ModuleProgress, error) {
	q := "SELECT " + moduleColumns + `, COALESCE(p.completed, 0) AS completed, p.completed_at
		FROM training_modules m
		LEFT JOIN user_training_progress p ON p.module_id = m.id AND p.user_id = ?`
	args := []interface{}{filter.UserID}

	if filter.Completed != nil {
		q += " WHERE COALESCE(p.completed, 0) = ?"
		args = append(args, *filter.Completed)
	}

	orderBy := make([]string, 0, len(ordering)+1)
	for _, ord := range training.CleanOrdering(ordering) {
		orderBy = append(orderBy, ord.String())
	}
	orderBy = append(orderBy, "m.id ASC")
	q += " ORDER BY " + strings.Join(orderBy, ", ")

	progress := make([]training.ModuleProgress, 0)
	if err := sqlx.SelectContext(ctx, core.GetExec(repo.db, exec), &progress, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting progress")
	}
	return progress, nil
}

func (repo trainingRepository) GetProgress(ctx context.Context, userID, moduleID int, exec ...core.DBExecutor) (training.Progress, error) {
	var prog training.Progress
	q := `SELECT user_id, module_id, completed, completed_at FROM user_training_progress
		WHERE user_id = ? AND module_id = ?`
	if err := sqlx.GetContext(ctx, core.GetExec(repo.db, exec), &prog, q, userID, moduleID); err != nil {
		return training.Progress{}, repo.trapNoRowsErr(err, "selecting progress")
	}
	return prog, nil
}

func (repo trainingRepository) CompleteProgress(
	ctx context.Context,
	userID, moduleID int,
	at time.Time,
	exec ...core.DBExecutor,
) (training.Progress, error) {
	q := `INSERT INTO user_training_progress (user_id, module_id, completed, completed_at) VALUES (?, ?, 1, ?)
		ON CONFLICT (user_id, module_id) DO UPDATE SET completed = 1, completed_at = excluded.completed_at`
	if _, err := core.GetExec(repo.db, exec).ExecContext(ctx, q, userID, moduleID, at.UTC()); err != nil {
		return training.Progress{}, errors.Wrap(err, "upserting progress")
	}
	return repo.GetProgress(ctx, userID, moduleID, exec...)
}
