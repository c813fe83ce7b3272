package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core"
	"github.com/trezcool/mafunzo/core/user"
)

const userColumns = "id, username, password_hash, is_admin, created_at"

var userOrderFields = map[string]bool{"id": true, "username": true, "created_at": true}

type userRepository struct {
	db core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DBExecutor) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps sql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username string, exec ...core.DBExecutor) error {
	var exists bool
	q := "SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)"
	if err := sqlx.GetContext(ctx, core.GetExec(repo.db, exec), &exists, q, username); err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if exists {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	q := "INSERT INTO users (username, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?)"
	res, err := core.GetExec(repo.db, exec).ExecContext(ctx, q, usr.Username, usr.PasswordHash, usr.IsAdmin, usr.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return user.User{}, errors.Wrap(err, "reading user id")
	}
	usr.ID = int(id)
	usr.CreatedAt = usr.CreatedAt.UTC()
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter != nil && filter.IsAdmin != nil {
		conds = append(conds, "is_admin = ?")
		args = append(args, *filter.IsAdmin)
	}

	q := "SELECT " + userColumns + " FROM users"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += orderByClause(ordering, userOrderFields, "id ASC")

	users := make([]user.User, 0)
	if err := sqlx.SelectContext(ctx, core.GetExec(repo.db, exec), &users, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	return users, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	var (
		cond string
		arg  interface{}
	)
	switch {
	case filter.ID != 0:
		cond, arg = "id = ?", filter.ID
	case filter.Username != "":
		cond, arg = "username = ?", filter.Username
	default:
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	q := "SELECT " + userColumns + " FROM users WHERE " + cond
	if err := sqlx.GetContext(ctx, core.GetExec(repo.db, exec), &usr, q, arg); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "selecting user")
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	q := "UPDATE users SET username = ?, password_hash = ?, is_admin = ? WHERE id = ?"
	res, err := core.GetExec(repo.db, exec).ExecContext(ctx, q, usr.Username, usr.PasswordHash, usr.IsAdmin, usr.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
