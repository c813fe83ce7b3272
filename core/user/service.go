package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrUsernameExists     = errors.New("a user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username string, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
	}

	Service struct {
		repo Repository
	}
)

var nowFunc = time.Now // mockable

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(ctx context.Context, uname string, exec ...core.DBExecutor) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, exec...); err != nil {
		if errors.Is(err, ErrUsernameExists) {
			return core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a non-admin User from a validated NewUser.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	return svc.Create(ctx, User{Username: nu.Username}, nu.Password)
}

// Create stores usr with pwd as its password. No validation is applied.
func (svc *Service) Create(ctx context.Context, usr User, pwd string, exec ...core.DBExecutor) (User, error) {
	usr.Username = core.CleanString(usr.Username, true /* lower */)
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = nowFunc().UTC()
	}
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr, exec...)
	if errors.Is(err, ErrUsernameExists) {
		return User{}, core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
	}
	return usr, err
}

// Authenticate returns the User matching the credentials.
// Unknown usernames and wrong passwords both fail with ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int, exec ...core.DBExecutor) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id}, exec...)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string, exec ...core.DBExecutor) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(uname, true /* lower */)}, exec...)
}

// QueryLearners returns all non-admin users ordered by ID.
func (svc *Service) QueryLearners(ctx context.Context) ([]User, error) {
	isAdmin := false
	return svc.repo.QueryUsers(ctx, &QueryFilter{IsAdmin: &isAdmin}, []core.DBOrdering{{Field: "id", Ascending: true}})
}

// SetPassword replaces the password of the User identified by uname.
func (svc *Service) SetPassword(ctx context.Context, uname, pwd string, exec ...core.DBExecutor) (User, error) {
	usr, err := svc.GetByUsername(ctx, uname, exec...)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.UpdateUser(ctx, usr, exec...)
}

// SetAdmin grants or revokes the admin flag.
func (svc *Service) SetAdmin(ctx context.Context, usr User, isAdmin bool, exec ...core.DBExecutor) (User, error) {
	usr.IsAdmin = isAdmin
	return svc.repo.UpdateUser(ctx, usr, exec...)
}
