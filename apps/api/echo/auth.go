package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core/user"
	"github.com/trezcool/mafunzo/services/session"
)

var contextUserKey = "user"

// authMiddleware loads the session user into the context.
// Requests without a valid session are redirected to the login page.
func authMiddleware(sessions session.Store, cookies *cookieStore, svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := sessionUser(ctx, sessions, cookies, svc)
			if err != nil {
				return err
			}
			if usr == nil {
				return ctx.Redirect(http.StatusFound, "/login")
			}
			ctx.Set(contextUserKey, *usr)
			return next(ctx)
		}
	}
}

// sessionUser resolves the user of the request's session. It returns nil when there is none.
func sessionUser(ctx echo.Context, sessions session.Store, cookies *cookieStore, svc *user.Service) (*user.User, error) {
	token := cookies.token(ctx)
	if token == "" {
		return nil, nil
	}

	rctx := ctx.Request().Context()
	sess, err := sessions.Get(rctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "getting session")
	}

	usr, err := svc.GetByID(rctx, sess.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) { // deleted since login
			_ = sessions.Delete(rctx, token)
			return nil, nil
		}
		return nil, errors.Wrap(err, "finding session user")
	}
	return &usr, nil
}

func getContextUser(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	return usr, ok
}

// login starts a new session for usr.
func login(ctx echo.Context, sessions session.Store, cookies *cookieStore, usr user.User) error {
	rctx := ctx.Request().Context()
	if old := cookies.token(ctx); old != "" {
		_ = sessions.Delete(rctx, old)
	}

	sess, err := sessions.Create(rctx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return cookies.setToken(ctx, sess.Token)
}

// logout ends the request's session, if any.
func logout(ctx echo.Context, sessions session.Store, cookies *cookieStore) error {
	if token := cookies.token(ctx); token != "" {
		if err := sessions.Delete(ctx.Request().Context(), token); err != nil {
			return errors.Wrap(err, "deleting session")
		}
	}
	return cookies.clearToken(ctx)
}
