package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core/user"
)

type userApi struct {
	deps    ServerDeps
	cookies *cookieStore
}

func registerUserAPI(app *echo.Echo, _ echo.MiddlewareFunc, deps ServerDeps, cookies *cookieStore) {
	api := userApi{deps: deps, cookies: cookies}

	app.GET("/login", api.loginForm)
	app.POST("/login", api.login)
	app.GET("/register", api.registerForm)
	app.POST("/register", api.register)
	app.GET("/logout", api.logout)
}

// Handlers

func (api *userApi) loginForm(ctx echo.Context) error {
	return api.renderLogin(ctx, http.StatusOK, "", nil)
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		if fields, ok := formErrors(err, api.deps.Translator); ok {
			return api.renderLogin(ctx, http.StatusBadRequest, data.Username, fields)
		}
		return err
	}

	usr, err := api.deps.UserSvc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return api.renderLogin(ctx, http.StatusBadRequest, data.Username, map[string]string{"": msgInvalidCredentials})
		}
		return errors.Wrap(err, "authenticating")
	}

	if err = login(ctx, api.deps.Sessions, api.cookies, usr); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (api *userApi) renderLogin(ctx echo.Context, code int, username string, errs map[string]string) error {
	return ctx.Render(code, "login.html", page{
		Title:   "Login",
		Flashes: api.cookies.flashes(ctx),
		Error:   errs[""],
		Errors:  errs,
		Data:    username,
	})
}

func (api *userApi) registerForm(ctx echo.Context) error {
	return api.renderRegister(ctx, http.StatusOK, "", nil)
}

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	rctx := ctx.Request().Context()
	if err := data.Validate(rctx, api.deps.Validate, api.deps.UserSvc); err != nil {
		if fields, ok := formErrors(err, api.deps.Translator); ok {
			return api.renderRegister(ctx, http.StatusBadRequest, data.Username, fields)
		}
		return err
	}

	usr, err := api.deps.UserSvc.Register(rctx, data)
	if err != nil {
		if fields, ok := formErrors(err, api.deps.Translator); ok { // lost a username race
			return api.renderRegister(ctx, http.StatusBadRequest, data.Username, fields)
		}
		return errors.Wrap(err, "registering user")
	}

	if err = api.cookies.addFlash(ctx, "Account "+usr.Username+" created, please log in."); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/login")
}

func (api *userApi) renderRegister(ctx echo.Context, code int, username string, errs map[string]string) error {
	p := page{Title: "Register", Errors: errs, Data: username}
	if len(errs) > 0 {
		p.Error = summary(errs, "", "username", "password", "password_confirm")
	}
	return ctx.Render(code, "register.html", p)
}

func (api *userApi) logout(ctx echo.Context) error {
	if err := logout(ctx, api.deps.Sessions, api.cookies); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/login")
}
