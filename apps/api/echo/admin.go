package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core/training"
	"github.com/trezcool/mafunzo/core/user"
)

type adminApi struct {
	deps    ServerDeps
	cookies *cookieStore
}

func registerAdminAPI(app *echo.Echo, auth echo.MiddlewareFunc, deps ServerDeps, cookies *cookieStore) {
	api := adminApi{deps: deps, cookies: cookies}

	g := app.Group("/admin", auth, adminMiddleware())
	g.POST("/add_module", api.addModule)
	g.GET("/user_report/:id", api.userReport)
	g.GET("/reset_db", api.resetDB)
}

type reportPage struct {
	Learner  user.User
	Report   training.Report
	Ordering string
}

// Handlers

func (api *adminApi) addModule(ctx echo.Context) error {
	var data training.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}

	rctx := ctx.Request().Context()
	if err := data.Validate(rctx, api.deps.Validate, api.deps.TrainingSvc); err != nil {
		if fields, ok := formErrors(err, api.deps.Translator); ok {
			return renderAdminDashboard(ctx, api.deps, api.cookies, http.StatusBadRequest, data, fields)
		}
		return err
	}

	mod, err := api.deps.TrainingSvc.AddModule(rctx, data)
	if err != nil {
		if fields, ok := formErrors(err, api.deps.Translator); ok {
			return renderAdminDashboard(ctx, api.deps, api.cookies, http.StatusBadRequest, data, fields)
		}
		return errors.Wrap(err, "adding module")
	}

	if err = api.cookies.addFlash(ctx, "Module "+mod.Title+" added."); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (api *adminApi) userReport(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	usr, _ := getContextUser(ctx)
	rctx := ctx.Request().Context()

	learner, err := api.deps.UserSvc.GetByID(rctx, id)
	if err != nil {
		return err
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)
	view := training.ParseReportView(ctx.QueryParam("view"))

	report, err := api.deps.TrainingSvc.GetUserReport(rctx, learner.ID, view, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "getting user report")
	}

	return ctx.Render(http.StatusOK, "user_report.html", page{
		Title: "Training Report for " + learner.Username,
		User:  &usr,
		Data:  reportPage{Learner: learner, Report: report, Ordering: ordering.String()},
	})
}

// resetDB wipes every table, restores the default dataset and ends every session.
func (api *adminApi) resetDB(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)
	rctx := ctx.Request().Context()

	if err := api.deps.SeedSvc.ResetAll(rctx); err != nil {
		return errors.Wrap(err, "resetting database")
	}
	if err := api.deps.Sessions.Clear(rctx); err != nil {
		return errors.Wrap(err, "clearing sessions")
	}
	api.deps.Logger.Warn("database reset", usr)

	if err := api.cookies.clearToken(ctx, "Database has been reset."); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/login")
}
