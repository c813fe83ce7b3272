package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core/training"
	"github.com/trezcool/mafunzo/core/user"
)

type trainingApi struct {
	deps    ServerDeps
	cookies *cookieStore
}

func registerTrainingAPI(app *echo.Echo, auth echo.MiddlewareFunc, deps ServerDeps, cookies *cookieStore) {
	api := trainingApi{deps: deps, cookies: cookies}

	app.GET("/", api.dashboard, auth)
	app.GET("/training/:id", api.showModule, auth)
	app.POST("/submit_training/:id", api.submitAnswer, auth)
}

type (
	adminDashboard struct {
		Learners []user.User
		Modules  []training.Module
		Form     training.NewModule
	}

	modulePage struct {
		Module    training.Module
		Completed bool
	}
)

func paramID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// Handlers

func (api *trainingApi) dashboard(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)
	if usr.IsAdmin {
		return renderAdminDashboard(ctx, api.deps, api.cookies, http.StatusOK, training.NewModule{}, nil)
	}

	dash, err := api.deps.TrainingSvc.GetDashboard(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting dashboard")
	}
	return ctx.Render(http.StatusOK, "index.html", page{
		Title:   "Dashboard",
		User:    &usr,
		Flashes: api.cookies.flashes(ctx),
		Data:    dash,
	})
}

func (api *trainingApi) showModule(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	usr, _ := getContextUser(ctx)

	mod, err := api.deps.TrainingSvc.GetModule(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return api.renderModule(ctx, http.StatusOK, usr, mod, "")
}

func (api *trainingApi) submitAnswer(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	usr, _ := getContextUser(ctx)

	_, err = api.deps.TrainingSvc.SubmitAnswer(ctx.Request().Context(), usr.ID, id, ctx.FormValue("answer"))
	if err != nil {
		var incorrect *training.IncorrectAnswerError
		if errors.As(err, &incorrect) {
			return api.renderModule(ctx, http.StatusOK, usr, incorrect.Module, msgIncorrectAnswer)
		}
		return err
	}

	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (api *trainingApi) renderModule(ctx echo.Context, code int, usr user.User, mod training.Module, errMsg string) error {
	data := modulePage{Module: mod}
	if prog, err := api.deps.TrainingSvc.GetProgress(ctx.Request().Context(), usr.ID, mod.ID); err == nil {
		data.Completed = prog.Completed
	} else if !errors.Is(err, training.ErrNotFound) {
		return errors.Wrap(err, "getting progress")
	}

	return ctx.Render(code, "training.html", page{
		Title: mod.Title,
		User:  &usr,
		Error: errMsg,
		Data:  data,
	})
}

// renderAdminDashboard renders the admin page: learners, modules and the add-module form.
func renderAdminDashboard(
	ctx echo.Context,
	deps ServerDeps,
	cookies *cookieStore,
	code int,
	form training.NewModule,
	errs map[string]string,
) error {
	usr, _ := getContextUser(ctx)
	rctx := ctx.Request().Context()

	learners, err := deps.UserSvc.QueryLearners(rctx)
	if err != nil {
		return errors.Wrap(err, "querying learners")
	}
	mods, err := deps.TrainingSvc.ListModules(rctx)
	if err != nil {
		return errors.Wrap(err, "listing modules")
	}

	p := page{
		Title:       "Admin Dashboard",
		User:        &usr,
		IsAdminPage: true,
		Flashes:     cookies.flashes(ctx),
		Errors:      errs,
		Data:        adminDashboard{Learners: learners, Modules: mods, Form: form},
	}
	if len(errs) > 0 {
		p.Error = summary(errs, "", "title", "duration", "question", "answer")
	}
	return ctx.Render(code, "admin.html", p)
}
