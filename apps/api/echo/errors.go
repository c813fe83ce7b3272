package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core"
	"github.com/trezcool/mafunzo/core/training"
	"github.com/trezcool/mafunzo/core/user"
)

var (
	errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

	msgInvalidCredentials = "Invalid username or password!"
	msgIncorrectAnswer    = "Incorrect answer. Please try again."
)

// formErrors extracts per-field messages from validation errors.
// ok is false when err is not a validation error.
func formErrors(err error, translator ut.Translator) (fields map[string]string, ok bool) {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fields = make(map[string]string, len(vErrs))
		for _, vErr := range vErrs {
			fields[vErr.Field()] = vErr.Translate(translator)
		}
		return fields, true
	}

	var cErr *core.ValidationError
	if errors.As(err, &cErr) {
		fields = make(map[string]string, len(cErr.Fields)+1)
		for _, fErr := range cErr.Fields {
			fields[fErr.Field] = fErr.Error
		}
		if len(cErr.Fields) == 0 {
			fields[""] = cErr.Error()
		}
		return fields, true
	}
	return nil, false
}

// summary joins field messages into one line, in a stable order.
func summary(fields map[string]string, order ...string) string {
	msgs := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(order))
	for _, f := range order {
		if msg, ok := fields[f]; ok {
			msgs = append(msgs, msg)
			seen[f] = true
		}
	}
	for f, msg := range fields {
		if !seen[f] {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, "; ")
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders the error page.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code    int
			message string
			herr    *echo.HTTPError
		)

		switch {
		case errors.As(err, &herr):
			if herr.Internal != nil {
				if ierr, ok := herr.Internal.(*echo.HTTPError); ok {
					herr = ierr
				}
			}
			code = herr.Code
			message = fmt.Sprint(herr.Message)
		case errors.Is(err, user.ErrNotFound), errors.Is(err, training.ErrNotFound):
			code = http.StatusNotFound
			message = errors.Cause(err).Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(http.StatusInternalServerError)

			args := []interface{}{errors.Wrap(err, message)}
			if usr, ok := getContextUser(ctx); ok {
				args = append(args, usr)
			}
			logger.Error(message, args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}

			if ctx.Echo().Debug {
				message = err.Error()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				p := page{Title: http.StatusText(code), Error: message, Data: code}
				if usr, ok := getContextUser(ctx); ok {
					p.User = &usr
				}
				err = ctx.Render(code, "error.html", p)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
