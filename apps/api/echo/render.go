package echoapi

import (
	"html/template"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mafunzo/core/user"
	appfs "github.com/trezcool/mafunzo/fs"
)

const (
	templatesDir = "templates"
	baseTemplate = "base.html"
	timeLayout   = "2006-01-02 15:04"
)

// page is the data every template receives.
type page struct {
	Title       string
	User        *user.User // logged in user
	IsAdminPage bool
	Flashes     []string
	Error       string
	Errors      map[string]string // per form field
	Data        interface{}
}

func (p page) FieldError(field string) string {
	return p.Errors[field]
}

var templateFuncs = template.FuncMap{
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(timeLayout)
	},
	"fmtNullTime": func(t null.Time) string {
		if !t.Valid {
			return "-"
		}
		return t.Time.UTC().Format(timeLayout)
	},
}

// templateRenderer renders the embedded pages. Each page is parsed together with the base layout.
type templateRenderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*templateRenderer)(nil)

func newTemplateRenderer() *templateRenderer {
	names, err := fs.Glob(appfs.FS, path.Join(templatesDir, "*.html"))
	if err != nil {
		panic(err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		base := path.Base(name)
		if base == baseTemplate {
			continue
		}
		pages[base] = template.Must(
			template.New(base).Funcs(templateFuncs).ParseFS(appfs.FS, path.Join(templatesDir, baseTemplate), name),
		)
	}
	return &templateRenderer{pages: pages}
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}
