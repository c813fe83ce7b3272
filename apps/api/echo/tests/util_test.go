package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/mafunzo/apps/api/echo"
	"github.com/trezcool/mafunzo/core"
	"github.com/trezcool/mafunzo/core/seed"
	"github.com/trezcool/mafunzo/core/training"
	"github.com/trezcool/mafunzo/core/user"
	"github.com/trezcool/mafunzo/services/session"
	sqlxrepos "github.com/trezcool/mafunzo/storage/database/sqlx"
	"github.com/trezcool/mafunzo/testutil"
)

type sessionStore interface {
	session.Store
	Len() int
}

type testApp struct {
	t        *testing.T
	server   *echoapi.Server
	db       *sqlx.DB
	sessions sessionStore
	usrSvc   *user.Service
	trainSvc *training.Service
}

// newTestApp serves a freshly seeded database: admin/secret, user1/password123, user2/password456
// and the "Database 101" module (answer "Structured Query Language").
func newTestApp(t *testing.T) *testApp {
	conf := testutil.NewConfig(t)
	db := testutil.PrepareDB(t)

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))
	trainSvc := training.NewService(db, sqlxrepos.NewTrainingRepository(db), testutil.NopLogger{})
	seedSvc := seed.NewService(db, seed.DataFromConfig(conf), usrSvc, trainSvc, sqlxrepos.NewResetRepository(db), testutil.NopLogger{})
	require.NoError(t, seedSvc.Seed(context.Background()))

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	training.InitValidators(validate, translator)

	sessions := session.NewMemoryStore(time.Hour)
	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      testutil.NopLogger{},
		UserSvc:     usrSvc,
		TrainingSvc: trainSvc,
		SeedSvc:     seedSvc,
		Sessions:    sessions,
		Validate:    validate,
		Translator:  translator,
	})

	return &testApp{t: t, server: server, db: db, sessions: sessions, usrSvc: usrSvc, trainSvc: trainSvc}
}

func (app *testApp) moduleCount() int {
	mods, err := app.trainSvc.ListModules(context.Background())
	require.NoError(app.t, err)
	return len(mods)
}

// client is a browser: it keeps the cookies set by the server across requests.
type client struct {
	app     *testApp
	cookies map[string]*http.Cookie
}

func (app *testApp) newClient() *client {
	return &client{app: app, cookies: make(map[string]*http.Cookie)}
}

// loggedIn returns a client with an open session for uname.
func (app *testApp) loggedIn(uname, pwd string) *client {
	c := app.newClient()
	rec := c.post("/login", url.Values{"username": {uname}, "password": {pwd}})
	require.Equal(app.t, http.StatusSeeOther, rec.Code, "login(%s) failed: %s", uname, rec.Body.String())
	return c
}

func (c *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.app.server.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
		} else {
			c.cookies[ck.Name] = ck
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, path, nil)
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return c.do(http.MethodPost, path, form)
}

type httpTest struct {
	name         string
	method       string
	path         string
	form         url.Values
	wantCode     int
	wantLocation string
	wantBody     []string
}

func (tt httpTest) check(t *testing.T, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	if tt.wantLocation != "" {
		assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
	}
	for _, s := range tt.wantBody {
		assert.Contains(t, rec.Body.String(), s)
	}
}

func runHTTPTests(t *testing.T, c *client, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			form := tt.form
			if method == http.MethodPost && form == nil {
				form = url.Values{}
			}
			tt.check(t, c.do(method, tt.path, form))
		})
	}
}
