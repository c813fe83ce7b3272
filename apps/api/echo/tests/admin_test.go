package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mafunzo/testutil"
)

func moduleForm(title, duration string) url.Values {
	return url.Values{
		"title":    {title},
		"duration": {duration},
		"question": {"What is 2 + 2?"},
		"answer":   {"4"},
	}
}

func TestAdmin_learnerIsTurnedAway(t *testing.T) {
	app := newTestApp(t)
	c := app.loggedIn("user1", "password123")

	runHTTPTests(t, c, []httpTest{
		{
			name:         "add module",
			method:       http.MethodPost,
			path:         "/admin/add_module",
			form:         moduleForm("Sneaky", "5 minutes"),
			wantCode:     http.StatusFound,
			wantLocation: "/",
		},
		{name: "user report", path: "/admin/user_report/2", wantCode: http.StatusFound, wantLocation: "/"},
		{name: "reset", path: "/admin/reset_db", wantCode: http.StatusFound, wantLocation: "/"},
		{name: "still logged in", path: "/", wantCode: http.StatusOK},
	})

	assert.Equal(t, 1, app.moduleCount())
	assert.Equal(t, 1, app.sessions.Len())
}

func TestAdmin_addModule(t *testing.T) {
	app := newTestApp(t)
	c := app.loggedIn("admin", "secret")

	runHTTPTests(t, c, []httpTest{
		{
			name:     "invalid duration",
			method:   http.MethodPost,
			path:     "/admin/add_module",
			form:     moduleForm("Arithmetic", "5 fortnights"),
			wantCode: http.StatusBadRequest,
			wantBody: []string{"invalid duration format", `value="Arithmetic"`},
		},
		{
			name:     "duplicate title",
			method:   http.MethodPost,
			path:     "/admin/add_module",
			form:     moduleForm("Database 101", "5 minutes"),
			wantCode: http.StatusBadRequest,
			wantBody: []string{"already exists"},
		},
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/admin/add_module",
			form:     url.Values{"title": {"Arithmetic"}},
			wantCode: http.StatusBadRequest,
		},
		{
			name:         "success",
			method:       http.MethodPost,
			path:         "/admin/add_module",
			form:         moduleForm("  Arithmetic ", "5 minutes"),
			wantCode:     http.StatusSeeOther,
			wantLocation: "/",
		},
		{name: "flash", path: "/", wantCode: http.StatusOK, wantBody: []string{"Module Arithmetic added."}},
	})

	mods, err := app.trainSvc.ListModules(context.Background())
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, "Arithmetic", mods[1].Title)

	learners, err := app.usrSvc.QueryLearners(context.Background())
	require.NoError(t, err)
	for _, l := range learners {
		assert.Equal(t, 1, testutil.CountProgress(t, app.db, l.ID, mods[1].ID), l.Username)
	}
	admin, err := app.usrSvc.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, 0, testutil.CountProgress(t, app.db, admin.ID, mods[1].ID))
}

func TestAdmin_userReport(t *testing.T) {
	app := newTestApp(t)
	learner := app.loggedIn("user1", "password123")
	rec := learner.post("/submit_training/1", url.Values{"answer": {"Structured Query Language"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	c := app.loggedIn("admin", "secret")
	runHTTPTests(t, c, []httpTest{
		{
			name:     "default view",
			path:     "/admin/user_report/2",
			wantCode: http.StatusOK,
			wantBody: []string{"Training Report for user1", `id="incomplete-table"`, "Nothing left to complete."},
		},
		{
			name:     "completed view",
			path:     "/admin/user_report/2?view=completed",
			wantCode: http.StatusOK,
			wantBody: []string{`id="completed-table"`, "Database 101"},
		},
		{
			name:     "all view keeps ordering",
			path:     "/admin/user_report/3?view=all&ordering=-title",
			wantCode: http.StatusOK,
			wantBody: []string{"Training Report for user2", `id="incomplete-table"`, `id="completed-table"`, "ordering=-title", "Nothing completed yet."},
		},
		{name: "unknown user", path: "/admin/user_report/999", wantCode: http.StatusNotFound},
		{name: "malformed id", path: "/admin/user_report/abc", wantCode: http.StatusNotFound},
	})
}

func TestAdmin_resetDB(t *testing.T) {
	app := newTestApp(t)
	learner := app.loggedIn("user1", "password123")
	rec := learner.post("/submit_training/1", url.Values{"answer": {"Structured Query Language"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	c := app.loggedIn("admin", "secret")
	rec = c.post("/admin/add_module", moduleForm("Arithmetic", "5 minutes"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, 2, app.sessions.Len())

	runHTTPTests(t, c, []httpTest{
		{name: "reset", path: "/admin/reset_db", wantCode: http.StatusFound, wantLocation: "/login"},
		{name: "flash", path: "/login", wantCode: http.StatusOK, wantBody: []string{"Database has been reset."}},
		{name: "admin logged out", path: "/", wantCode: http.StatusFound, wantLocation: "/login"},
	})

	assert.Equal(t, 0, app.sessions.Len())
	assert.Equal(t, 1, app.moduleCount())
	assert.Equal(t, http.StatusFound, learner.get("/").Code)

	learner = app.loggedIn("user1", "password123")
	rec = learner.get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No training completed yet.")
	app.loggedIn("admin", "secret")
}
