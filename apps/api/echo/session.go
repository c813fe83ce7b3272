package echoapi

import (
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core"
)

const sessionTokenKey = "token"

// cookieStore keeps the session token and flash messages in a signed cookie.
type cookieStore struct {
	name  string
	store *sessions.CookieStore
}

func newCookieStore(conf *core.Config) *cookieStore {
	key := []byte(conf.SecretKey)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   conf.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(conf.Session.MaxAge.Seconds()))

	return &cookieStore{name: conf.Session.CookieName, store: store}
}

// get never fails: an undecodable cookie yields a new, empty session.
func (cs *cookieStore) get(ctx echo.Context) *sessions.Session {
	sess, _ := cs.store.Get(ctx.Request(), cs.name)
	return sess
}

func (cs *cookieStore) save(ctx echo.Context, sess *sessions.Session) error {
	if err := sess.Save(ctx.Request(), ctx.Response()); err != nil {
		return errors.Wrap(err, "saving session cookie")
	}
	return nil
}

func (cs *cookieStore) token(ctx echo.Context) string {
	tok, _ := cs.get(ctx).Values[sessionTokenKey].(string)
	return tok
}

func (cs *cookieStore) setToken(ctx echo.Context, token string) error {
	sess := cs.get(ctx)
	sess.Values[sessionTokenKey] = token
	return cs.save(ctx, sess)
}

// clearToken forgets the session token but keeps pending flashes, adding the given ones.
func (cs *cookieStore) clearToken(ctx echo.Context, flashes ...string) error {
	sess := cs.get(ctx)
	delete(sess.Values, sessionTokenKey)
	for _, msg := range flashes {
		sess.AddFlash(msg)
	}
	return cs.save(ctx, sess)
}

func (cs *cookieStore) addFlash(ctx echo.Context, msg string) error {
	sess := cs.get(ctx)
	sess.AddFlash(msg)
	return cs.save(ctx, sess)
}

// flashes pops the pending flash messages.
func (cs *cookieStore) flashes(ctx echo.Context) []string {
	sess := cs.get(ctx)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := cs.save(ctx, sess); err != nil {
		ctx.Logger().Error(err)
	}

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
