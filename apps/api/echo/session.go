package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/storage/session"
)

var contextSessionKey = "session"

// sessionMiddleware loads the session named by the cookie token (or starts a new one)
// and saves it right before the response is written, if it changed.
func sessionMiddleware(mgr *session.Manager, cookieName string, secure bool, logger core.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			var token string
			if cookie, err := ctx.Cookie(cookieName); err == nil {
				token = cookie.Value
			}
			sess, err := mgr.Load(ctx.Request().Context(), token)
			if err != nil {
				return errors.Wrap(err, "loading session")
			}
			ctx.Set(contextSessionKey, sess)

			ctx.Response().Before(func() {
				sess := getSession(ctx)
				if !sess.Dirty() {
					return
				}
				isNew := sess.IsNew()
				if err := mgr.Save(ctx.Request().Context(), sess); err != nil {
					logger.Error("saving session", errors.Wrap(err, "saving session"), sess.Principal)
					return
				}
				if !isNew {
					return
				}
				token, err := mgr.Token(sess)
				if err != nil {
					logger.Error("signing session token", err, sess.Principal)
					return
				}
				ctx.SetCookie(&http.Cookie{
					Name:     cookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			})
			return next(ctx)
		}
	}
}

// getSession returns the request session; sessionMiddleware guarantees there is one.
func getSession(ctx echo.Context) *session.Session {
	if sess, ok := ctx.Get(contextSessionKey).(*session.Session); ok {
		return sess
	}
	sess := session.New()
	ctx.Set(contextSessionKey, sess)
	return sess
}

// resetSession replaces the request session with a brand new one.
func resetSession(ctx echo.Context, mgr *session.Manager) error {
	old := getSession(ctx)
	if !old.IsNew() {
		if err := mgr.Destroy(ctx.Request().Context(), old); err != nil {
			return errors.Wrap(err, "destroying session")
		}
	}
	ctx.Set(contextSessionKey, session.New())
	return nil
}

func redirect(ctx echo.Context, path string) error {
	return ctx.Redirect(http.StatusFound, path)
}

func flashRedirect(ctx echo.Context, category, msg, path string) error {
	getSession(ctx).AddFlash(category, msg)
	return redirect(ctx, path)
}
