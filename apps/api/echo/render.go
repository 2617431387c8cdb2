package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// render answers with a page. The session principal and pending flashes are always
// part of the page data; flashes are consumed.
func render(ctx echo.Context, view string, data echo.Map) error {
	sess := getSession(ctx)
	if data == nil {
		data = echo.Map{}
	}
	data["view"] = view
	data["user"] = sess.Principal
	data["flashes"] = sess.PopFlashes()

	if ctx.Echo().Renderer != nil {
		return ctx.Render(http.StatusOK, view, data)
	}
	return ctx.JSON(http.StatusOK, data)
}
