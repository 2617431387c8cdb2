package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/minicrm/core/user"
	"github.com/trezcool/minicrm/storage/session"
)

// requireRole lets the request through if the session principal satisfies role.
// Anonymous visitors are sent to the login page, non-admins to the product list.
func requireRole(role user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			switch err := user.Authorize(getSession(ctx).Principal, role); err {
			case nil:
				return next(ctx)
			case user.ErrNotAuthenticated:
				return flashRedirect(ctx, session.FlashWarning, "Please login first", "/login")
			case user.ErrForbidden:
				return flashRedirect(ctx, session.FlashDanger, "Admin only.", "/products")
			default:
				return err
			}
		}
	}
}
