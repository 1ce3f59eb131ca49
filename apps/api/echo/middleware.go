package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core/permission"
)

// adminPanelMiddleware keeps teachers and students out of the Admin panel.
func adminPanelMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := contextUser(ctx)
		if err != nil {
			return err
		}
		if usr.IsTeacher() || usr.IsStudent() {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

// superAdminMiddleware only lets super admins through.
func superAdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := contextUser(ctx)
		if err != nil {
			return err
		}
		if !usr.IsAdmin() {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

// roleMiddleware only lets users with the given role through.
func roleMiddleware(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := contextUser(ctx)
			if err != nil {
				return err
			}
			if usr.Role != role {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// permMiddleware requires the context user to be granted action.
func permMiddleware(authz permission.Authorizer, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := contextUser(ctx)
			if err != nil {
				return err
			}
			if err = authz.Authorize(ctx.Request().Context(), usr, action); err != nil {
				if errors.Cause(err) == permission.ErrForbidden {
					return errHttpForbidden
				}
				return errors.Wrapf(err, "authorizing %s", action)
			}
			return next(ctx)
		}
	}
}
