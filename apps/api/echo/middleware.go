package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/rostersync"
)

// roleMiddleware lets through identities holding one of roles.
func roleMiddleware(svc *rostersync.Service, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ident, err := getContextIdentity(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context identity")
			}
			for _, role := range roles {
				if ident.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware(svc *rostersync.Service) echo.MiddlewareFunc {
	return roleMiddleware(svc, identity.RoleAdmin)
}

func studentMiddleware(svc *rostersync.Service) echo.MiddlewareFunc {
	return roleMiddleware(svc, identity.RoleStudent)
}
