package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core"
	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/rostersync"
)

type rosterApi struct {
	svc *rostersync.Service
}

func registerRosterAPI(g *echo.Group, deps ServerDeps) {
	api := rosterApi{svc: deps.RosterSvc}
	admin := adminMiddleware(api.svc)

	ig := g.Group("/identities", admin)
	ig.POST("", api.register)
	ig.PUT("/:id/role", api.changeRole)
	ig.PUT("/:id/email", api.changeEmail)
	ig.DELETE("/:id", api.destroyIdentity)

	rg := g.Group("/roster", admin)
	rg.GET("/audit", api.audit)
	rg.PUT("/:id/status", api.setStatus)
	rg.DELETE("/:id", api.destroyEntry)

	fg := g.Group("/favorites", studentMiddleware(api.svc))
	fg.POST("", api.addFavorite)
	fg.GET("", api.queryFavorites)
}

// Handlers

func (api *rosterApi) register(ctx echo.Context) error {
	var data identity.NewIdentity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewIdentity")
	}

	ident, reg, err := api.svc.RegisterIdentity(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering identity")
	}
	return ctx.JSON(http.StatusCreated, RegisterResponse{Identity: ident, Registration: reg})
}

func (api *rosterApi) changeRole(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var data ChangeRoleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangeRoleRequest")
	}

	res, err := api.svc.ChangeRole(ctx.Request().Context(), id, data.Role)
	if err != nil {
		return errors.Wrap(err, "changing role")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *rosterApi) changeEmail(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var data ChangeEmailRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangeEmailRequest")
	}

	res, err := api.svc.ChangeEmail(ctx.Request().Context(), id, data.Email)
	if err != nil {
		return errors.Wrap(err, "changing email")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *rosterApi) destroyIdentity(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	// Say No to Suicide! the acting identity cannot delete itself
	ctxIdent, err := getContextIdentity(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	if id == ctxIdent.ID {
		return errHttpForbidden
	}

	res, err := api.svc.DeleteIdentity(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting identity")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *rosterApi) audit(ctx echo.Context) error {
	violations, err := api.svc.Audit(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "auditing roster")
	}
	return ctx.JSON(http.StatusOK, violations)
}

func (api *rosterApi) setStatus(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var data RosterStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RosterStatusRequest")
	}
	if data.Active == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "active", Error: "active is a required field"})
	}

	res, err := api.svc.SetRosterStatus(ctx.Request().Context(), id, *data.Active)
	if err != nil {
		return errors.Wrap(err, "setting roster status")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *rosterApi) destroyEntry(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.DeleteRosterEntry(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting roster entry")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *rosterApi) addFavorite(ctx echo.Context) error {
	var data FavoriteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FavoriteRequest")
	}
	if data.ProfessorID <= 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "professor_id", Error: "professor_id is a required field"})
	}

	ctxIdent, err := getContextIdentity(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	link, err := api.svc.AddFavorite(ctx.Request().Context(), ctxIdent.ID, data.ProfessorID)
	if err != nil {
		return errors.Wrap(err, "adding favorite")
	}
	return ctx.JSON(http.StatusCreated, link)
}

func (api *rosterApi) queryFavorites(ctx echo.Context) error {
	ctxIdent, err := getContextIdentity(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	links, err := api.svc.QueryFavorites(ctx.Request().Context(), ctxIdent.ID)
	if err != nil {
		return errors.Wrap(err, "querying favorites")
	}
	return ctx.JSON(http.StatusOK, links)
}
