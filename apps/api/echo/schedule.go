package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core"
	"github.com/skapefps/Unimap-sub001/core/admission"
	"github.com/skapefps/Unimap-sub001/core/rostersync"
	"github.com/skapefps/Unimap-sub001/core/schedule"
)

type scheduleApi struct {
	svc       *admission.Service
	rosterSvc *rostersync.Service
}

func registerScheduleAPI(g *echo.Group, deps ServerDeps) {
	api := scheduleApi{svc: deps.AdmissionSvc, rosterSvc: deps.RosterSvc}
	admin := adminMiddleware(api.rosterSvc)

	g.GET("/rooms", api.queryRooms)
	g.POST("/rooms", api.createRoom, admin)

	sg := g.Group("/sessions")
	sg.GET("/visible", api.visible)
	sg.GET("", api.querySessions, admin)
	sg.POST("", api.admit, admin)
	sg.PUT("/:id/cancel", api.cancel, admin)
	sg.PUT("/:id/reactivate", api.reactivate, admin)
	sg.DELETE("/:id", api.destroy, admin)
}

// Handlers

func (api *scheduleApi) queryRooms(ctx echo.Context) error {
	rooms, err := api.svc.QueryRooms(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying rooms")
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *scheduleApi) createRoom(ctx echo.Context) error {
	var data schedule.NewRoom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRoom")
	}

	room, err := api.svc.CreateRoom(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating room")
	}
	return ctx.JSON(http.StatusCreated, room)
}

// admit answers 201 when a session was created, 409 when every weekday was already taken
// and 200 otherwise; the body always carries the per-weekday report.
func (api *scheduleApi) admit(ctx echo.Context) error {
	var data AdmitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdmitRequest")
	}

	res, err := api.svc.AdmitSessions(ctx.Request().Context(), data.NewSession, schedule.CodesToStrings(data.Weekdays))
	if err != nil {
		return errors.Wrap(err, "admitting sessions")
	}

	code := http.StatusOK
	switch {
	case res.Success:
		code = http.StatusCreated
	case res.Message == admission.MsgAllDuplicates:
		code = http.StatusConflict
	}
	return ctx.JSON(code, res)
}

func (api *scheduleApi) querySessions(ctx echo.Context) error {
	var filter schedule.QueryFilter
	if pid, err := strconv.Atoi(ctx.QueryParam("professor_id")); err == nil {
		filter.ProfessorID = pid
	}
	filter.ActiveOnly, _ = strconv.ParseBool(ctx.QueryParam("active"))

	sessions, err := api.svc.QuerySessions(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *scheduleApi) cancel(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	sess, err := api.svc.Cancel(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "canceling session")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *scheduleApi) reactivate(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	sess, err := api.svc.Reactivate(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "reactivating session")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// visible lists the sessions a student sees. Students get their own profile;
// other identities pass it as "course" and "period" query params.
func (api *scheduleApi) visible(ctx echo.Context) error {
	ctxIdent, err := getContextIdentity(ctx, api.rosterSvc)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	var student schedule.Student
	if ctxIdent.IsStudent() {
		student = schedule.Student{Course: ctxIdent.Course, Period: ctxIdent.CohortPeriod}
	} else if q, ok := studentQuery(ctx); ok {
		student = q
	} else {
		return core.NewValidationError(nil, core.FieldError{Field: "course", Error: "course and period are required"})
	}

	sessions, err := api.svc.ListVisibleSessions(ctx.Request().Context(), student)
	if err != nil {
		return errors.Wrap(err, "listing visible sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}
