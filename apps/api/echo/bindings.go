package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/skapefps/Unimap-sub001/core/schedule"
)

type (
	ChangeRoleRequest struct {
		Role string `json:"role"`
	}

	ChangeEmailRequest struct {
		Email string `json:"email"`
	}

	RosterStatusRequest struct {
		Active *bool `json:"active"`
	}

	AdmitRequest struct {
		schedule.NewSession
		Weekdays []schedule.WeekdayCode `json:"weekdays"`
	}

	FavoriteRequest struct {
		ProfessorID int `json:"professor_id"`
	}

	RegisterResponse struct {
		Identity     interface{} `json:"identity"`
		Registration interface{} `json:"registration"`
	}
)

// paramID reads the ":id" path parameter. A malformed ID cannot match anything.
func paramID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// studentQuery binds "course" and "period" from the query string.
func studentQuery(ctx echo.Context) (schedule.Student, bool) {
	course, period := ctx.QueryParam("course"), ctx.QueryParam("period")
	if course == "" && period == "" {
		return schedule.Student{}, false
	}
	p, err := strconv.Atoi(period)
	if err != nil {
		p = -1 // rejected by validation
	}
	return schedule.Student{Course: course, Period: p}, true
}
