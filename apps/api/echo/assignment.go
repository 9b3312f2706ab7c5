package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/assignment"
	"github.com/kistconnect/portal/core/engagement"
	"github.com/kistconnect/portal/core/user"
)

type assignmentApi struct {
	svc           *assignment.Service
	usrSvc        *user.Service
	engagementSvc *engagement.Service
}

func registerAssignmentAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	svc *assignment.Service,
	usrSvc *user.Service,
	engagementSvc *engagement.Service,
) {
	api := assignmentApi{svc: svc, usrSvc: usrSvc, engagementSvc: engagementSvc}
	teacher := chain(authed, teacherMiddleware(usrSvc))
	student := chain(authed, roleMiddleware(usrSvc, user.RoleStudent))

	ag := g.Group("/assignments")
	ag.GET("", api.query)
	ag.POST("", api.create, teacher...)
	ag.DELETE("/:id", api.destroy, teacher...)
	ag.POST("/:id/views", api.trackView, student...)
	ag.GET("/:id/views", api.queryViews, teacher...)

	tg := g.Group("/teachers/:id")
	tg.GET("/assignments", api.queryByTeacher)
	tg.GET("/assignment-stats", api.viewStats, teacher...)
}

// Handlers

func (api *assignmentApi) query(ctx echo.Context) error {
	var params core.ListParams
	if err := ctx.Bind(&params); err != nil {
		return errors.Wrap(err, "binding to ListParams")
	}

	assignments, err := api.svc.Query(ctx.Request().Context(), params)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) queryByTeacher(ctx echo.Context) error {
	assignments, err := api.svc.QueryByTeacher(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying teacher assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}

	teacher, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	a, err := api.svc.Create(ctx.Request().Context(), data, teacher)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	teacher, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), teacher); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) trackView(ctx echo.Context) error {
	student, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	a, err := api.svc.Get(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding assignment")
	}
	if err = api.engagementSvc.TrackAssignmentView(reqCtx, a.ID, student.ID); err != nil {
		return errors.Wrap(err, "tracking assignment view")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) queryViews(ctx echo.Context) error {
	views, err := api.engagementSvc.AssignmentViews(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying assignment views")
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *assignmentApi) viewStats(ctx echo.Context) error {
	stats, err := api.engagementSvc.TeacherAssignmentStats(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying assignment stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
