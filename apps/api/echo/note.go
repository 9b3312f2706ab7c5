package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/engagement"
	"github.com/kistconnect/portal/core/note"
	"github.com/kistconnect/portal/core/user"
)

type noteApi struct {
	svc           *note.Service
	usrSvc        *user.Service
	engagementSvc *engagement.Service
}

func registerNoteAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	svc *note.Service,
	usrSvc *user.Service,
	engagementSvc *engagement.Service,
) {
	api := noteApi{svc: svc, usrSvc: usrSvc, engagementSvc: engagementSvc}
	teacher := chain(authed, teacherMiddleware(usrSvc))
	student := chain(authed, roleMiddleware(usrSvc, user.RoleStudent))

	ng := g.Group("/notes")
	ng.GET("", api.query)
	ng.POST("", api.create, teacher...)
	ng.DELETE("/:id", api.destroy, teacher...)
	ng.POST("/:id/downloads", api.trackDownload, student...)
	ng.GET("/:id/downloads", api.queryDownloads, teacher...)

	tg := g.Group("/teachers/:id")
	tg.GET("/notes", api.queryByTeacher)
	tg.GET("/download-stats", api.downloadStats, teacher...)
}

// Handlers

func (api *noteApi) query(ctx echo.Context) error {
	var params core.ListParams
	if err := ctx.Bind(&params); err != nil {
		return errors.Wrap(err, "binding to ListParams")
	}

	notes, err := api.svc.Query(ctx.Request().Context(), params)
	if err != nil {
		return errors.Wrap(err, "querying notes")
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *noteApi) queryByTeacher(ctx echo.Context) error {
	notes, err := api.svc.QueryByTeacher(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying teacher notes")
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *noteApi) create(ctx echo.Context) error {
	var data note.NewNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNote")
	}

	teacher, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	n, err := api.svc.Create(ctx.Request().Context(), data, teacher)
	if err != nil {
		return errors.Wrap(err, "creating note")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *noteApi) destroy(ctx echo.Context) error {
	teacher, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), teacher); err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *noteApi) trackDownload(ctx echo.Context) error {
	student, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	n, err := api.svc.Get(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding note")
	}
	if err = api.engagementSvc.TrackDownload(reqCtx, n.ID, student.ID); err != nil {
		return errors.Wrap(err, "tracking download")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *noteApi) queryDownloads(ctx echo.Context) error {
	downloads, err := api.engagementSvc.NoteDownloads(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying note downloads")
	}
	return ctx.JSON(http.StatusOK, downloads)
}

func (api *noteApi) downloadStats(ctx echo.Context) error {
	stats, err := api.engagementSvc.TeacherDownloadStats(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying download stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
