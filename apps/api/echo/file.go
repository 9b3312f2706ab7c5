package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/file"
	"github.com/kistconnect/portal/core/user"
)

type fileApi struct {
	svc    *file.Service
	logger core.Logger
}

func registerFileAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *file.Service, usrSvc *user.Service, logger core.Logger) {
	api := fileApi{svc: svc, logger: logger}

	fg := g.Group("/files")
	fg.POST("/upload-url", api.generateUploadURL, chain(authed, teacherMiddleware(usrSvc))...)
	fg.GET("/:storageId/url", api.retrieveURL)

	g.GET("/convex-file/:storageId", api.redirect)
}

// Handlers

func (api *fileApi) generateUploadURL(ctx echo.Context) error {
	var data file.NewUpload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUpload")
	}

	u, err := api.svc.GenerateUploadURL(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "generating upload url")
	}
	return ctx.JSON(http.StatusOK, u)
}

func (api *fileApi) retrieveURL(ctx echo.Context) error {
	u, err := api.svc.GetFileURL(ctx.Request().Context(), ctx.Param("storageId"))
	if err != nil {
		return errors.Wrap(err, "getting file url")
	}
	return ctx.JSON(http.StatusOK, file.FileURL{URL: u})
}

// redirect sends the browser to the stored file.
// Its error bodies are fixed, whatever the failure.
func (api *fileApi) redirect(ctx echo.Context) error {
	u, err := api.svc.GetFileURL(ctx.Request().Context(), ctx.Param("storageId"))
	if err != nil {
		if errors.Cause(err) == file.ErrNotFound {
			return ctx.JSON(http.StatusNotFound, errFileNotFound)
		}
		api.logger.Error("fetching file", err, map[string]interface{}{"storageId": ctx.Param("storageId")})
		return ctx.JSON(http.StatusInternalServerError, errFileFetchFailed)
	}
	return ctx.Redirect(http.StatusTemporaryRedirect, u)
}
