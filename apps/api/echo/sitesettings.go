package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kistconnect/portal/core/sitesettings"
	"github.com/kistconnect/portal/core/user"
)

type siteSettingsApi struct {
	svc    *sitesettings.Service
	usrSvc *user.Service
}

func registerSiteSettingsAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *sitesettings.Service, usrSvc *user.Service) {
	api := siteSettingsApi{svc: svc, usrSvc: usrSvc}

	sg := g.Group("/site-settings")
	sg.GET("", api.retrieve)
	sg.PUT("", api.update, chain(authed, teacherMiddleware(usrSvc))...)
}

// Handlers

// retrieve answers null until the settings are first edited.
func (api *siteSettingsApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.Get(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting site settings")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *siteSettingsApi) update(ctx echo.Context) error {
	var data sitesettings.UpdateSettings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettings")
	}

	editor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	s, err := api.svc.Update(ctx.Request().Context(), data, editor)
	if err != nil {
		return errors.Wrap(err, "updating site settings")
	}
	return ctx.JSON(http.StatusOK, s)
}
