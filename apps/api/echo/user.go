package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kistconnect/portal/core/user"
)

type userApi struct {
	svc *user.Service
}

func registerUserAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *user.Service) {
	api := userApi{svc: svc}

	ug := g.Group("/users", authed...)
	ug.GET("/me", api.retrieveMe)
	ug.GET("/:identityId", api.retrieve)
	ug.POST("", api.store)
	ug.POST("/sync", api.sync)
}

// Handlers

func (api *userApi) retrieveMe(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	usr, err := api.svc.GetByIdentityID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding user by identity")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := api.svc.GetByIdentityID(ctx.Request().Context(), ctx.Param("identityId"))
	if err != nil {
		return errors.Wrap(err, "finding user by identity")
	}
	return ctx.JSON(http.StatusOK, usr)
}

// store lets a signed-in user save their own record.
func (api *userApi) store(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if data.IdentityID == "" {
		data.IdentityID = claims.Subject
	}
	if data.IdentityID != claims.Subject {
		return errHttpForbidden
	}

	id, err := api.svc.Store(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "storing user")
	}
	return ctx.JSON(http.StatusOK, StoreUserResponse{UserID: id})
}

// sync stores the role picked by the signed-in user, with their profile taken from the token.
func (api *userApi) sync(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data user.ManualSync
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ManualSync")
	}
	p := claims.Profile()
	data.IdentityID = p.IdentityID
	data.Name = p.Name
	data.Email = p.Email
	data.ImageURL = p.ImageURL

	return ctx.JSON(http.StatusOK, api.svc.SyncManually(ctx.Request().Context(), data))
}

type StoreUserResponse struct {
	UserID string `json:"userId"`
}
