package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bdzone/staffboard/core"
	"github.com/bdzone/staffboard/core/apitoken"
)

type tokenApi struct {
	svc      *apitoken.Service
	validate *validator.Validate
}

func registerTokenAPI(g *echo.Group, deps ServerDeps) {
	api := tokenApi{svc: deps.TokenSvc, validate: deps.Validate}

	tg := g.Group("/tokens")
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.PUT("/:id/active", api.setActive)
	tg.DELETE("/:id", api.destroy)
}

func (api *tokenApi) query(ctx echo.Context) error {
	tokens, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying api tokens")
	}
	return ctx.JSON(http.StatusOK, tokens)
}

// create is the only endpoint that ever returns a full secret; it is shown
// once and masked on every subsequent read.
func (api *tokenApi) create(ctx echo.Context) error {
	var data apitoken.NewToken
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewToken")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating api token")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *tokenApi) setActive(ctx echo.Context) error {
	var data SetTokenActiveRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetTokenActiveRequest")
	}
	if data.IsActive == nil {
		return core.NewFieldError("is_active", "this field is required")
	}

	t, err := api.svc.SetActive(ctx.Request().Context(), ctx.Param("id"), *data.IsActive)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tokenApi) destroy(ctx echo.Context) error {
	deleted, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "deleting api token")
	}
	if !deleted {
		return errHttpNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

type SetTokenActiveRequest struct {
	IsActive *bool `json:"is_active"`
}
