package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bdzone/staffboard/core/ledger"
)

type weightApi struct {
	svc      *ledger.Service
	validate *validator.Validate
}

func registerWeightAPI(g *echo.Group, deps ServerDeps) {
	api := weightApi{svc: deps.LedgerSvc, validate: deps.Validate}

	wg := g.Group("/weights")
	wg.GET("", api.query)
	wg.PUT("", api.upsert)
	wg.DELETE("/:id", api.destroy)
}

func (api *weightApi) query(ctx echo.Context) error {
	weights, err := api.svc.QueryWeights(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying action weights")
	}
	return ctx.JSON(http.StatusOK, weights)
}

func (api *weightApi) upsert(ctx echo.Context) error {
	var data ledger.UpsertWeight
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertWeight")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	w, err := api.svc.UpsertWeight(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "upserting action weight")
	}
	return ctx.JSON(http.StatusOK, w)
}

func (api *weightApi) destroy(ctx echo.Context) error {
	deleted, err := api.svc.DeleteWeight(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "deleting action weight")
	}
	if !deleted {
		return errHttpNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}
