package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bdzone/staffboard/core"
	"github.com/bdzone/staffboard/core/apitoken"
	"github.com/bdzone/staffboard/core/ledger"
)

// scoreApi is the external submission surface: a chat bot or widget holding
// an active api token may append weighted events and read a staff member's
// event log. Nothing here touches the admin JWT.
type scoreApi struct {
	svc      *ledger.Service
	tokenSvc *apitoken.Service
	validate *validator.Validate
}

func registerScoreAPI(g *echo.Group, deps ServerDeps) {
	api := scoreApi{
		svc:      deps.LedgerSvc,
		tokenSvc: deps.TokenSvc,
		validate: deps.Validate,
	}

	g.POST("/add", api.add)
	g.GET("/log", api.log)
}

func (api *scoreApi) add(ctx echo.Context) error {
	var data ledger.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ev, err := api.svc.Submit(ctx.Request().Context(), bearerToken(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ScoreEventResponse{Success: true, Event: ev})
}

func (api *scoreApi) log(ctx echo.Context) error {
	if _, err := api.tokenSvc.Authenticate(ctx.Request().Context(), bearerToken(ctx)); err != nil {
		return err
	}

	staffID := core.CleanString(ctx.QueryParam("staffId"))
	if staffID == "" {
		return core.NewFieldError("staffId", "this field is required")
	}

	events, err := api.svc.EventLog(ctx.Request().Context(), staffID, 0 /* default limit */)
	if err != nil {
		return errors.Wrap(err, "querying score events")
	}
	return ctx.JSON(http.StatusOK, ScoreEventLogResponse{Success: true, Events: events})
}

type (
	ScoreEventResponse struct {
		Success bool         `json:"success"`
		Event   ledger.Event `json:"event"`
	}

	ScoreEventLogResponse struct {
		Success bool           `json:"success"`
		Events  []ledger.Event `json:"events"`
	}
)
