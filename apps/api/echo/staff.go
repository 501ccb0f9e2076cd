package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bdzone/staffboard/core/ledger"
	"github.com/bdzone/staffboard/core/staff"
)

var errStaffNotFoundInCtx = errors.New("staff object not found in echo.Context")

type staffApi struct {
	svc       *staff.Service
	ledgerSvc *ledger.Service
	validate  *validator.Validate
}

func registerStaffAPI(g *echo.Group, deps ServerDeps) {
	api := staffApi{
		svc:       deps.StaffSvc,
		ledgerSvc: deps.LedgerSvc,
		validate:  deps.Validate,
	}

	sg := g.Group("/staff")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/roles", api.queryRoles)

	// detail endpoints
	dg := sg.Group("/:id", ctxStaffMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/score", api.retrieveScore)
	dg.GET("/events", api.retrieveEvents)
}

// Handlers

func (api *staffApi) query(ctx echo.Context) error {
	all, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying staff")
	}
	// default ordering is oldest first; ?sort=grade yields a leaderboard
	if ctx.QueryParam("sort") == "grade" {
		staff.SortByGrade(all)
	}
	return ctx.JSON(http.StatusOK, all)
}

func (api *staffApi) create(ctx echo.Context) error {
	var data staff.NewStaff
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStaff")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating staff")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *staffApi) retrieve(ctx echo.Context) error {
	s, ok := ctx.Get("object").(staff.Staff)
	if !ok {
		return errStaffNotFoundInCtx
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *staffApi) update(ctx echo.Context) error {
	s, ok := ctx.Get("object").(staff.Staff)
	if !ok {
		return errStaffNotFoundInCtx
	}

	var data staff.UpdateStaff
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStaff")
	}
	if err := data.Validate(s, api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), s.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *staffApi) destroy(ctx echo.Context) error {
	s, ok := ctx.Get("object").(staff.Staff)
	if !ok {
		return errStaffNotFoundInCtx
	}

	if _, err := api.svc.Delete(ctx.Request().Context(), s.ID, s.Role); err != nil {
		return errors.Wrap(err, "deleting staff")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *staffApi) retrieveScore(ctx echo.Context) error {
	s, ok := ctx.Get("object").(staff.Staff)
	if !ok {
		return errStaffNotFoundInCtx
	}

	score, err := api.ledgerSvc.Score(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "summing staff score")
	}
	return ctx.JSON(http.StatusOK, StaffScoreResponse{StaffID: s.ID, Score: score})
}

func (api *staffApi) retrieveEvents(ctx echo.Context) error {
	s, ok := ctx.Get("object").(staff.Staff)
	if !ok {
		return errStaffNotFoundInCtx
	}

	var params EventLogParams
	if err := ctx.Bind(&params); err != nil {
		return errors.Wrap(err, "binding to EventLogParams")
	}

	events, err := api.ledgerSvc.EventLog(ctx.Request().Context(), s.ID, params.Limit)
	if err != nil {
		return errors.Wrap(err, "querying staff events")
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *staffApi) queryRoles(ctx echo.Context) error {
	roles := make([]RoleInfo, 0, len(staff.AllRoles))
	for _, role := range staff.AllRoles {
		roles = append(roles, RoleInfo{
			Role:        role,
			Privileged:  role.Privileged(),
			Ranks:       role.AllowedRanks(),
			DefaultRank: role.DefaultRank(),
			MetricKeys:  role.MetricKeys(),
		})
	}
	return ctx.JSON(http.StatusOK, roles)
}

// ctxStaffMiddleware resolves :id and stashes the staff object for the
// detail handlers.
func ctxStaffMiddleware(svc *staff.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			s, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == staff.ErrNotFound {
					return errHttpNotFound
				}
				return err
			}
			ctx.Set("object", s)
			return next(ctx)
		}
	}
}

type (
	RoleInfo struct {
		Role        staff.Role `json:"role"`
		Privileged  bool       `json:"privileged"`
		Ranks       []string   `json:"ranks"`
		DefaultRank string     `json:"default_rank"`
		MetricKeys  []string   `json:"metric_keys"`
	}

	StaffScoreResponse struct {
		StaffID string  `json:"staff_id"`
		Score   float64 `json:"score"`
	}

	EventLogParams struct {
		Limit int `query:"limit"`
	}
)
