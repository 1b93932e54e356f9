package dialysis

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nephrolog-lt/nephrolog-api/internal/domain/health"
	"github.com/nephrolog-lt/nephrolog-api/internal/domain/nutrition"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/auth"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/timezone"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc *Service
	tz  *timezone.Resolver
}

func NewHandler(svc *Service, tz *timezone.Resolver) *Handler {
	return &Handler{svc: svc, tz: tz}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/dialysis/manual", h.CreateManual)
	api.PUT("/dialysis/manual/:id", h.UpdateManual)
	api.DELETE("/dialysis/manual/:id", h.DeleteManual)
	api.GET("/dialysis/manual/screen", h.GetManualScreen)

	api.POST("/dialysis/automatic", h.CreateAutomatic)
	api.PUT("/dialysis/automatic/:date", h.UpdateAutomatic)
	api.DELETE("/dialysis/automatic/:date", h.DeleteAutomatic)
	api.GET("/dialysis/automatic/screen", h.GetAutomaticScreen)
	api.GET("/dialysis/automatic", h.GetAutomaticBetween)
}

type manualRequest struct {
	IsCompleted      bool      `json:"is_completed"`
	StartedAt        time.Time `json:"started_at" validate:"required"`
	DialysisSolution string    `json:"dialysis_solution" validate:"omitempty,oneof=Unknown Yellow Green Orange Blue Purple"`
	SolutionInMl     int64     `json:"solution_in_ml" validate:"required,min=1"`
	SolutionOutMl    *int64    `json:"solution_out_ml" validate:"omitempty,min=0"`
	DialysateColor   string    `json:"dialysate_color" validate:"omitempty,oneof=Unknown Transparent Pink CloudyYellowish Greenish Brown CloudyWhite"`
	Notes            string    `json:"notes"`
}

func (r manualRequest) input() ManualInput {
	return ManualInput{
		IsCompleted:      r.IsCompleted,
		StartedAt:        r.StartedAt,
		DialysisSolution: Solution(r.DialysisSolution),
		SolutionInMl:     r.SolutionInMl,
		SolutionOutMl:    r.SolutionOutMl,
		DialysateColor:   DialysateColor(r.DialysateColor),
		Notes:            r.Notes,
	}
}

func (h *Handler) CreateManual(c echo.Context) error {
	var req manualRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	m, err := h.svc.CreateManual(ctx, auth.UserIDFromContext(ctx), h.tz.FromRequest(c), req.input())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) UpdateManual(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid dialysis id")
	}

	var req manualRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	m, err := h.svc.UpdateManual(ctx, auth.UserIDFromContext(ctx), h.tz.FromRequest(c), id, req.input())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteManual(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid dialysis id")
	}

	ctx := c.Request().Context()
	if err := h.svc.DeleteManual(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type lightReport struct {
	Date                   string                                `json:"date"`
	NutrientNormsAndTotals nutrition.DailyNutrientNormsAndTotals `json:"nutrient_norms_and_totals"`
}

func toLightReports(reports []nutrition.DailyIntakesReport) []lightReport {
	out := make([]lightReport, len(reports))
	for i := range reports {
		out[i] = lightReport{
			Date:                   reports[i].Date.Format(dateLayout),
			NutrientNormsAndTotals: reports[i].NormsAndTotals(),
		}
	}
	return out
}

type manualScreenResponse struct {
	InProgress       *ManualDialysis            `json:"peritoneal_dialysis_in_progress"`
	LastSessions     []ManualDialysis           `json:"last_peritoneal_dialysis"`
	LastWeekStatuses []health.DailyHealthStatus `json:"last_week_health_statuses"`
	LastWeekReports  []lightReport              `json:"last_week_light_nutrition_reports"`
}

func (h *Handler) GetManualScreen(c echo.Context) error {
	ctx := c.Request().Context()
	screen, err := h.svc.GetManualScreen(ctx, auth.UserIDFromContext(ctx), h.tz.FromRequest(c))
	if err != nil {
		return mapError(err)
	}

	resp := manualScreenResponse{
		InProgress:       screen.InProgress,
		LastSessions:     screen.LastSessions,
		LastWeekStatuses: screen.LastWeekStatuses,
		LastWeekReports:  toLightReports(screen.LastWeekReports),
	}
	if resp.LastSessions == nil {
		resp.LastSessions = []ManualDialysis{}
	}
	if resp.LastWeekStatuses == nil {
		resp.LastWeekStatuses = []health.DailyHealthStatus{}
	}
	return c.JSON(http.StatusOK, resp)
}

type automaticRequest struct {
	IsCompleted bool      `json:"is_completed"`
	StartedAt   time.Time `json:"started_at" validate:"required"`

	SolutionYellowInMl int64 `json:"solution_yellow_in_ml" validate:"min=0"`
	SolutionGreenInMl  int64 `json:"solution_green_in_ml" validate:"min=0"`
	SolutionOrangeInMl int64 `json:"solution_orange_in_ml" validate:"min=0"`
	SolutionBlueInMl   int64 `json:"solution_blue_in_ml" validate:"min=0"`
	SolutionPurpleInMl int64 `json:"solution_purple_in_ml" validate:"min=0"`

	InitialDrainingMl      *int64 `json:"initial_draining_ml" validate:"omitempty,min=0"`
	TotalDrainVolumeMl     *int64 `json:"total_drain_volume_ml" validate:"omitempty,min=0"`
	LastFillMl             *int64 `json:"last_fill_ml" validate:"omitempty,min=0"`
	TotalUltrafiltrationMl *int64 `json:"total_ultrafiltration_ml" validate:"omitempty,min=0"`

	DialysateColor string     `json:"dialysate_color" validate:"omitempty,oneof=Unknown Transparent Pink CloudyYellowish Greenish Brown CloudyWhite"`
	Notes          string     `json:"notes"`
	FinishedAt     *time.Time `json:"finished_at"`
}

func (r automaticRequest) input() AutomaticInput {
	return AutomaticInput{
		IsCompleted:            r.IsCompleted,
		StartedAt:              r.StartedAt,
		SolutionYellowInMl:     r.SolutionYellowInMl,
		SolutionGreenInMl:      r.SolutionGreenInMl,
		SolutionOrangeInMl:     r.SolutionOrangeInMl,
		SolutionBlueInMl:       r.SolutionBlueInMl,
		SolutionPurpleInMl:     r.SolutionPurpleInMl,
		InitialDrainingMl:      r.InitialDrainingMl,
		TotalDrainVolumeMl:     r.TotalDrainVolumeMl,
		LastFillMl:             r.LastFillMl,
		TotalUltrafiltrationMl: r.TotalUltrafiltrationMl,
		DialysateColor:         DialysateColor(r.DialysateColor),
		Notes:                  r.Notes,
		FinishedAt:             r.FinishedAt,
	}
}

func (h *Handler) CreateAutomatic(c echo.Context) error {
	var req automaticRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	a, err := h.svc.CreateAutomatic(ctx, auth.UserIDFromContext(ctx), h.tz.FromRequest(c), req.input())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAutomatic(c echo.Context) error {
	date, err := time.Parse(dateLayout, c.Param("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	var req automaticRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	a, err := h.svc.UpdateAutomatic(ctx, auth.UserIDFromContext(ctx), h.tz.FromRequest(c), date, req.input())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAutomatic(c echo.Context) error {
	date, err := time.Parse(dateLayout, c.Param("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	if err := h.svc.DeleteAutomatic(ctx, auth.UserIDFromContext(ctx), date); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type automaticScreenResponse struct {
	InProgress       *AutomaticDialysis         `json:"peritoneal_dialysis_in_progress"`
	LastSession      *AutomaticDialysis         `json:"last_peritoneal_dialysis"`
	LastWeekStatuses []health.DailyHealthStatus `json:"last_week_health_statuses"`
	LastWeekReports  []lightReport              `json:"last_week_light_nutrition_reports"`
}

func (h *Handler) GetAutomaticScreen(c echo.Context) error {
	ctx := c.Request().Context()
	screen, err := h.svc.GetAutomaticScreen(ctx, auth.UserIDFromContext(ctx), h.tz.FromRequest(c))
	if err != nil {
		return mapError(err)
	}

	resp := automaticScreenResponse{
		InProgress:       screen.InProgress,
		LastSession:      screen.LastSession,
		LastWeekStatuses: screen.LastWeekStatuses,
		LastWeekReports:  toLightReports(screen.LastWeekReports),
	}
	if resp.LastWeekStatuses == nil {
		resp.LastWeekStatuses = []health.DailyHealthStatus{}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetAutomaticBetween(c echo.Context) error {
	from, err := time.Parse(dateLayout, c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	sessions, err := h.svc.GetAutomaticBetween(ctx, auth.UserIDFromContext(ctx), from, to)
	if err != nil {
		return mapError(err)
	}
	if sessions == nil {
		sessions = []AutomaticDialysis{}
	}
	return c.JSON(http.StatusOK, echo.Map{"peritoneal_dialysis": sessions})
}

func mapError(err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.Is(err, ErrManualNotFound), errors.Is(err, ErrAutomaticNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
