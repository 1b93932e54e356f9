package health

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

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
	api.POST("/health-status", h.UpsertStatus)
	api.PUT("/health-status", h.UpsertStatus)
	api.GET("/health-status/:date", h.GetStatus)
	api.GET("/health-status", h.GetStatusesBetween)

	api.POST("/health-status/blood-pressure", h.CreateBloodPressure)
	api.PUT("/health-status/blood-pressure/:id", h.UpdateBloodPressure)
	api.DELETE("/health-status/blood-pressure/:id", h.DeleteBloodPressure)

	api.POST("/health-status/pulse", h.CreatePulse)
	api.PUT("/health-status/pulse/:id", h.UpdatePulse)
	api.DELETE("/health-status/pulse/:id", h.DeletePulse)
}

type statusRequest struct {
	Date               string           `json:"date" validate:"required,datetime=2006-01-02"`
	WeightKg           *decimal.Decimal `json:"weight_kg"`
	Glucose            *decimal.Decimal `json:"glucose"`
	UrineMl            *int64           `json:"urine_ml" validate:"omitempty,min=0"`
	Swellings          []string         `json:"swellings" validate:"dive,oneof=Unknown Eyes WholeFace HandBreadth Hands Belly Knees Foot WholeLegs"`
	SwellingDifficulty string           `json:"swelling_difficulty" validate:"omitempty,oneof=Unknown 0+ 1+ 2+ 3+ 4+"`
	WellFeeling        string           `json:"well_feeling" validate:"omitempty,oneof=Unknown Perfect Good Average Bad VeryBad"`
	Appetite           string           `json:"appetite" validate:"omitempty,oneof=Unknown Perfect Good Average Bad VeryBad"`
	ShortnessOfBreath  string           `json:"shortness_of_breath" validate:"omitempty,oneof=Unknown No Light Average Severe Backbreaking"`
}

func (r statusRequest) input() (StatusInput, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return StatusInput{}, err
	}
	swellings := make([]Swelling, len(r.Swellings))
	for i, s := range r.Swellings {
		swellings[i] = Swelling(s)
	}
	return StatusInput{
		Date:               date,
		WeightKg:           r.WeightKg,
		Glucose:            r.Glucose,
		UrineMl:            r.UrineMl,
		Swellings:          swellings,
		SwellingDifficulty: SwellingDifficulty(r.SwellingDifficulty),
		WellFeeling:        WellFeeling(r.WellFeeling),
		Appetite:           Appetite(r.Appetite),
		ShortnessOfBreath:  ShortnessOfBreath(r.ShortnessOfBreath),
	}, nil
}

func (h *Handler) UpsertStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	input, err := req.input()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	status, err := h.svc.Upsert(ctx, auth.UserIDFromContext(ctx), input)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, status)
}

func (h *Handler) GetStatus(c echo.Context) error {
	date, err := time.Parse(dateLayout, c.Param("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	status, err := h.svc.GetByDate(ctx, auth.UserIDFromContext(ctx), date)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, status)
}

func (h *Handler) GetStatusesBetween(c echo.Context) error {
	from, err := time.Parse(dateLayout, c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	statuses, err := h.svc.GetBetween(ctx, auth.UserIDFromContext(ctx), from, to)
	if err != nil {
		return mapError(err)
	}
	if statuses == nil {
		statuses = []DailyHealthStatus{}
	}
	return c.JSON(http.StatusOK, echo.Map{"daily_health_statuses": statuses})
}

type bloodPressureRequest struct {
	Systolic   int       `json:"systolic_blood_pressure" validate:"required,min=1,max=350"`
	Diastolic  int       `json:"diastolic_blood_pressure" validate:"required,min=1,max=200"`
	MeasuredAt time.Time `json:"measured_at" validate:"required"`
}

func (h *Handler) CreateBloodPressure(c echo.Context) error {
	var req bloodPressureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	bp, err := h.svc.CreateBloodPressure(ctx, auth.UserIDFromContext(ctx), h.tz.FromRequest(c),
		BloodPressureInput{Systolic: req.Systolic, Diastolic: req.Diastolic, MeasuredAt: req.MeasuredAt})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, bp)
}

func (h *Handler) UpdateBloodPressure(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid blood pressure id")
	}

	var req bloodPressureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	bp, err := h.svc.UpdateBloodPressure(ctx, auth.UserIDFromContext(ctx), id,
		BloodPressureInput{Systolic: req.Systolic, Diastolic: req.Diastolic, MeasuredAt: req.MeasuredAt})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, bp)
}

func (h *Handler) DeleteBloodPressure(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid blood pressure id")
	}

	ctx := c.Request().Context()
	if err := h.svc.DeleteBloodPressure(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type pulseRequest struct {
	Pulse      int       `json:"pulse" validate:"required,min=10,max=200"`
	MeasuredAt time.Time `json:"measured_at" validate:"required"`
}

func (h *Handler) CreatePulse(c echo.Context) error {
	var req pulseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	p, err := h.svc.CreatePulse(ctx, auth.UserIDFromContext(ctx), h.tz.FromRequest(c),
		PulseInput{Pulse: req.Pulse, MeasuredAt: req.MeasuredAt})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePulse(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pulse id")
	}

	var req pulseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	p, err := h.svc.UpdatePulse(ctx, auth.UserIDFromContext(ctx), id,
		PulseInput{Pulse: req.Pulse, MeasuredAt: req.MeasuredAt})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePulse(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pulse id")
	}

	ctx := c.Request().Context()
	if err := h.svc.DeletePulse(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func mapError(err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.Is(err, ErrStatusNotFound), errors.Is(err, ErrBloodPressureNotFound), errors.Is(err, ErrPulseNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
