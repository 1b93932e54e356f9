package nutrition

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nephrolog-lt/nephrolog-api/internal/domain/product"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/auth"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/timezone"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc      *Service
	products *product.Service
	tz       *timezone.Resolver
}

func NewHandler(svc *Service, products *product.Service, tz *timezone.Resolver) *Handler {
	return &Handler{svc: svc, products: products, tz: tz}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/nutrition/products/search", h.SearchProducts)

	api.POST("/nutrition/intakes", h.CreateIntake)
	api.PUT("/nutrition/intakes/:id", h.UpdateIntake)
	api.DELETE("/nutrition/intakes/:id", h.DeleteIntake)

	api.GET("/nutrition/daily-reports/:date", h.GetDailyReport)
	api.GET("/nutrition/daily-reports", h.GetDailyReportsBetween)
	api.GET("/nutrition/summary", h.GetSummary)
	api.GET("/nutrition/screen", h.GetScreen)
}

type searchResponse struct {
	Query                       string                      `json:"query"`
	Products                    []product.RankedProduct     `json:"products"`
	DailyNutrientNormsAndTotals DailyNutrientNormsAndTotals `json:"daily_nutrient_norms_and_totals"`
}

func (h *Handler) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.UserIDFromContext(ctx)

	params := product.SearchParams{
		Query:             c.QueryParam("query"),
		ExcludeProductIDs: parseIDList(c.QueryParam("exclude_products")),
		MealType:          canonicalMealType(c.QueryParam("meal_type")),
		Submit:            parseSubmit(c.QueryParam("submit")),
	}

	results, err := h.products.Search(ctx, userID, params)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if results == nil {
		results = []product.RankedProduct{}
	}

	normsAndTotals, err := h.svc.LatestNormsAndTotals(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, searchResponse{
		Query:                       params.Query,
		Products:                    results,
		DailyNutrientNormsAndTotals: normsAndTotals,
	})
}

func parseIDList(raw string) []int64 {
	if raw == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// canonicalMealType matches the enum case-insensitively; anything else is
// recorded as Unknown.
func canonicalMealType(raw string) string {
	for _, m := range []MealType{MealUnknown, MealBreakfast, MealLunch, MealDinner, MealSnack} {
		if strings.EqualFold(raw, string(m)) {
			return string(m)
		}
	}
	return string(MealUnknown)
}

func parseSubmit(raw string) *bool {
	var v bool
	switch raw {
	case "1", "true":
		v = true
	case "0", "false":
		v = false
	default:
		return nil
	}
	return &v
}

type intakeRequest struct {
	ProductID  int64     `json:"product_id" validate:"required,min=1"`
	MealType   string    `json:"meal_type" validate:"omitempty,oneof=Unknown Breakfast Lunch Dinner Snack"`
	ConsumedAt time.Time `json:"consumed_at" validate:"required"`
	AmountG    int64     `json:"amount_g" validate:"required,min=1"`
	AmountMl   *int64    `json:"amount_ml" validate:"omitempty,min=1"`
}

func (r intakeRequest) input() IntakeInput {
	return IntakeInput{
		ProductID:  r.ProductID,
		MealType:   MealType(r.MealType),
		ConsumedAt: r.ConsumedAt,
		AmountG:    r.AmountG,
		AmountMl:   r.AmountMl,
	}
}

func (h *Handler) CreateIntake(c echo.Context) error {
	var req intakeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	in, err := h.svc.CreateIntake(ctx, auth.UserIDFromContext(ctx), h.tz.FromRequest(c), req.input())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, in)
}

func (h *Handler) UpdateIntake(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid intake id")
	}

	var req intakeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	in, err := h.svc.UpdateIntake(ctx, auth.UserIDFromContext(ctx), h.tz.FromRequest(c), id, req.input())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, in)
}

func (h *Handler) DeleteIntake(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid intake id")
	}

	ctx := c.Request().Context()
	if err := h.svc.DeleteIntake(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type reportResponse struct {
	Date                   string                      `json:"date"`
	Intakes                []Intake                    `json:"intakes"`
	NutrientNormsAndTotals DailyNutrientNormsAndTotals `json:"nutrient_norms_and_totals"`
}

type lightReportResponse struct {
	Date                   string                      `json:"date"`
	NutrientNormsAndTotals DailyNutrientNormsAndTotals `json:"nutrient_norms_and_totals"`
}

func toReportResponse(rep *DailyIntakesReport) reportResponse {
	intakes := rep.Intakes
	if intakes == nil {
		intakes = []Intake{}
	}
	return reportResponse{
		Date:                   rep.Date.Format(dateLayout),
		Intakes:                intakes,
		NutrientNormsAndTotals: rep.NormsAndTotals(),
	}
}

func toLightReportResponses(reports []DailyIntakesReport) []lightReportResponse {
	out := make([]lightReportResponse, len(reports))
	for i := range reports {
		out[i] = lightReportResponse{
			Date:                   reports[i].Date.Format(dateLayout),
			NutrientNormsAndTotals: reports[i].NormsAndTotals(),
		}
	}
	return out
}

func (h *Handler) GetDailyReport(c echo.Context) error {
	date, err := time.Parse(dateLayout, c.Param("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	rep, err := h.svc.GetReport(ctx, auth.UserIDFromContext(ctx), date)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"daily_intakes_report": toReportResponse(rep)})
}

func (h *Handler) GetDailyReportsBetween(c echo.Context) error {
	from, err := time.Parse(dateLayout, c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	reports, err := h.svc.GetReportsBetween(ctx, auth.UserIDFromContext(ctx), from, to)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"daily_intakes_light_reports": toLightReportResponses(reports),
	})
}

func (h *Handler) GetSummary(c echo.Context) error {
	ctx := c.Request().Context()
	summary, err := h.svc.Summary(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

type screenResponse struct {
	TodayReport         *lightReportResponse  `json:"today_light_nutrition_report"`
	LastWeekReports     []lightReportResponse `json:"last_week_light_nutrition_reports"`
	CurrentMonthReports []lightReportResponse `json:"current_month_nutrition_reports"`
	LatestIntakes       []Intake              `json:"latest_intakes"`
	Summary             *Summary              `json:"nutrition_summary_statistics"`
}

func (h *Handler) GetScreen(c echo.Context) error {
	ctx := c.Request().Context()
	screen, err := h.svc.GetScreen(ctx, auth.UserIDFromContext(ctx), h.tz.FromRequest(c))
	if err != nil {
		return mapError(err)
	}

	resp := screenResponse{
		LastWeekReports:     toLightReportResponses(screen.LastWeekReports),
		CurrentMonthReports: toLightReportResponses(screen.CurrentMonthReports),
		LatestIntakes:       screen.LatestIntakes,
		Summary:             screen.Summary,
	}
	if resp.LatestIntakes == nil {
		resp.LatestIntakes = []Intake{}
	}
	if screen.TodayReport != nil {
		light := lightReportResponse{
			Date:                   screen.TodayReport.Date.Format(dateLayout),
			NutrientNormsAndTotals: screen.TodayReport.NormsAndTotals(),
		}
		resp.TodayReport = &light
	}
	return c.JSON(http.StatusOK, resp)
}

func mapError(err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.Is(err, ErrReportNotFound), errors.Is(err, ErrIntakeNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
