package profile

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nephrolog-lt/nephrolog-api/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/user/profile", h.GetProfile)
	api.POST("/user/profile", h.SaveProfile)
	api.PUT("/user/profile", h.SaveProfile)
}

type saveProfileRequest struct {
	Gender                    string `json:"gender" validate:"required,oneof=Male Female"`
	HeightCm                  int    `json:"height_cm" validate:"required,min=100,max=250"`
	ChronicKidneyDiseaseAge   string `json:"chronic_kidney_disease_age" validate:"omitempty,oneof=Unknown <1 1-5 6-10 >10"`
	ChronicKidneyDiseaseStage string `json:"chronic_kidney_disease_stage" validate:"required,oneof=Unknown Stage1 Stage2 Stage3 Stage4 Stage5"`
	Dialysis                  string `json:"dialysis" validate:"required,oneof=Unknown AutomaticPeritonealDialysis ManualPeritonealDialysis Hemodialysis PostTransplant NotPerformed"`
	DiabetesType              string `json:"diabetes_type" validate:"omitempty,oneof=Unknown Type1 Type2 No"`
}

func (r saveProfileRequest) clinical() Clinical {
	c := Clinical{
		Gender:                    Gender(r.Gender),
		HeightCm:                  r.HeightCm,
		ChronicKidneyDiseaseAge:   ChronicKidneyDiseaseAgeInterval(r.ChronicKidneyDiseaseAge),
		ChronicKidneyDiseaseStage: ChronicKidneyDiseaseStage(r.ChronicKidneyDiseaseStage),
		Dialysis:                  DialysisType(r.Dialysis),
		DiabetesType:              DiabetesType(r.DiabetesType),
	}
	if c.ChronicKidneyDiseaseAge == "" {
		c.ChronicKidneyDiseaseAge = DiseaseAgeUnknown
	}
	if c.DiabetesType == "" {
		c.DiabetesType = DiabetesUnknown
	}
	return c
}

func (h *Handler) SaveProfile(c echo.Context) error {
	var req saveProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.Save(c.Request().Context(), userID, req.clinical())
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetProfile(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.Get(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}
