package nutrition

import (
	"time"

	"github.com/nephrolog-lt/nephrolog-api/internal/domain/product"
)

type MealType string

const (
	MealUnknown   MealType = "Unknown"
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
)

func ValidMealType(m MealType) bool {
	switch m {
	case MealUnknown, MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// DailyIntakesReport is the per-(user, day) aggregation anchor. Only the
// daily norms are stored; consumption totals are always recomputed from the
// intakes, so editing an intake can never leave a stale total behind.
//
// Carbohydrate and fat norm columns exist but no regimen sets them yet.
type DailyIntakesReport struct {
	ID     int64     `db:"id" json:"-"`
	UserID string    `db:"user_id" json:"-"`
	Date   time.Time `db:"date" json:"date"`

	DailyNormPotassiumMg     *int64 `db:"daily_norm_potassium_mg" json:"-"`
	DailyNormProteinsMg      *int64 `db:"daily_norm_proteins_mg" json:"-"`
	DailyNormSodiumMg        *int64 `db:"daily_norm_sodium_mg" json:"-"`
	DailyNormPhosphorusMg    *int64 `db:"daily_norm_phosphorus_mg" json:"-"`
	DailyNormEnergyKcal      *int64 `db:"daily_norm_energy_kcal" json:"-"`
	DailyNormLiquidsG        *int64 `db:"daily_norm_liquids_g" json:"-"`
	DailyNormCarbohydratesMg *int64 `db:"daily_norm_carbohydrates_mg" json:"-"`
	DailyNormFatMg           *int64 `db:"daily_norm_fat_mg" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`

	Intakes []Intake `db:"-" json:"intakes"`
}

// Intake is a single consumption event. AmountG is the consumed mass;
// AmountMl is derived from the product density for drinks when the client
// does not send it.
type Intake struct {
	ID            int64  `db:"id" json:"id"`
	UserID        string `db:"user_id" json:"-"`
	DailyReportID int64  `db:"daily_report_id" json:"-"`
	ProductID     int64  `db:"product_id" json:"product_id"`

	MealType   MealType  `db:"meal_type" json:"meal_type"`
	ConsumedAt time.Time `db:"consumed_at" json:"consumed_at"`
	AmountG    int64     `db:"amount_g" json:"amount_g"`
	AmountMl   *int64    `db:"amount_ml" json:"amount_ml,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Product *product.Product `db:"-" json:"product,omitempty"`
}

// DailyNutrientConsumption pairs a consumed total with the day's norm; a
// nil norm means the regimen defines no limit for that nutrient.
type DailyNutrientConsumption struct {
	Total int64  `json:"total"`
	Norm  *int64 `json:"norm"`
}

type DailyNutrientNormsAndTotals struct {
	PotassiumMg     DailyNutrientConsumption `json:"potassium_mg"`
	ProteinsMg      DailyNutrientConsumption `json:"proteins_mg"`
	SodiumMg        DailyNutrientConsumption `json:"sodium_mg"`
	PhosphorusMg    DailyNutrientConsumption `json:"phosphorus_mg"`
	EnergyKcal      DailyNutrientConsumption `json:"energy_kcal"`
	LiquidsMl       DailyNutrientConsumption `json:"liquids_ml"`
	CarbohydratesMg DailyNutrientConsumption `json:"carbohydrates_mg"`
	FatMg           DailyNutrientConsumption `json:"fat_mg"`
}
