package nutrition

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nephrolog-lt/nephrolog-api/internal/domain/product"
)

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func foodProduct(id int64) *product.Product {
	return &product.Product{
		ID:              id,
		Name:            "Boiled potatoes",
		Kind:            product.KindFood,
		PotassiumMg:     decimal.RequireFromString("123.45"),
		SodiumMg:        decimal.RequireFromString("6.70"),
		PhosphorusMg:    decimal.RequireFromString("44.00"),
		ProteinsMg:      2500,
		EnergyKcal:      87,
		LiquidsG:        77,
		CarbohydratesMg: 20100,
		FatMg:           100,
	}
}

func drinkProduct(id int64) *product.Product {
	return &product.Product{
		ID:          id,
		Name:        "Apple juice",
		Kind:        product.KindDrink,
		PotassiumMg: decimal.RequireFromString("119.00"),
		LiquidsG:    96,
		DensityGMl:  decimalPtr("0.96"),
	}
}

func intakeOf(p *product.Product, amountG int64) Intake {
	return Intake{
		ProductID:  p.ID,
		Product:    p,
		AmountG:    amountG,
		ConsumedAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestIntakeDecimalNutrientsTruncatePerEvent(t *testing.T) {
	in := intakeOf(foodProduct(1), 50)

	// 123.45 * 50/100 = 61.725
	if got := in.PotassiumMg(); got != 61 {
		t.Errorf("PotassiumMg() = %d, want 61", got)
	}
	// 6.70 * 50/100 = 3.35
	if got := in.SodiumMg(); got != 3 {
		t.Errorf("SodiumMg() = %d, want 3", got)
	}
	if got := in.PhosphorusMg(); got != 22 {
		t.Errorf("PhosphorusMg() = %d, want 22", got)
	}
}

func TestIntakeIntegerNutrientsTruncate(t *testing.T) {
	in := intakeOf(foodProduct(1), 150)

	if got := in.ProteinsMg(); got != 3750 {
		t.Errorf("ProteinsMg() = %d, want 3750", got)
	}
	// 87 * 150/100 = 130.5
	if got := in.EnergyKcal(); got != 130 {
		t.Errorf("EnergyKcal() = %d, want 130", got)
	}
	if got := in.CarbohydratesMg(); got != 30150 {
		t.Errorf("CarbohydratesMg() = %d, want 30150", got)
	}
	if got := in.FatMg(); got != 150 {
		t.Errorf("FatMg() = %d, want 150", got)
	}
}

func TestIntakeLiquidsMlTruncatesTwice(t *testing.T) {
	// 96 g of liquid per 100 g at 0.96 g/ml is exactly 100 ml per 100 g,
	// so a litre bottle logs as a round 1000 ml.
	in := intakeOf(drinkProduct(2), 1000)

	if got := in.LiquidsMl(); got != 1000 {
		t.Errorf("LiquidsMl() = %d, want 1000", got)
	}
	if got := in.LiquidsG(); got != 960 {
		t.Errorf("LiquidsG() = %d, want 960", got)
	}
}

func TestIntakeLiquidsMlInnerDivisionTruncates(t *testing.T) {
	// 95 / 0.96 = 98.958…: the inner division truncates to 98 before the
	// amount scaling, it never rounds up.
	p := drinkProduct(3)
	p.LiquidsG = 95
	in := intakeOf(p, 100)

	if got := in.LiquidsMl(); got != 98 {
		t.Errorf("LiquidsMl() = %d, want 98", got)
	}
}

func TestIntakeLiquidsMlWithoutDensity(t *testing.T) {
	in := intakeOf(foodProduct(1), 200)

	// Density absent is treated as 1 g/ml.
	if got := in.LiquidsMl(); got != 154 {
		t.Errorf("LiquidsMl() = %d, want 154", got)
	}
}

func TestNormsAndTotalsSumsPerEventTruncations(t *testing.T) {
	p := foodProduct(1)
	rep := DailyIntakesReport{
		Intakes: []Intake{intakeOf(p, 50), intakeOf(p, 50)},
	}

	got := rep.NormsAndTotals()

	// Each event truncates 61.725 to 61 before summing; the day's total is
	// 122, not int(123.45).
	if got.PotassiumMg.Total != 122 {
		t.Errorf("potassium total = %d, want 122", got.PotassiumMg.Total)
	}
	if got.ProteinsMg.Total != 2500 {
		t.Errorf("proteins total = %d, want 2500", got.ProteinsMg.Total)
	}
}

func TestNormsAndTotalsEmptyReport(t *testing.T) {
	norm := int64(2300)
	rep := DailyIntakesReport{DailyNormSodiumMg: &norm}

	got := rep.NormsAndTotals()

	if got.SodiumMg.Total != 0 {
		t.Errorf("sodium total = %d, want 0", got.SodiumMg.Total)
	}
	if got.SodiumMg.Norm == nil || *got.SodiumMg.Norm != 2300 {
		t.Errorf("sodium norm = %v, want 2300", got.SodiumMg.Norm)
	}
	if got.PotassiumMg.Norm != nil {
		t.Errorf("potassium norm = %v, want nil", got.PotassiumMg.Norm)
	}
}

func TestNormsAndTotalsProjectsAllNorms(t *testing.T) {
	potassium, liquids := int64(3337), int64(1500)
	rep := DailyIntakesReport{
		DailyNormPotassiumMg: &potassium,
		DailyNormLiquidsG:    &liquids,
		Intakes:              []Intake{intakeOf(drinkProduct(2), 500)},
	}

	got := rep.NormsAndTotals()

	if got.PotassiumMg.Norm == nil || *got.PotassiumMg.Norm != 3337 {
		t.Errorf("potassium norm = %v, want 3337", got.PotassiumMg.Norm)
	}
	if got.LiquidsMl.Norm == nil || *got.LiquidsMl.Norm != 1500 {
		t.Errorf("liquids norm = %v, want 1500", got.LiquidsMl.Norm)
	}
	if got.LiquidsMl.Total != 500 {
		t.Errorf("liquids total = %d, want 500", got.LiquidsMl.Total)
	}
}
