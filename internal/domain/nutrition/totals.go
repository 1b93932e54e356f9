package nutrition

import (
	"github.com/shopspring/decimal"
)

// Per-event nutrient amounts scale the per-100 g product values by the
// consumed mass and truncate to whole units. Truncation happens per event,
// before summing, so day totals equal the sum of what each intake displays.

func (i *Intake) PotassiumMg() int64  { return scaleDecimal(i.Product.PotassiumMg, i.AmountG) }
func (i *Intake) SodiumMg() int64     { return scaleDecimal(i.Product.SodiumMg, i.AmountG) }
func (i *Intake) PhosphorusMg() int64 { return scaleDecimal(i.Product.PhosphorusMg, i.AmountG) }

func (i *Intake) ProteinsMg() int64      { return scaleInt(i.Product.ProteinsMg, i.AmountG) }
func (i *Intake) EnergyKcal() int64      { return scaleInt(i.Product.EnergyKcal, i.AmountG) }
func (i *Intake) CarbohydratesMg() int64 { return scaleInt(i.Product.CarbohydratesMg, i.AmountG) }
func (i *Intake) FatMg() int64           { return scaleInt(i.Product.FatMg, i.AmountG) }
func (i *Intake) LiquidsG() int64        { return scaleInt(i.Product.LiquidsG, i.AmountG) }

// LiquidsMl truncates twice: first the per-100 g mass-to-volume division,
// then the amount scaling (960 g at 0.96 g/ml counts as 1000 ml).
func (i *Intake) LiquidsMl() int64 { return scaleInt(i.Product.LiquidsMlPer100g(), i.AmountG) }

func scaleDecimal(per100g decimal.Decimal, amountG int64) int64 {
	return per100g.Mul(decimal.NewFromInt(amountG)).Div(decimal.NewFromInt(100)).IntPart()
}

func scaleInt(per100g, amountG int64) int64 {
	return per100g * amountG / 100
}

// NormsAndTotals projects the report's stored norms against totals computed
// from the loaded intakes. Intakes must carry their products.
func (r *DailyIntakesReport) NormsAndTotals() DailyNutrientNormsAndTotals {
	var t DailyNutrientNormsAndTotals
	for idx := range r.Intakes {
		in := &r.Intakes[idx]
		t.PotassiumMg.Total += in.PotassiumMg()
		t.ProteinsMg.Total += in.ProteinsMg()
		t.SodiumMg.Total += in.SodiumMg()
		t.PhosphorusMg.Total += in.PhosphorusMg()
		t.EnergyKcal.Total += in.EnergyKcal()
		t.LiquidsMl.Total += in.LiquidsMl()
		t.CarbohydratesMg.Total += in.CarbohydratesMg()
		t.FatMg.Total += in.FatMg()
	}

	t.PotassiumMg.Norm = r.DailyNormPotassiumMg
	t.ProteinsMg.Norm = r.DailyNormProteinsMg
	t.SodiumMg.Norm = r.DailyNormSodiumMg
	t.PhosphorusMg.Norm = r.DailyNormPhosphorusMg
	t.EnergyKcal.Norm = r.DailyNormEnergyKcal
	t.LiquidsMl.Norm = r.DailyNormLiquidsG
	t.CarbohydratesMg.Norm = r.DailyNormCarbohydratesMg
	t.FatMg.Norm = r.DailyNormFatMg
	return t
}
