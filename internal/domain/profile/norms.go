package profile

import "math"

const (
	baseHeightCm = 152
	cmPerInch    = 2.54

	femaleWeightIncreasePerInch = 2.27
	baseFemaleWeightKg          = 45.36

	maleWeightIncreasePerInch = 2.72
	baseMaleWeightKg          = 48.08
)

// NutrientNorms holds the computed daily limits. A nil limit means no limit
// is defined for the patient's regimen.
type NutrientNorms struct {
	PotassiumMg          *int64
	ProteinsMg           *int64
	SodiumMg             *int64
	PhosphorusMg         *int64
	EnergyKcal           *int64
	LiquidsGWithoutUrine *int64
}

func (c Clinical) isDiabetic() bool {
	return c.DiabetesType == DiabetesType1 || c.DiabetesType == DiabetesType2
}

func (c Clinical) onPeritonealDialysis() bool {
	return c.Dialysis == DialysisAutomaticPeritoneal || c.Dialysis == DialysisManualPeritoneal
}

func (c Clinical) onAnyDialysis() bool {
	return c.Dialysis == DialysisHemodialysis || c.onPeritonealDialysis()
}

// PerfectWeightKg is the Devine-style ideal body weight every
// mass-proportional limit scales with.
func (c Clinical) PerfectWeightKg() float64 {
	increase := maleWeightIncreasePerInch
	base := baseMaleWeightKg
	if c.Gender == GenderFemale {
		increase = femaleWeightIncreasePerInch
		base = baseFemaleWeightKg
	}

	return float64(max(c.HeightCm-baseHeightCm, 0))/cmPerInch*increase + base
}

// DailyNorms computes the full set of daily nutrient limits for this
// clinical state. Pure: no I/O, deterministic for a fixed input.
func (c Clinical) DailyNorms() NutrientNorms {
	return NutrientNorms{
		PotassiumMg:          c.dailyNormPotassiumMg(),
		ProteinsMg:           c.dailyNormProteinsMg(),
		SodiumMg:             c.dailyNormSodiumMg(),
		PhosphorusMg:         c.dailyNormPhosphorusMg(),
		EnergyKcal:           c.dailyNormEnergyKcal(),
		LiquidsGWithoutUrine: c.dailyNormLiquidsGWithoutUrine(),
	}
}

func (c Clinical) dailyNormPotassiumMg() *int64 {
	if c.Dialysis == DialysisHemodialysis {
		return scaled(40, c.PerfectWeightKg())
	}
	if c.onPeritonealDialysis() {
		return fixed(4000)
	}
	return nil
}

func (c Clinical) dailyNormProteinsMg() *int64 {
	switch {
	case c.Dialysis == DialysisNotPerformed:
		if c.isDiabetic() {
			return scaled(800, c.PerfectWeightKg())
		}
		return scaled(600, c.PerfectWeightKg())
	case c.onAnyDialysis():
		return scaled(1200, c.PerfectWeightKg())
	case c.Dialysis == DialysisPostTransplant:
		return scaled(800, c.PerfectWeightKg())
	}
	return nil
}

func (c Clinical) dailyNormSodiumMg() *int64 {
	return fixed(2300)
}

func (c Clinical) dailyNormPhosphorusMg() *int64 {
	if c.onAnyDialysis() || c.Dialysis == DialysisNotPerformed {
		return fixed(1000)
	}
	return nil
}

// No daily energy limit in the current product generation.
func (c Clinical) dailyNormEnergyKcal() *int64 {
	return nil
}

func (c Clinical) dailyNormLiquidsGWithoutUrine() *int64 {
	if c.onAnyDialysis() {
		return fixed(1000)
	}
	return nil
}

// scaled rounds factor*weight half-to-even.
func scaled(factor float64, weightKg float64) *int64 {
	v := int64(math.RoundToEven(factor * weightKg))
	return &v
}

func fixed(v int64) *int64 {
	return &v
}
