package profile

import (
	"math"
	"testing"
)

func ptr(v int64) *int64 { return &v }

func clinical(gender Gender, heightCm int, dialysis DialysisType, diabetes DiabetesType) Clinical {
	return Clinical{
		Gender:                    gender,
		HeightCm:                  heightCm,
		ChronicKidneyDiseaseAge:   DiseaseAgeOneToFive,
		ChronicKidneyDiseaseStage: Stage4,
		Dialysis:                  dialysis,
		DiabetesType:              diabetes,
	}
}

func TestPerfectWeightKg(t *testing.T) {
	tests := []struct {
		name     string
		gender   Gender
		heightCm int
		want     float64
	}{
		{"male 185cm", GenderMale, 185, 83.4185826772},
		{"female 165cm", GenderFemale, 165, 56.9781102362},
		{"male at base height", GenderMale, 152, 48.08},
		{"male below base height clamps", GenderMale, 150, 48.08},
		{"female below base height clamps", GenderFemale, 140, 45.36},
		{"female 172cm", GenderFemale, 172, 63.2340157480},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := clinical(tt.gender, tt.heightCm, DialysisHemodialysis, DiabetesNo)
			got := c.PerfectWeightKg()
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PerfectWeightKg() = %.10f, want %.10f", got, tt.want)
			}
		})
	}
}

func TestDailyNormsHemodialysis(t *testing.T) {
	c := clinical(GenderMale, 185, DialysisHemodialysis, DiabetesNo)
	n := c.DailyNorms()

	assertNorm(t, "potassium", n.PotassiumMg, ptr(3337))
	assertNorm(t, "proteins", n.ProteinsMg, ptr(100102))
	assertNorm(t, "sodium", n.SodiumMg, ptr(2300))
	assertNorm(t, "phosphorus", n.PhosphorusMg, ptr(1000))
	assertNorm(t, "energy", n.EnergyKcal, nil)
	assertNorm(t, "liquids", n.LiquidsGWithoutUrine, ptr(1000))
}

func TestDailyNormsHemodialysisFemale(t *testing.T) {
	c := clinical(GenderFemale, 165, DialysisHemodialysis, DiabetesNo)
	n := c.DailyNorms()

	assertNorm(t, "potassium", n.PotassiumMg, ptr(2279))
	assertNorm(t, "proteins", n.ProteinsMg, ptr(68374))
}

func TestDailyNormsPeritonealDialysis(t *testing.T) {
	for _, dialysis := range []DialysisType{DialysisAutomaticPeritoneal, DialysisManualPeritoneal} {
		t.Run(string(dialysis), func(t *testing.T) {
			c := clinical(GenderMale, 185, dialysis, DiabetesNo)
			n := c.DailyNorms()

			assertNorm(t, "potassium", n.PotassiumMg, ptr(4000))
			assertNorm(t, "proteins", n.ProteinsMg, ptr(100102))
			assertNorm(t, "sodium", n.SodiumMg, ptr(2300))
			assertNorm(t, "phosphorus", n.PhosphorusMg, ptr(1000))
			assertNorm(t, "liquids", n.LiquidsGWithoutUrine, ptr(1000))
		})
	}
}

func TestDailyNormsNotPerformed(t *testing.T) {
	c := clinical(GenderMale, 152, DialysisNotPerformed, DiabetesNo)
	n := c.DailyNorms()

	assertNorm(t, "potassium", n.PotassiumMg, nil)
	assertNorm(t, "proteins", n.ProteinsMg, ptr(28848))
	assertNorm(t, "sodium", n.SodiumMg, ptr(2300))
	assertNorm(t, "phosphorus", n.PhosphorusMg, ptr(1000))
	assertNorm(t, "liquids", n.LiquidsGWithoutUrine, nil)
}

func TestDailyNormsNotPerformedDiabetic(t *testing.T) {
	for _, diabetes := range []DiabetesType{DiabetesType1, DiabetesType2} {
		t.Run(string(diabetes), func(t *testing.T) {
			c := clinical(GenderMale, 152, DialysisNotPerformed, diabetes)
			n := c.DailyNorms()

			assertNorm(t, "proteins", n.ProteinsMg, ptr(38464))
		})
	}
}

func TestDailyNormsPostTransplant(t *testing.T) {
	c := clinical(GenderMale, 152, DialysisPostTransplant, DiabetesNo)
	n := c.DailyNorms()

	assertNorm(t, "potassium", n.PotassiumMg, nil)
	assertNorm(t, "proteins", n.ProteinsMg, ptr(38464))
	assertNorm(t, "sodium", n.SodiumMg, ptr(2300))
	assertNorm(t, "phosphorus", n.PhosphorusMg, nil)
	assertNorm(t, "liquids", n.LiquidsGWithoutUrine, nil)
}

func TestDailyNormsUnknownDialysis(t *testing.T) {
	c := clinical(GenderMale, 185, DialysisUnknown, DiabetesNo)
	n := c.DailyNorms()

	assertNorm(t, "potassium", n.PotassiumMg, nil)
	assertNorm(t, "proteins", n.ProteinsMg, nil)
	assertNorm(t, "sodium", n.SodiumMg, ptr(2300))
	assertNorm(t, "phosphorus", n.PhosphorusMg, nil)
	assertNorm(t, "energy", n.EnergyKcal, nil)
	assertNorm(t, "liquids", n.LiquidsGWithoutUrine, nil)
}

func assertNorm(t *testing.T, name string, got, want *int64) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Errorf("%s = %d, want no limit", name, *got)
	case want != nil && got == nil:
		t.Errorf("%s = no limit, want %d", name, *want)
	case want != nil && got != nil && *got != *want:
		t.Errorf("%s = %d, want %d", name, *got, *want)
	}
}
