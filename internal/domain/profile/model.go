package profile

import (
	"time"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

type DialysisType string

const (
	DialysisUnknown             DialysisType = "Unknown"
	DialysisAutomaticPeritoneal DialysisType = "AutomaticPeritonealDialysis"
	DialysisManualPeritoneal    DialysisType = "ManualPeritonealDialysis"
	DialysisHemodialysis        DialysisType = "Hemodialysis"
	DialysisPostTransplant      DialysisType = "PostTransplant"
	DialysisNotPerformed        DialysisType = "NotPerformed"
)

type ChronicKidneyDiseaseStage string

const (
	StageUnknown ChronicKidneyDiseaseStage = "Unknown"
	Stage1       ChronicKidneyDiseaseStage = "Stage1"
	Stage2       ChronicKidneyDiseaseStage = "Stage2"
	Stage3       ChronicKidneyDiseaseStage = "Stage3"
	Stage4       ChronicKidneyDiseaseStage = "Stage4"
	Stage5       ChronicKidneyDiseaseStage = "Stage5"
)

type DiabetesType string

const (
	DiabetesUnknown DiabetesType = "Unknown"
	DiabetesType1   DiabetesType = "Type1"
	DiabetesType2   DiabetesType = "Type2"
	DiabetesNo      DiabetesType = "No"
)

type ChronicKidneyDiseaseAgeInterval string

const (
	DiseaseAgeUnknown     ChronicKidneyDiseaseAgeInterval = "Unknown"
	DiseaseAgeBelowOne    ChronicKidneyDiseaseAgeInterval = "<1"
	DiseaseAgeOneToFive   ChronicKidneyDiseaseAgeInterval = "1-5"
	DiseaseAgeSixToTen    ChronicKidneyDiseaseAgeInterval = "6-10"
	DiseaseAgeMoreThanTen ChronicKidneyDiseaseAgeInterval = ">10"
)

// Clinical holds the profile fields the norm calculator reads. Both the
// current profile and its historical snapshots embed it.
type Clinical struct {
	Gender                    Gender                          `db:"gender" json:"gender"`
	HeightCm                  int                             `db:"height_cm" json:"height_cm"`
	ChronicKidneyDiseaseAge   ChronicKidneyDiseaseAgeInterval `db:"chronic_kidney_disease_age" json:"chronic_kidney_disease_age"`
	ChronicKidneyDiseaseStage ChronicKidneyDiseaseStage       `db:"chronic_kidney_disease_stage" json:"chronic_kidney_disease_stage"`
	Dialysis                  DialysisType                    `db:"dialysis" json:"dialysis"`
	DiabetesType              DiabetesType                    `db:"diabetes_type" json:"diabetes_type"`
}

// Profile is the single mutable clinical profile of a user.
type Profile struct {
	ID     int64  `db:"id" json:"id"`
	UserID string `db:"user_id" json:"user_id"`
	Clinical
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HistoricalProfile is the immutable per-day copy of the profile. At most
// one row exists per (user, date); a second profile edit on the same day
// refreshes that day's row.
type HistoricalProfile struct {
	ID     int64     `db:"id" json:"id"`
	UserID string    `db:"user_id" json:"user_id"`
	Date   time.Time `db:"date" json:"date"`
	Clinical
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
