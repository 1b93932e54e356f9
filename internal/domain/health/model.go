package health

import (
	"time"

	"github.com/shopspring/decimal"
)

type SwellingDifficulty string

const (
	SwellingDifficultyUnknown SwellingDifficulty = "Unknown"
	SwellingDifficulty0       SwellingDifficulty = "0+"
	SwellingDifficulty1       SwellingDifficulty = "1+"
	SwellingDifficulty2       SwellingDifficulty = "2+"
	SwellingDifficulty3       SwellingDifficulty = "3+"
	SwellingDifficulty4       SwellingDifficulty = "4+"
)

type WellFeeling string

const (
	WellFeelingUnknown WellFeeling = "Unknown"
	WellFeelingPerfect WellFeeling = "Perfect"
	WellFeelingGood    WellFeeling = "Good"
	WellFeelingAverage WellFeeling = "Average"
	WellFeelingBad     WellFeeling = "Bad"
	WellFeelingVeryBad WellFeeling = "VeryBad"
)

type Appetite string

const (
	AppetiteUnknown Appetite = "Unknown"
	AppetitePerfect Appetite = "Perfect"
	AppetiteGood    Appetite = "Good"
	AppetiteAverage Appetite = "Average"
	AppetiteBad     Appetite = "Bad"
	AppetiteVeryBad Appetite = "VeryBad"
)

type ShortnessOfBreath string

const (
	ShortnessOfBreathUnknown      ShortnessOfBreath = "Unknown"
	ShortnessOfBreathNo           ShortnessOfBreath = "No"
	ShortnessOfBreathLight        ShortnessOfBreath = "Light"
	ShortnessOfBreathAverage      ShortnessOfBreath = "Average"
	ShortnessOfBreathSevere       ShortnessOfBreath = "Severe"
	ShortnessOfBreathBackbreaking ShortnessOfBreath = "Backbreaking"
)

type Swelling string

const (
	SwellingUnknown     Swelling = "Unknown"
	SwellingEyes        Swelling = "Eyes"
	SwellingWholeFace   Swelling = "WholeFace"
	SwellingHandBreadth Swelling = "HandBreadth"
	SwellingHands       Swelling = "Hands"
	SwellingBelly       Swelling = "Belly"
	SwellingKnees       Swelling = "Knees"
	SwellingFoot        Swelling = "Foot"
	SwellingWholeLegs   Swelling = "WholeLegs"
)

// DailyHealthStatus is the per-(user, day) self-reported health record.
// Every field except the date is optional; the day's urine volume feeds the
// liquids norm of the matching intakes report.
type DailyHealthStatus struct {
	ID     int64     `db:"id" json:"-"`
	UserID string    `db:"user_id" json:"-"`
	Date   time.Time `db:"date" json:"date"`

	WeightKg *decimal.Decimal `db:"weight_kg" json:"weight_kg"`
	Glucose  *decimal.Decimal `db:"glucose" json:"glucose"`
	UrineMl  *int64           `db:"urine_ml" json:"urine_ml"`

	Swellings          []Swelling         `db:"swellings" json:"swellings"`
	SwellingDifficulty SwellingDifficulty `db:"swelling_difficulty" json:"swelling_difficulty"`
	WellFeeling        WellFeeling        `db:"well_feeling" json:"well_feeling"`
	Appetite           Appetite           `db:"appetite" json:"appetite"`
	ShortnessOfBreath  ShortnessOfBreath  `db:"shortness_of_breath" json:"shortness_of_breath"`

	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`

	BloodPressures []BloodPressure `db:"-" json:"blood_pressures"`
	Pulses         []Pulse         `db:"-" json:"pulses"`
}

type BloodPressure struct {
	ID                  int64     `db:"id" json:"id"`
	DailyHealthStatusID int64     `db:"daily_health_status_id" json:"-"`
	Systolic            int       `db:"systolic_blood_pressure" json:"systolic_blood_pressure"`
	Diastolic           int       `db:"diastolic_blood_pressure" json:"diastolic_blood_pressure"`
	MeasuredAt          time.Time `db:"measured_at" json:"measured_at"`
	CreatedAt           time.Time `db:"created_at" json:"-"`
	UpdatedAt           time.Time `db:"updated_at" json:"-"`
}

type Pulse struct {
	ID                  int64     `db:"id" json:"id"`
	DailyHealthStatusID int64     `db:"daily_health_status_id" json:"-"`
	Pulse               int       `db:"pulse" json:"pulse"`
	MeasuredAt          time.Time `db:"measured_at" json:"measured_at"`
	CreatedAt           time.Time `db:"created_at" json:"-"`
	UpdatedAt           time.Time `db:"updated_at" json:"-"`
}
