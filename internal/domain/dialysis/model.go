package dialysis

import "time"

type Solution string

const (
	SolutionUnknown Solution = "Unknown"
	SolutionYellow  Solution = "Yellow"
	SolutionGreen   Solution = "Green"
	SolutionOrange  Solution = "Orange"
	SolutionBlue    Solution = "Blue"
	SolutionPurple  Solution = "Purple"
)

type DialysateColor string

const (
	DialysateColorUnknown         DialysateColor = "Unknown"
	DialysateColorTransparent     DialysateColor = "Transparent"
	DialysateColorPink            DialysateColor = "Pink"
	DialysateColorCloudyYellowish DialysateColor = "CloudyYellowish"
	DialysateColorGreenish        DialysateColor = "Greenish"
	DialysateColorBrown           DialysateColor = "Brown"
	DialysateColorCloudyWhite     DialysateColor = "CloudyWhite"
)

// ManualDialysis is a single manual peritoneal exchange. A day can hold any
// number of exchanges; each is attached to the day's health status and
// intakes report.
type ManualDialysis struct {
	ID                   int64 `db:"id" json:"id"`
	DailyHealthStatusID  int64 `db:"daily_health_status_id" json:"-"`
	DailyIntakesReportID int64 `db:"daily_intakes_report_id" json:"-"`

	IsCompleted bool      `db:"is_completed" json:"is_completed"`
	StartedAt   time.Time `db:"started_at" json:"started_at"`

	DialysisSolution Solution `db:"dialysis_solution" json:"dialysis_solution"`
	SolutionInMl     int64    `db:"solution_in_ml" json:"solution_in_ml"`
	SolutionOutMl    *int64   `db:"solution_out_ml" json:"solution_out_ml"`

	DialysateColor DialysateColor `db:"dialysate_color" json:"dialysate_color"`
	Notes          string         `db:"notes" json:"notes"`

	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// AutomaticDialysis is a cycler session, at most one per health status. A
// session started before 03:00 belongs to the previous day, so its date is
// derived from started_at minus three hours.
type AutomaticDialysis struct {
	ID                   int64     `db:"id" json:"-"`
	DailyHealthStatusID  int64     `db:"daily_health_status_id" json:"-"`
	DailyIntakesReportID int64     `db:"daily_intakes_report_id" json:"-"`
	Date                 time.Time `db:"date" json:"date"`

	IsCompleted bool      `db:"is_completed" json:"is_completed"`
	StartedAt   time.Time `db:"started_at" json:"started_at"`

	SolutionYellowInMl int64 `db:"solution_yellow_in_ml" json:"solution_yellow_in_ml"`
	SolutionGreenInMl  int64 `db:"solution_green_in_ml" json:"solution_green_in_ml"`
	SolutionOrangeInMl int64 `db:"solution_orange_in_ml" json:"solution_orange_in_ml"`
	SolutionBlueInMl   int64 `db:"solution_blue_in_ml" json:"solution_blue_in_ml"`
	SolutionPurpleInMl int64 `db:"solution_purple_in_ml" json:"solution_purple_in_ml"`

	InitialDrainingMl      *int64 `db:"initial_draining_ml" json:"initial_draining_ml"`
	TotalDrainVolumeMl     *int64 `db:"total_drain_volume_ml" json:"total_drain_volume_ml"`
	LastFillMl             *int64 `db:"last_fill_ml" json:"last_fill_ml"`
	TotalUltrafiltrationMl *int64 `db:"total_ultrafiltration_ml" json:"total_ultrafiltration_ml"`

	DialysateColor DialysateColor `db:"dialysate_color" json:"dialysate_color"`
	Notes          string         `db:"notes" json:"notes"`

	FinishedAt *time.Time `db:"finished_at" json:"finished_at"`

	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

func validSolution(s Solution) bool {
	switch s {
	case SolutionUnknown, SolutionYellow, SolutionGreen, SolutionOrange, SolutionBlue, SolutionPurple:
		return true
	}
	return false
}

func validDialysateColor(c DialysateColor) bool {
	switch c {
	case DialysateColorUnknown, DialysateColorTransparent, DialysateColorPink,
		DialysateColorCloudyYellowish, DialysateColorGreenish, DialysateColorBrown,
		DialysateColorCloudyWhite:
		return true
	}
	return false
}
