package model

// DangerLevel is how close income is to the governing wall.
type DangerLevel string

// Danger levels.
const (
	DangerSafe   DangerLevel = "safe"
	DangerWarn   DangerLevel = "warn"
	DangerDanger DangerLevel = "danger"
)

// ProgressSnapshot summarises income against one wall at a point in time.
type ProgressSnapshot struct {
	WallType                 WallType
	DisplayName              string
	DangerLevel              DangerLevel
	Threshold                int64
	CurrentIncome            int64
	RemainingAllowance       int64
	RecommendedMonthlyIncome int64
	Percentage               float64
	RemainingMonths          int
}
