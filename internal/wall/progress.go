package wall

import (
	"math"
	"time"

	"github.com/Veraticus/the-wall-must-hold/internal/model"
	"github.com/Veraticus/the-wall-must-hold/internal/threshold"
)

// Danger level boundaries, in percent of the wall.
const (
	WarnPercent   = 90.0
	DangerPercent = 100.0
)

// RemainingAllowance is how much more can be earned before the wall.
// Non-positive walls and negative incomes clamp to zero.
func RemainingAllowance(income, wall int64) int64 {
	if wall <= 0 {
		return 0
	}
	income = max(income, 0)
	return max(wall-income, 0)
}

// Percentage is income as a share of the wall, clamped to [0, 100].
func Percentage(income, wall int64) float64 {
	if wall <= 0 || income <= 0 {
		return 0
	}
	return math.Min(100, float64(income)/float64(wall)*100)
}

// DangerLevelFor maps a percentage onto a danger level.
func DangerLevelFor(percentage float64) model.DangerLevel {
	switch {
	case percentage >= DangerPercent:
		return model.DangerDanger
	case percentage >= WarnPercent:
		return model.DangerWarn
	default:
		return model.DangerSafe
	}
}

// RemainingMonths counts the full calendar months left in the year after
// the month containing at. July leaves five; December leaves none.
func RemainingMonths(at time.Time) int {
	return 12 - int(at.Month())
}

// RecommendedMonthlyIncome spreads the remaining allowance evenly over the
// remaining months. It is zero once no full month is left.
func RecommendedMonthlyIncome(remaining int64, at time.Time) int64 {
	months := RemainingMonths(at)
	if months <= 0 || remaining <= 0 {
		return 0
	}
	return remaining / int64(months)
}

// Breakdown computes the progress snapshot for the governing wall.
func Breakdown(income int64, res model.Resolution, asOf time.Time) model.ProgressSnapshot {
	return snapshot(income, res.CurrentWall, res.CurrentWallType, res.CurrentWallType.DisplayName(), asOf)
}

// Overview computes a snapshot for every wall in set, ordered by amount.
// The second return value is the index of the primary wall: the lowest one
// income has not yet reached, or the highest wall when all are exceeded.
// It is -1 for an empty set.
func Overview(income int64, set model.ThresholdSet, asOf time.Time) ([]model.ProgressSnapshot, int) {
	defs := make([]model.ThresholdDefinition, 0, len(set))
	for _, def := range set {
		defs = append(defs, def)
	}
	threshold.SortByAmount(defs)

	out := make([]model.ProgressSnapshot, 0, len(defs))
	primary := -1
	for i, def := range defs {
		snap := snapshot(income, def.Amount, wallTypeForKey(def.Key), def.Label, asOf)
		if primary < 0 && snap.DangerLevel != model.DangerDanger {
			primary = i
		}
		out = append(out, snap)
	}
	if primary < 0 {
		primary = len(out) - 1
	}
	return out, primary
}

func snapshot(income, wall int64, wallType model.WallType, name string, asOf time.Time) model.ProgressSnapshot {
	income = max(income, 0)
	remaining := RemainingAllowance(income, wall)
	pct := Percentage(income, wall)

	return model.ProgressSnapshot{
		Threshold:                wall,
		WallType:                 wallType,
		DisplayName:              name,
		CurrentIncome:            income,
		RemainingAllowance:       remaining,
		DangerLevel:              DangerLevelFor(pct),
		Percentage:               pct,
		RecommendedMonthlyIncome: RecommendedMonthlyIncome(remaining, asOf),
		RemainingMonths:          RemainingMonths(asOf),
	}
}

func wallTypeForKey(key string) model.WallType {
	for w, k := range wallKeys {
		if k == key {
			return w
		}
	}
	return model.WallType(key)
}
