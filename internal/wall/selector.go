// Package wall decides which income wall governs a person and how far they
// are from it.
package wall

import (
	"time"

	"github.com/Veraticus/the-wall-must-hold/internal/model"
	"github.com/Veraticus/the-wall-must-hold/internal/threshold"
)

// InsuranceStatus records who carries the person's health insurance.
type InsuranceStatus string

// Insurance statuses.
const (
	InsuranceSelf   InsuranceStatus = "self"
	InsuranceParent InsuranceStatus = "parent"
)

// Student age range for the specific-dependent wall, inclusive.
const (
	StudentMinAge = 19
	StudentMaxAge = 22
)

// Facts are the inputs needed to pick a wall.
type Facts struct {
	DateOfBirth             time.Time
	FutureSelfInsuranceDate *time.Time
	Insurance               InsuranceStatus
	IsStudent               bool
}

// wallKeys maps each wall type onto the threshold key that prices it.
var wallKeys = map[model.WallType]string{
	model.WallResident:        model.KeyResidentTax110,
	model.WallIncomeGeneral:   model.KeyIncomeGeneral123,
	model.WallIncomeStudent:   model.KeyIncomeStudent150,
	model.WallSocialInsurance: model.KeySocialInsurance130,
}

// KeyFor returns the threshold key used for a wall type.
func KeyFor(w model.WallType) string {
	return wallKeys[w]
}

// AgeAt returns the number of whole years elapsed between dob and at.
func AgeAt(dob, at time.Time) int {
	at = at.In(dob.Location())
	age := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// IsIndependent reports whether the person carries their own insurance at at.
func (f Facts) IsIndependent(at time.Time) bool {
	if f.Insurance == InsuranceSelf {
		return true
	}
	return f.FutureSelfInsuranceDate != nil && !f.FutureSelfInsuranceDate.After(at)
}

// Decide picks the wall that applies at the evaluation time. Amounts are
// read from set, falling back to the built-in values for missing keys.
//
// Self insurance, current or already started, wins over everything else.
// Otherwise students aged 19 to 22 get the specific-dependent wall and
// everyone else the general income wall.
func Decide(f Facts, at time.Time, set model.ThresholdSet) model.Resolution {
	res := model.Resolution{
		ResidentWall: amountFor(set, model.WallResident),
	}

	switch age := AgeAt(f.DateOfBirth, at); {
	case f.IsIndependent(at):
		res.CurrentWallType = model.WallSocialInsurance
		res.IsIndependentMode = true
	case f.IsStudent && age >= StudentMinAge && age <= StudentMaxAge:
		res.CurrentWallType = model.WallIncomeStudent
	default:
		res.CurrentWallType = model.WallIncomeGeneral
	}

	res.CurrentWall = amountFor(set, res.CurrentWallType)
	return res
}

func amountFor(set model.ThresholdSet, w model.WallType) int64 {
	key := wallKeys[w]
	return set.Amount(key, threshold.BuiltinAmount(key))
}
