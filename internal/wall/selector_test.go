package wall

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/the-wall-must-hold/internal/model"
	"github.com/Veraticus/the-wall-must-hold/internal/threshold"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func TestAgeAt(t *testing.T) {
	dob := date(2005, time.June, 15)

	tests := []struct {
		at   time.Time
		name string
		want int
	}{
		{name: "day before birthday", at: date(2024, time.June, 14), want: 18},
		{name: "on birthday", at: date(2024, time.June, 15), want: 19},
		{name: "later same year", at: date(2024, time.December, 31), want: 19},
		{name: "earlier month", at: date(2025, time.March, 1), want: 19},
		{name: "before birth", at: date(2004, time.January, 1), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeAt(dob, tt.at))
		})
	}

	leap := date(2004, time.February, 29)
	assert.Equal(t, 21, AgeAt(leap, date(2025, time.March, 1)))
	assert.Equal(t, 20, AgeAt(leap, date(2025, time.February, 28)), "leap-day birthdays only count from March 1 in common years")
}

func TestDecide(t *testing.T) {
	at := date(2025, time.July, 1)
	set := threshold.Builtin(2025)

	dobForAge := func(age int) time.Time {
		return date(at.Year()-age, time.January, 1)
	}

	tests := []struct {
		name            string
		facts           Facts
		wantType        model.WallType
		wantWall        int64
		wantIndependent bool
	}{
		{
			name:     "student aged 19 on parent insurance",
			facts:    Facts{DateOfBirth: dobForAge(19), IsStudent: true, Insurance: InsuranceParent},
			wantType: model.WallIncomeStudent,
			wantWall: 1_500_000,
		},
		{
			name:     "student aged 22 on parent insurance",
			facts:    Facts{DateOfBirth: dobForAge(22), IsStudent: true, Insurance: InsuranceParent},
			wantType: model.WallIncomeStudent,
			wantWall: 1_500_000,
		},
		{
			name:     "student aged 18 gets general wall",
			facts:    Facts{DateOfBirth: dobForAge(18), IsStudent: true, Insurance: InsuranceParent},
			wantType: model.WallIncomeGeneral,
			wantWall: 1_230_000,
		},
		{
			name:     "student aged 23 gets general wall",
			facts:    Facts{DateOfBirth: dobForAge(23), IsStudent: true, Insurance: InsuranceParent},
			wantType: model.WallIncomeGeneral,
			wantWall: 1_230_000,
		},
		{
			name:     "non-student aged 20",
			facts:    Facts{DateOfBirth: dobForAge(20), Insurance: InsuranceParent},
			wantType: model.WallIncomeGeneral,
			wantWall: 1_230_000,
		},
		{
			name:            "self insured student",
			facts:           Facts{DateOfBirth: dobForAge(20), IsStudent: true, Insurance: InsuranceSelf},
			wantType:        model.WallSocialInsurance,
			wantWall:        1_300_000,
			wantIndependent: true,
		},
		{
			name: "past future insurance date overrides student branch",
			facts: Facts{
				DateOfBirth:             dobForAge(20),
				IsStudent:               true,
				Insurance:               InsuranceParent,
				FutureSelfInsuranceDate: ptr(date(2025, time.April, 1)),
			},
			wantType:        model.WallSocialInsurance,
			wantWall:        1_300_000,
			wantIndependent: true,
		},
		{
			name: "future insurance date on evaluation day",
			facts: Facts{
				DateOfBirth:             dobForAge(30),
				Insurance:               InsuranceParent,
				FutureSelfInsuranceDate: ptr(at),
			},
			wantType:        model.WallSocialInsurance,
			wantWall:        1_300_000,
			wantIndependent: true,
		},
		{
			name: "future insurance date still ahead",
			facts: Facts{
				DateOfBirth:             dobForAge(20),
				IsStudent:               true,
				Insurance:               InsuranceParent,
				FutureSelfInsuranceDate: ptr(date(2025, time.October, 1)),
			},
			wantType: model.WallIncomeStudent,
			wantWall: 1_500_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Decide(tt.facts, at, set)
			assert.Equal(t, tt.wantType, res.CurrentWallType)
			assert.Equal(t, tt.wantWall, res.CurrentWall)
			assert.Equal(t, tt.wantIndependent, res.IsIndependentMode)
			assert.Equal(t, int64(1_100_000), res.ResidentWall)
		})
	}
}

func TestDecide_UsesThresholdSetAmounts(t *testing.T) {
	set := threshold.Builtin(2026)
	def := set[model.KeyIncomeStudent150]
	def.Amount = 1_600_000
	set[def.Key] = def

	res := Decide(Facts{DateOfBirth: date(2006, time.January, 1), IsStudent: true}, date(2026, time.May, 1), set)
	assert.Equal(t, int64(1_600_000), res.CurrentWall)

	res = Decide(Facts{DateOfBirth: date(2006, time.January, 1), IsStudent: true}, date(2026, time.May, 1), model.ThresholdSet{})
	assert.Equal(t, int64(1_500_000), res.CurrentWall, "missing keys fall back to built-in amounts")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "特定扶養控除限度額", model.WallIncomeStudent.DisplayName())
	assert.Equal(t, "社会保険扶養限度額", model.WallSocialInsurance.DisplayName())
	assert.Equal(t, KeyFor(model.WallResident), model.KeyResidentTax110)
}
