package fuyou

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseStudent(income int64) Input {
	return Input{
		UserType:          UserStudent,
		EstimatedIncome:   income,
		InParentInsurance: true,
		IsStudent:         true,
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		want   Category
		income int64
		limit  int64
	}{
		{income: 0, want: Category103, limit: Limit103},
		{income: 1_029_999, want: Category103, limit: Limit103},
		{income: 1_030_000, want: Category106, limit: Limit106},
		{income: 1_059_999, want: Category106, limit: Limit106},
		{income: 1_060_000, want: Category130, limit: Limit130},
		{income: 1_299_999, want: Category130, limit: Limit130},
		{income: 1_300_000, want: Category150, limit: Limit150},
		{income: 1_499_999, want: Category150, limit: Limit150},
		{income: 1_500_000, want: CategoryOutside, limit: 0},
		{income: 15_000_000, want: CategoryOutside, limit: 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			got := Classify(baseStudent(tt.income))
			assert.Equal(t, tt.want, got.Category, "income %d", tt.income)
			assert.Equal(t, tt.limit, got.Limit)
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestClassify_Conditions(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Category
	}{
		{
			name: "106 needs short hours",
			in: Input{
				EstimatedIncome:   1_040_000,
				IsStudent:         true,
				WeeklyHoursOver20: true,
				InParentInsurance: true,
			},
			want: Category130,
		},
		{
			name: "106 needs student",
			in:   Input{EstimatedIncome: 1_040_000, InParentInsurance: true, UserType: UserGeneral},
			want: Category130,
		},
		{
			name: "130 needs parent insurance",
			in:   Input{EstimatedIncome: 1_200_000, IsStudent: true},
			want: Category150,
		},
		{
			name: "130 excluded by monthly 88k",
			in:   Input{EstimatedIncome: 1_200_000, InParentInsurance: true, MonthlyOver88k: true},
			want: Category150,
		},
		{
			name: "spouse path before general ladder",
			in:   Input{UserType: UserSpouse, EstimatedIncome: 500_000, InParentInsurance: true},
			want: CategorySpouse150,
		},
		{
			name: "spouse above the ceiling",
			in:   Input{UserType: UserSpouse, EstimatedIncome: 1_600_000},
			want: CategoryOutside,
		},
		{
			name: "negative income clamps to zero",
			in:   Input{EstimatedIncome: -1_000_000},
			want: Category103,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in).Category)
		})
	}
}

func TestClassify_ResultsAreIndependent(t *testing.T) {
	first := Classify(baseStudent(100))
	first.Risks[0] = "mutated"

	second := Classify(baseStudent(100))
	assert.Equal(t, "103万円を超えると所得税が発生", second.Risks[0])
	assert.Contains(t, second.Benefits, "親の扶養控除が適用される")
}
