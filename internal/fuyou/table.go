// Package fuyou implements the legacy dependency-bracket decision table.
//
// Brackets are evaluated top to bottom. A bracket's limit is exclusive: an
// income exactly at a limit belongs to the next bracket.
package fuyou

// UserType distinguishes the spouse path from everyone else.
type UserType string

// User types.
const (
	UserStudent UserType = "student"
	UserGeneral UserType = "general"
	UserSpouse  UserType = "spouse"
)

// Category names a dependency bracket.
type Category string

// Categories.
const (
	Category103       Category = "103万円扶養"
	Category106       Category = "106万円（社保）"
	Category130       Category = "130万円（社保外）"
	Category150       Category = "150万円まで"
	CategorySpouse150 Category = "150万円（配偶者）"
	CategoryOutside   Category = "扶養外"
)

// Bracket limits in yen.
const (
	Limit103 int64 = 1_030_000
	Limit106 int64 = 1_060_000
	Limit130 int64 = 1_300_000
	Limit150 int64 = 1_500_000

	// HardCeiling short-circuits to CategoryOutside regardless of the other answers.
	HardCeiling = Limit150
)

// Input is the canonical set of answers the table is evaluated against.
type Input struct {
	UserType          UserType
	EstimatedIncome   int64
	InParentInsurance bool
	WeeklyHoursOver20 bool
	MonthlyOver88k    bool
	IsStudent         bool
}

// Result is the bracket an input falls into.
type Result struct {
	Category Category
	Reason   string
	Risks    []string
	Benefits []string
	Limit    int64
}

type rule struct {
	when    func(Input) bool
	outcome Result
}

var rules = []rule{
	{
		when: func(in Input) bool { return in.EstimatedIncome >= HardCeiling },
		outcome: Result{
			Category: CategoryOutside,
			Limit:    0,
			Reason:   "扶養の対象外です。自分で税金と社会保険料を負担する必要があります。",
			Risks:    []string{"所得税・住民税が発生", "社会保険料の自己負担"},
		},
	},
	{
		when: func(in Input) bool { return in.UserType == UserSpouse },
		outcome: Result{
			Category: CategorySpouse150,
			Limit:    Limit150,
			Reason:   "配偶者特別控除の満額を受けられる範囲です。",
			Risks:    []string{"150万円を超えると配偶者特別控除が段階的に減少"},
			Benefits: []string{"配偶者特別控除が適用"},
		},
	},
	{
		when: func(in Input) bool { return in.EstimatedIncome < Limit103 },
		outcome: Result{
			Category: Category103,
			Limit:    Limit103,
			Reason:   "所得税の扶養控除を受けられます。親の税金負担が軽くなります。",
			Risks:    []string{"103万円を超えると所得税が発生"},
			Benefits: []string{"親の扶養控除が適用される"},
		},
	},
	{
		when: func(in Input) bool {
			return in.EstimatedIncome < Limit106 && in.IsStudent && !in.WeeklyHoursOver20
		},
		outcome: Result{
			Category: Category106,
			Limit:    Limit106,
			Reason:   "親の社会保険の扶養に入れます。健康保険料を払わずに済みます。",
			Risks:    []string{"社会保険の扶養から外れる", "所得税が発生"},
			Benefits: []string{"健康保険料の負担なし"},
		},
	},
	{
		when: func(in Input) bool {
			return in.EstimatedIncome < Limit130 && in.InParentInsurance && !in.MonthlyOver88k
		},
		outcome: Result{
			Category: Category130,
			Limit:    Limit130,
			Reason:   "親の社会保険の扶養に入れますが、106万円ルールの適用外です。",
			Risks:    []string{"130万円を超えると国民健康保険・国民年金の加入が必要"},
			Benefits: []string{"社会保険の扶養を継続"},
		},
	},
	{
		when: func(in Input) bool { return in.EstimatedIncome < Limit150 },
		outcome: Result{
			Category: Category150,
			Limit:    Limit150,
			Reason:   "扶養から外れますが、大きな税負担の急増はありません。",
			Risks:    []string{"親の扶養控除が外れる"},
		},
	},
}

var outside = rules[0].outcome

// Classify returns the first bracket whose predicate matches. Negative
// incomes are treated as zero.
func Classify(in Input) Result {
	in.EstimatedIncome = max(in.EstimatedIncome, 0)
	for _, r := range rules {
		if r.when(in) {
			return r.outcome.clone()
		}
	}
	return outside.clone()
}

func (r Result) clone() Result {
	r.Risks = append([]string(nil), r.Risks...)
	r.Benefits = append([]string(nil), r.Benefits...)
	return r
}
