package threshold

import "github.com/Veraticus/the-wall-must-hold/internal/model"

var builtinDefinitions = []model.ThresholdDefinition{
	{
		Key:         model.KeyIncomeTax103,
		Kind:        model.KindTax,
		Amount:      1_030_000,
		Label:       "103万円の壁（所得税扶養控除）",
		Description: "所得税の扶養控除を受けられます。親の税金負担が軽くなります。",
	},
	{
		Key:         model.KeySocialInsurance106,
		Kind:        model.KindSocial,
		Amount:      1_060_000,
		Label:       "106万円の壁（社会保険）",
		Description: "大企業勤務の場合の社会保険の扶養上限です。",
	},
	{
		Key:         model.KeySocialInsurance130,
		Kind:        model.KindSocial,
		Amount:      1_300_000,
		Label:       "130万円の壁（社会保険）",
		Description: "一般的な社会保険の扶養上限です。",
	},
	{
		Key:         model.KeySpouseDeduction150,
		Kind:        model.KindTax,
		Amount:      1_500_000,
		Label:       "150万円の壁（配偶者特別控除）",
		Description: "配偶者特別控除の上限です。",
	},
	{
		Key:         model.KeyResidentTax110,
		Kind:        model.KindTax,
		Amount:      1_100_000,
		Label:       "110万円の壁（住民税）",
		Description: "住民税が非課税となる上限です。",
	},
	{
		Key:         model.KeyIncomeGeneral123,
		Kind:        model.KindTax,
		Amount:      1_230_000,
		Label:       "123万円の壁（所得税）",
		Description: "2025年改正後の所得税扶養控除の上限です。",
	},
	{
		Key:         model.KeyIncomeStudent150,
		Kind:        model.KindTax,
		Amount:      1_500_000,
		Label:       "150万円の壁（特定扶養控除）",
		Description: "19〜22歳の学生に適用される特定扶養控除の上限です。",
	},
}

// Builtin returns the compiled-in thresholds stamped with year.
func Builtin(year int) model.ThresholdSet {
	set := make(model.ThresholdSet, len(builtinDefinitions))
	for _, def := range builtinDefinitions {
		def.Year = year
		def.Active = true
		set[def.Key] = def
	}
	return set
}

// BuiltinAmount returns the compiled-in amount for key, or 0 if unknown.
func BuiltinAmount(key string) int64 {
	for _, def := range builtinDefinitions {
		if def.Key == key {
			return def.Amount
		}
	}
	return 0
}

// complete fills in any known key missing from set using the built-ins.
func complete(set model.ThresholdSet, year int) model.ThresholdSet {
	missing := set.Missing()
	if len(missing) == 0 {
		return set
	}
	defaults := Builtin(year)
	for _, key := range missing {
		set[key] = defaults[key]
	}
	return set
}
