// Package model defines the core domain models used throughout the application.
package model

// ThresholdKind separates income-tax walls from social-insurance walls.
type ThresholdKind string

// Threshold kinds.
const (
	KindTax    ThresholdKind = "tax"
	KindSocial ThresholdKind = "social"
)

// Valid reports whether the kind is one of the known kinds.
func (k ThresholdKind) Valid() bool {
	return k == KindTax || k == KindSocial
}

// Known threshold keys. The first four are the long-standing walls; the
// remaining ones are the walls introduced by the 2025 tax reform.
const (
	KeyIncomeTax103       = "INCOME_TAX_103"
	KeySocialInsurance106 = "SOCIAL_INSURANCE_106"
	KeySocialInsurance130 = "SOCIAL_INSURANCE_130"
	KeySpouseDeduction150 = "SPOUSE_DEDUCTION_150"
	KeyResidentTax110     = "RESIDENT_TAX_110"
	KeyIncomeGeneral123   = "INCOME_TAX_GENERAL_123"
	KeyIncomeStudent150   = "INCOME_TAX_STUDENT_150"
)

// KnownThresholdKeys lists every key a usable ThresholdSet must contain.
var KnownThresholdKeys = []string{
	KeyIncomeTax103,
	KeySocialInsurance106,
	KeySocialInsurance130,
	KeySpouseDeduction150,
	KeyResidentTax110,
	KeyIncomeGeneral123,
	KeyIncomeStudent150,
}

// ThresholdDefinition is a single named income wall for one year.
type ThresholdDefinition struct {
	Key         string        `json:"key"`
	Kind        ThresholdKind `json:"kind"`
	Label       string        `json:"label"`
	Description string        `json:"description,omitempty"`
	Amount      int64         `json:"yen"`
	Year        int           `json:"year,omitempty"`
	Active      bool          `json:"active,omitempty"`
}

// ThresholdSet maps threshold keys to their definitions for a single year.
type ThresholdSet map[string]ThresholdDefinition

// Clone returns a copy that can be modified without affecting the receiver.
func (s ThresholdSet) Clone() ThresholdSet {
	out := make(ThresholdSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Amount returns the amount for key, or fallback when the key is absent.
func (s ThresholdSet) Amount(key string, fallback int64) int64 {
	if def, ok := s[key]; ok {
		return def.Amount
	}
	return fallback
}

// Missing returns the known keys that are not present in the set.
func (s ThresholdSet) Missing() []string {
	var missing []string
	for _, key := range KnownThresholdKeys {
		if _, ok := s[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// WallType tags which wall governs a person right now.
type WallType string

// Wall types.
const (
	WallResident        WallType = "resident"
	WallIncomeGeneral   WallType = "incomeGeneral"
	WallIncomeStudent   WallType = "incomeStudent"
	WallSocialInsurance WallType = "socialInsurance"
)

// DisplayName returns the Japanese label shown next to the wall amount.
func (w WallType) DisplayName() string {
	switch w {
	case WallResident:
		return "住民税非課税限度額"
	case WallIncomeGeneral:
		return "所得税扶養控除限度額"
	case WallIncomeStudent:
		return "特定扶養控除限度額"
	case WallSocialInsurance:
		return "社会保険扶養限度額"
	default:
		return string(w)
	}
}

// Resolution is the outcome of selecting the wall that applies to a person.
type Resolution struct {
	CurrentWallType   WallType
	CurrentWall       int64
	ResidentWall      int64
	IsIndependentMode bool
}
