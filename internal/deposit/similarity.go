package deposit

import (
	"strings"

	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

// Match scores. Containing the suffix-stripped name must still clear
// StrongMatchScore, so CleanedNameScore sits between it and ExactNameScore.
const (
	ExactNameScore    = 0.9
	CleanedNameScore  = 0.85
	MinEmployerScore  = 0.6
	StrongMatchScore  = 0.8
	PartialMatchScore = 0.7
)

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity is 1 minus the edit distance over the longer length. Two empty
// strings are identical.
func Similarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(maxLen)
}

// EmployerScore rates how well a deposit description names an employer.
func EmployerScore(description, employerName string) float64 {
	desc := compact(Normalize(description))
	name := Normalize(employerName)
	raw := compact(name)
	cleaned := compact(StripLegalSuffixes(name))

	if raw != "" && strings.Contains(desc, raw) {
		return ExactNameScore
	}
	if cleaned != "" && strings.Contains(desc, cleaned) {
		return CleanedNameScore
	}
	if cleaned == "" {
		cleaned = raw
	}
	return Similarity(desc, cleaned)
}

// MatchEmployer returns the best-scoring employer whose score exceeds
// MinEmployerScore. Ties keep the earlier employer.
func MatchEmployer(description string, employers []model.Employer) (model.Employer, float64, bool) {
	var (
		best      model.Employer
		bestScore float64
		found     bool
	)
	for _, emp := range employers {
		score := EmployerScore(description, emp.Name)
		if score > MinEmployerScore && (!found || score > bestScore) {
			best, bestScore, found = emp, score, true
		}
	}
	return best, bestScore, found
}
