package deposit

import (
	"math"
	"sort"
	"time"

	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

// Monthly payroll cadence, in days, inclusive.
const (
	MinRegularIntervalDays = 27.0
	MaxRegularIntervalDays = 33.0
)

// Signals summarise an employer's deposit history.
type Signals struct {
	MeanIntervalDays       float64
	CoefficientOfVariation float64
	Samples                int
	Regular                bool
}

// NeutralSignals is used when there is no usable history.
func NeutralSignals() Signals {
	return Signals{CoefficientOfVariation: 1}
}

// Analyze derives cadence and amount stability from prior deposits. Fewer
// than two deposits yields NeutralSignals.
func Analyze(history []model.Deposit) Signals {
	if len(history) < 2 {
		s := NeutralSignals()
		s.Samples = len(history)
		return s
	}

	dates := make([]time.Time, len(history))
	var sum float64
	for i, d := range history {
		dates[i] = d.Date
		sum += float64(d.Amount)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var intervals float64
	for i := 1; i < len(dates); i++ {
		intervals += dates[i].Sub(dates[i-1]).Hours() / 24
	}
	meanInterval := intervals / float64(len(dates)-1)

	return Signals{
		Samples:                len(history),
		MeanIntervalDays:       meanInterval,
		Regular:                meanInterval >= MinRegularIntervalDays && meanInterval <= MaxRegularIntervalDays,
		CoefficientOfVariation: coefficientOfVariation(history, sum/float64(len(history))),
	}
}

// coefficientOfVariation is the population standard deviation over the
// mean. A non-positive mean has no meaningful spread and reports 1.
func coefficientOfVariation(history []model.Deposit, mean float64) float64 {
	if mean <= 0 {
		return 1
	}
	var variance float64
	for _, d := range history {
		diff := float64(d.Amount) - mean
		variance += diff * diff
	}
	variance /= float64(len(history))
	return math.Sqrt(variance) / mean
}
