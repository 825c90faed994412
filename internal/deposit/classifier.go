// Package deposit classifies incoming bank deposits as salary or other
// income by matching them against the user's employers and payroll history.
package deposit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

// Confidence assigned to each outcome.
const (
	ConfidenceNonTaxable   = 0.9
	ConfidenceSalary       = 0.9
	ConfidencePartialMatch = 0.6
	ConfidenceKeyword      = 0.5
	ConfidenceDefault      = 0.3
)

// Defaults for the history lookup.
const (
	DefaultHistoryTimeout = 5 * time.Second
	DefaultLookbackMonths = 6
)

// HistoryQuery selects prior salary deposits. EmployerID may be empty to
// search all of the user's salary deposits. From is inclusive, To exclusive.
type HistoryQuery struct {
	From       time.Time
	To         time.Time
	UserID     string
	EmployerID string
}

// History returns deposits previously classified as salary.
type History interface {
	SalaryDeposits(ctx context.Context, q HistoryQuery) ([]model.Deposit, error)
}

// Input is a single deposit to classify.
type Input struct {
	Date        time.Time
	UserID      string
	Description string
	Employers   []model.Employer
	Amount      int64
}

// Classifier attributes deposits to employers.
type Classifier struct {
	history        History
	now            func() time.Time
	timeout        time.Duration
	lookbackMonths int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithHistoryTimeout bounds the history lookup.
func WithHistoryTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLookbackMonths sets how far back payroll history is read.
func WithLookbackMonths(months int) Option {
	return func(c *Classifier) {
		if months > 0 {
			c.lookbackMonths = months
		}
	}
}

// WithClock injects the time source used for undated deposits.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClassifier creates a classifier. A nil history disables pattern signals.
func NewClassifier(history History, opts ...Option) *Classifier {
	c := &Classifier{
		history:        history,
		now:            time.Now,
		timeout:        DefaultHistoryTimeout,
		lookbackMonths: DefaultLookbackMonths,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify decides whether a deposit is salary. It never fails; a broken or
// slow history lookup only removes the pattern signals.
func (c *Classifier) Classify(ctx context.Context, in Input) model.ClassificationResult {
	if IsNonTaxable(in.Description) {
		return model.ClassificationResult{
			Type:       model.DepositOther,
			Confidence: ConfidenceNonTaxable,
			IsTaxable:  false,
			Reason:     "Non-taxable allowance detected",
		}
	}

	if emp, score, ok := MatchEmployer(in.Description, in.Employers); ok {
		signals := c.signals(ctx, in, emp.ID)

		slog.Debug("Matched deposit to employer",
			"employer_id", emp.ID,
			"similarity", score,
			"regular", signals.Regular,
			"cv", signals.CoefficientOfVariation,
			"samples", signals.Samples)

		if score > StrongMatchScore && signals.Regular && signals.CoefficientOfVariation < 0.2 {
			return model.ClassificationResult{
				Type:       model.DepositSalary,
				EmployerID: emp.ID,
				Confidence: ConfidenceSalary,
				IsTaxable:  true,
				Reason:     "High company match + regular pattern + low variation",
			}
		}

		if score > PartialMatchScore || (signals.Regular && signals.CoefficientOfVariation < 0.3) {
			return model.ClassificationResult{
				Type:       model.DepositNeedsReview,
				EmployerID: emp.ID,
				Confidence: ConfidencePartialMatch,
				IsTaxable:  true,
				Reason:     "Partial match - requires manual verification",
			}
		}
	}

	if HasSalaryKeyword(in.Description) {
		return model.ClassificationResult{
			Type:       model.DepositNeedsReview,
			Confidence: ConfidenceKeyword,
			IsTaxable:  true,
			Reason:     "Contains salary keywords but no job match",
		}
	}

	return model.ClassificationResult{
		Type:       model.DepositOther,
		Confidence: ConfidenceDefault,
		IsTaxable:  true,
		Reason:     "No clear salary indicators found",
	}
}

// signals loads the payroll history that precedes the deposit.
func (c *Classifier) signals(ctx context.Context, in Input, employerID string) Signals {
	if c.history == nil {
		return NeutralSignals()
	}

	to := in.Date
	if to.IsZero() {
		to = c.now()
	}
	q := HistoryQuery{
		UserID:     in.UserID,
		EmployerID: employerID,
		From:       to.AddDate(0, -c.lookbackMonths, 0),
		To:         to,
	}

	history, err := c.lookup(ctx, q)
	if err != nil {
		slog.Warn("Deposit history unavailable, classifying without pattern signals",
			"user_id", in.UserID,
			"employer_id", employerID,
			"error", err)
		return NeutralSignals()
	}
	return Analyze(history)
}

func (c *Classifier) lookup(ctx context.Context, q HistoryQuery) ([]model.Deposit, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		err      error
		deposits []model.Deposit
	}
	done := make(chan result, 1)

	go func() {
		deposits, err := c.history.SalaryDeposits(ctx, q)
		done <- result{deposits: deposits, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("history lookup: %w", ctx.Err())
	case r := <-done:
		return r.deposits, r.err
	}
}
