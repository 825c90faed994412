package threshold

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Veraticus/the-wall-must-hold/internal/common"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

// Origin names the tier a threshold set came from.
type Origin string

// Threshold origins, in fallback order.
const (
	OriginDatabase    Origin = "database"
	OriginEnvFallback Origin = "env_fallback"
	OriginBuiltin     Origin = "fallback"
)

// Source is the primary, queryable threshold table.
type Source interface {
	// ActiveThresholds returns the active thresholds for year, ordered by amount.
	ActiveThresholds(ctx context.Context, year int) ([]model.ThresholdDefinition, error)
}

// Writer applies administrative edits to the threshold table.
type Writer interface {
	// SetThresholdsActive marks exactly keys as active for year and returns
	// the number of rows that were activated.
	SetThresholdsActive(ctx context.Context, year int, keys []string) (int, error)
}

// LoadFunc returns a threshold set for year, or false when this tier has
// nothing usable.
type LoadFunc func(ctx context.Context, year int) (model.ThresholdSet, bool)

// Provider is one tier in the fallback chain.
type Provider struct {
	Load   LoadFunc
	Origin Origin
}

// DefaultSourceTimeout bounds a single primary-source query.
const DefaultSourceTimeout = 5 * time.Second

// FromSource wraps the primary source. Queries are bounded by timeout and
// guarded by a circuit breaker so a dead database answers from the next tier
// without waiting.
func FromSource(src Source, timeout time.Duration) Provider {
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "threshold-source",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Threshold source breaker changed state",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	return Provider{
		Origin: OriginDatabase,
		Load: func(ctx context.Context, year int) (model.ThresholdSet, bool) {
			out, err := breaker.Execute(func() (interface{}, error) {
				return querySource(ctx, src, year, timeout)
			})
			if err != nil {
				slog.Error("Failed to load thresholds from database",
					"year", year,
					"error", err)
				return nil, false
			}

			defs, _ := out.([]model.ThresholdDefinition)
			if len(defs) == 0 {
				slog.Warn("No active thresholds found", "year", year)
				return nil, false
			}

			set := make(model.ThresholdSet, len(defs))
			for _, def := range defs {
				set[def.Key] = def
			}
			slog.Info("Loaded active thresholds from database",
				"year", year,
				"count", len(set))
			return set, true
		},
	}
}

// querySource runs the query on its own goroutine so a source that ignores
// its context still cannot hold the caller past timeout.
func querySource(ctx context.Context, src Source, year int, timeout time.Duration) ([]model.ThresholdDefinition, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		err  error
		defs []model.ThresholdDefinition
	}
	done := make(chan result, 1)

	go func() {
		defs, err := src.ActiveThresholds(ctx, year)
		done <- result{defs: defs, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", common.ErrSourceUnavailable, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrSourceUnavailable, r.err)
		}
		return r.defs, nil
	}
}

// FromEnvJSON returns the override tier fed by a JSON-encoded threshold map,
// e.g. {"INCOME_TAX_103":{"key":"INCOME_TAX_103","kind":"tax","yen":1230000}}.
// The value is read and parsed once, the first time the tier is consulted.
// A malformed value is logged and the tier stays empty.
func FromEnvJSON(lookup func() string) Provider {
	var (
		once   sync.Once
		parsed model.ThresholdSet
	)

	return Provider{
		Origin: OriginEnvFallback,
		Load: func(_ context.Context, year int) (model.ThresholdSet, bool) {
			once.Do(func() {
				raw := lookup()
				if raw == "" {
					return
				}
				set, err := ParseFallback(raw)
				if err != nil {
					slog.Warn("Ignoring threshold fallback configuration", "error", err)
					return
				}
				slog.Info("Loaded threshold fallback from environment", "count", len(set))
				parsed = set
			})

			if len(parsed) == 0 {
				return nil, false
			}

			out := make(model.ThresholdSet, len(parsed))
			for key, def := range parsed {
				def.Year = year
				def.Active = true
				out[key] = def
			}
			return out, true
		},
	}
}

// ParseFallback decodes and validates a JSON threshold map.
func ParseFallback(raw string) (model.ThresholdSet, error) {
	var decoded map[string]model.ThresholdDefinition
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("%w: threshold fallback: %w", common.ErrInvalidConfig, err)
	}
	if len(decoded) == 0 {
		return nil, fmt.Errorf("%w: threshold fallback: %w", common.ErrInvalidConfig, common.ErrEmptyThresholdSet)
	}

	set := make(model.ThresholdSet, len(decoded))
	var errs []error
	for key, def := range decoded {
		if def.Key == "" {
			def.Key = key
		}
		if def.Key != key {
			errs = append(errs, fmt.Errorf("entry %q has mismatched key %q", key, def.Key))
			continue
		}
		if def.Amount < 0 {
			errs = append(errs, fmt.Errorf("entry %q has negative amount %d", key, def.Amount))
			continue
		}
		if def.Kind == "" {
			if builtin, ok := Builtin(0)[key]; ok {
				def.Kind = builtin.Kind
			}
		}
		if !def.Kind.Valid() {
			errs = append(errs, fmt.Errorf("entry %q has unknown kind %q", key, def.Kind))
			continue
		}
		set[key] = def
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: threshold fallback: %w", common.ErrInvalidConfig, errors.Join(errs...))
	}
	return set, nil
}

// FromBuiltin returns the last tier, which always succeeds.
func FromBuiltin() Provider {
	return Provider{
		Origin: OriginBuiltin,
		Load: func(_ context.Context, year int) (model.ThresholdSet, bool) {
			return Builtin(year), true
		},
	}
}
