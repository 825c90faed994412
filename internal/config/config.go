package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/the-wall-must-hold/internal/common"
	"github.com/Veraticus/the-wall-must-hold/internal/deposit"
	"github.com/Veraticus/the-wall-must-hold/internal/threshold"
	"github.com/Veraticus/the-wall-must-hold/internal/wall"
)

// FallbackEnv is the raw environment variable holding the fallback threshold JSON.
const FallbackEnv = "THRESHOLD_FALLBACK"

// DefaultDatabasePath is used when database.path is unset.
const DefaultDatabasePath = "$HOME/.local/share/wall/wall.db"

const dateLayout = "2006-01-02"

// Config is the resolved application configuration.
type Config struct {
	DatabasePath   string
	FallbackJSON   string
	LogLevel       string
	LogFormat      string
	Profile        Profile
	CacheTTL       time.Duration
	SourceTimeout  time.Duration
	HistoryTimeout time.Duration
	LookbackMonths int
}

// Profile holds the facts about the user that select the governing wall.
type Profile struct {
	DateOfBirth             time.Time
	FutureSelfInsuranceDate *time.Time
	UserID                  string
	Insurance               wall.InsuranceStatus
	IsStudent               bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("thresholds.cache_ttl", threshold.DefaultTTL)
	v.SetDefault("thresholds.source_timeout", threshold.DefaultSourceTimeout)
	v.SetDefault("classifier.history_timeout", deposit.DefaultHistoryTimeout)
	v.SetDefault("classifier.lookback_months", deposit.DefaultLookbackMonths)
	v.SetDefault("user.id", "default")
	v.SetDefault("user.insurance", string(wall.InsuranceParent))
	v.SetDefault("user.is_student", false)

	_ = v.BindEnv("thresholds.fallback", FallbackEnv)
}

// Load reads the configuration from v. Defaults are applied first.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		DatabasePath:   ExpandPath(v.GetString("database.path")),
		FallbackJSON:   v.GetString("thresholds.fallback"),
		LogLevel:       v.GetString("logging.level"),
		LogFormat:      v.GetString("logging.format"),
		CacheTTL:       v.GetDuration("thresholds.cache_ttl"),
		SourceTimeout:  v.GetDuration("thresholds.source_timeout"),
		HistoryTimeout: v.GetDuration("classifier.history_timeout"),
		LookbackMonths: v.GetInt("classifier.lookback_months"),
	}

	profile, err := loadProfile(v)
	if err != nil {
		return nil, err
	}
	cfg.Profile = profile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadProfile(v *viper.Viper) (Profile, error) {
	p := Profile{
		UserID:    strings.TrimSpace(v.GetString("user.id")),
		Insurance: wall.InsuranceStatus(strings.ToLower(v.GetString("user.insurance"))),
		IsStudent: v.GetBool("user.is_student"),
	}

	if raw := v.GetString("user.date_of_birth"); raw != "" {
		dob, err := time.Parse(dateLayout, raw)
		if err != nil {
			return p, fmt.Errorf("%w: user.date_of_birth %q: %w", common.ErrInvalidConfig, raw, err)
		}
		p.DateOfBirth = dob
	}
	if raw := v.GetString("user.future_self_insurance_date"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return p, fmt.Errorf("%w: user.future_self_insurance_date %q: %w", common.ErrInvalidConfig, raw, err)
		}
		p.FutureSelfInsuranceDate = &d
	}
	return p, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database.path is empty"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("thresholds.cache_ttl must be positive, got %s", c.CacheTTL))
	}
	if c.SourceTimeout <= 0 {
		errs = append(errs, fmt.Errorf("thresholds.source_timeout must be positive, got %s", c.SourceTimeout))
	}
	if c.HistoryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("classifier.history_timeout must be positive, got %s", c.HistoryTimeout))
	}
	if c.LookbackMonths <= 0 {
		errs = append(errs, fmt.Errorf("classifier.lookback_months must be positive, got %d", c.LookbackMonths))
	}
	if c.Profile.UserID == "" {
		errs = append(errs, errors.New("user.id is empty"))
	}
	if c.Profile.Insurance != wall.InsuranceParent && c.Profile.Insurance != wall.InsuranceSelf {
		errs = append(errs, fmt.Errorf("user.insurance must be %q or %q, got %q",
			wall.InsuranceParent, wall.InsuranceSelf, c.Profile.Insurance))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Facts converts the profile into selector input.
func (p Profile) Facts() wall.Facts {
	return wall.Facts{
		DateOfBirth:             p.DateOfBirth,
		FutureSelfInsuranceDate: p.FutureSelfInsuranceDate,
		Insurance:               p.Insurance,
		IsStudent:               p.IsStudent,
	}
}
