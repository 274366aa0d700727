package experiment

import (
	"fmt"
	"time"

	"github.com/Sobolyok/risk-project/pkg/config"
	"github.com/Sobolyok/risk-project/pkg/feature"
	"github.com/Sobolyok/risk-project/pkg/regress"
)

// Settings holds everything a run needs besides the price series
type Settings struct {
	Features feature.Config
	Percent  float64
	Start    time.Time // zero keeps all rows
	Boundary time.Time
	End      time.Time // zero runs the test set to the last row
	Models   []regress.ModelSpec
}

// DefaultSettings returns the daily experiment: p=q=50, ma=10, 2% drop,
// train 2019-01-01..2019-09-30, test October 2019.
func DefaultSettings() Settings {
	return Settings{
		Features: feature.DefaultConfig(),
		Percent:  0.02,
		Start:    time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		Boundary: time.Date(2019, 10, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2019, 11, 1, 0, 0, 0, 0, time.UTC),
		Models:   regress.DefaultModels(),
	}
}

// SettingsFromConfig converts a validated configuration
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	start, boundary, end, err := cfg.Split.Dates()
	if err != nil {
		return Settings{}, err
	}
	s := Settings{
		Features: cfg.FeatureConfig(),
		Percent:  cfg.Target.Percent,
		Start:    start,
		Boundary: boundary,
		End:      end,
		Models:   cfg.Models,
	}
	return s, s.Validate()
}

// Validate checks the settings before any data is touched
func (s Settings) Validate() error {
	if err := s.Features.Validate(); err != nil {
		return err
	}
	if s.Percent < 0 || s.Percent >= 1 {
		return fmt.Errorf("percent must be in [0, 1), got %v", s.Percent)
	}
	if s.Boundary.IsZero() {
		return fmt.Errorf("split boundary is required")
	}
	if !s.Start.IsZero() && !s.Boundary.After(s.Start) {
		return fmt.Errorf("boundary must be after start")
	}
	if len(s.Models) == 0 {
		return fmt.Errorf("no models configured")
	}
	return nil
}
