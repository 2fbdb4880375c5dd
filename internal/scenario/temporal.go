package scenario

import (
	"fmt"
	"time"

	"github.com/yigit/fneseed/internal/pkg/apperrors"
)

// Season is a coarse bucket of the school calendar
type Season struct {
	Name   string  `yaml:"name"`
	Months []int   `yaml:"months"`
	Factor float64 `yaml:"factor"`
}

// Temporal holds the multiplicative intensity tables
type Temporal struct {
	Location string    `yaml:"location"`
	Baseline float64   `yaml:"baseline"`
	Hourly   []float64 `yaml:"hourly"` // index 0-23
	Weekly   []float64 `yaml:"weekly"` // index time.Weekday, Sunday first
	Seasons  []Season  `yaml:"seasons"`

	loc *time.Location
}

// Validate checks table sizes and that every month falls in a season
func (t *Temporal) Validate() error {
	if len(t.Hourly) != 24 {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("temporal hourly table has %d entries, want 24", len(t.Hourly)))
	}
	if len(t.Weekly) != 7 {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("temporal weekly table has %d entries, want 7", len(t.Weekly)))
	}
	covered := map[int]bool{}
	for _, s := range t.Seasons {
		for _, m := range s.Months {
			if m < 1 || m > 12 {
				return apperrors.NewInvalidConfigError(fmt.Sprintf("season %s has invalid month %d", s.Name, m))
			}
			covered[m] = true
		}
	}
	if len(covered) != 12 {
		return apperrors.NewInvalidConfigError("temporal seasons do not cover all twelve months")
	}
	return nil
}

func (t *Temporal) location() *time.Location {
	if t.loc != nil {
		return t.loc
	}
	t.loc = time.UTC
	if t.Location != "" {
		if loc, err := time.LoadLocation(t.Location); err == nil {
			t.loc = loc
		}
	}
	return t.loc
}

// SeasonFactor returns the factor of the first season containing month
func (t *Temporal) SeasonFactor(month time.Month) float64 {
	for _, s := range t.Seasons {
		for _, m := range s.Months {
			if time.Month(m) == month {
				return s.Factor
			}
		}
	}
	return 1
}

// Intensity is baseline × hour × weekday × season at ts in the configured
// location, clamped to [0,1].
func (t *Temporal) Intensity(ts time.Time) float64 {
	local := ts.In(t.location())
	v := t.Baseline * t.Hourly[local.Hour()] * t.Weekly[int(local.Weekday())] * t.SeasonFactor(local.Month())
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
