// Package metrics derives dashboard figures from entity snapshots.
//
// Every function here is pure: inputs are read, never modified, and results
// are freshly allocated. Wall-clock time is always passed in. Division by an
// empty denominator yields zero, records that reference missing parents are
// left out of their parent's totals, and malformed input (negative hours,
// unknown views) is reported as an error wrapping ErrInvalidInput.
package metrics

import (
	"errors"

	"github.com/zulandar/agiletrack/internal/config"
)

const (
	// DefaultHoursPerPoint converts completed hours into story points.
	DefaultHoursPerPoint = 8.0
	// DefaultSeriesDays is how many distinct dates the time series keeps.
	DefaultSeriesDays = 7
	// DefaultVelocityWindow is how many completed sprints the velocity chart shows.
	DefaultVelocityWindow = 6
)

// Health thresholds on the mean accepted/committed ratio.
const (
	HealthyThreshold = 0.90
	AtRiskThreshold  = 0.75
)

// ErrInvalidInput is wrapped by errors caused by malformed entity data.
var ErrInvalidInput = errors.New("invalid input")

// Engine carries the tunables used by the derivations.
type Engine struct {
	HoursPerPoint  float64
	SeriesDays     int
	VelocityWindow int
}

// Default returns an Engine with the default tunables.
func Default() *Engine {
	return &Engine{
		HoursPerPoint:  DefaultHoursPerPoint,
		SeriesDays:     DefaultSeriesDays,
		VelocityWindow: DefaultVelocityWindow,
	}
}

// New returns an Engine configured from cfg. Zero values fall back to the
// defaults.
func New(cfg config.MetricsConfig) *Engine {
	e := Default()
	if cfg.HoursPerPoint > 0 {
		e.HoursPerPoint = cfg.HoursPerPoint
	}
	if cfg.TimeSeriesDays > 0 {
		e.SeriesDays = cfg.TimeSeriesDays
	}
	if cfg.VelocityWindow > 0 {
		e.VelocityWindow = cfg.VelocityWindow
	}
	return e
}

func (e *Engine) hoursPerPoint() float64 {
	if e == nil || e.HoursPerPoint <= 0 {
		return DefaultHoursPerPoint
	}
	return e.HoursPerPoint
}

func (e *Engine) seriesDays() int {
	if e == nil || e.SeriesDays <= 0 {
		return DefaultSeriesDays
	}
	return e.SeriesDays
}

func (e *Engine) velocityWindow() int {
	if e == nil || e.VelocityWindow <= 0 {
		return DefaultVelocityWindow
	}
	return e.VelocityWindow
}

func sameID(ref *uint, id uint) bool {
	return ref != nil && *ref == id
}
