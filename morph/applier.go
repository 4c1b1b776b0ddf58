package morph

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/morphit/core"
)

// Target is an object exposing named float parameters, such as a character
// mesh with shape keys.
type Target interface {
	// Name identifies the target in logs and reports.
	Name() string
	// Parameters lists every parameter the target exposes.
	Parameters() []string
	// SetParameter sets one exposed parameter.
	SetParameter(name string, value float64) error
}

// Report describes the outcome of one Apply call.
type Report struct {
	Target string
	// Applied holds the value each change was set to after capping.
	Applied map[string]float64
	// Missing lists requested names the target does not expose, sorted.
	Missing []string
}

// Applier sets parameter sets on targets.
type Applier struct {
	logger *slog.Logger
}

// Option configures an Applier.
type Option func(*Applier) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Applier) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewApplier creates an applier.
func NewApplier(opts ...Option) (*Applier, error) {
	a := &Applier{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Apply resets every parameter of target to 0 and then sets each change to
// min(1, value). Names the target does not expose are logged and reported
// as missing; they are not errors. Applying the same set twice leaves the
// target in the same state as applying it once.
func (a *Applier) Apply(ctx context.Context, target Target, changes core.ParameterSet) (*Report, error) {
	if target == nil {
		return nil, ErrTargetRequired
	}

	exposed := target.Parameters()
	for _, name := range exposed {
		if err := target.SetParameter(name, 0); err != nil {
			return nil, fmt.Errorf("%w: reset %s on %s: %w", ErrApplyFailed, name, target.Name(), err)
		}
	}

	report := &Report{
		Target:  target.Name(),
		Applied: make(map[string]float64, len(changes)),
	}

	known := make(map[string]struct{}, len(exposed))
	for _, name := range exposed {
		known[name] = struct{}{}
	}

	for _, name := range changes.Names() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if _, ok := known[name]; !ok {
			a.logger.Warn("parameter not found on target", "target", report.Target, "parameter", name)
			report.Missing = append(report.Missing, name)
			continue
		}

		value := min(1.0, changes[name])
		if err := target.SetParameter(name, value); err != nil {
			return report, fmt.Errorf("%w: %s on %s: %w", ErrApplyFailed, name, target.Name(), err)
		}
		report.Applied[name] = value
		a.logger.Debug("applied parameter", "target", report.Target, "parameter", name, "value", value)
	}

	slices.Sort(report.Missing)
	a.logger.Info("parameters applied",
		"target", report.Target,
		"applied", len(report.Applied),
		"missing", len(report.Missing))

	return report, nil
}

// AppliedNames returns the applied parameter names in sorted order.
func (r *Report) AppliedNames() []string {
	return core.ParameterSet(r.Applied).Names()
}
