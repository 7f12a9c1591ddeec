package analysis

import (
	"github.com/san-kum/dpend/internal/physics"
	"gonum.org/v1/gonum/floats"
)

// EnergySeries returns the total energy after each of steps advances.
func EnergySeries(p physics.Params, steps int) []float64 {
	if steps < 1 {
		return nil
	}
	pend := physics.New(p)
	out := make([]float64, steps)
	for i := range out {
		pend.Advance()
		out[i] = pend.Energy()
	}
	return out
}

// EnergyScale is (m1+m2)*g*(l1+l2), the potential energy span of the
// pendulum. Total energy itself can sit at zero, so drift is measured
// against this instead.
func EnergyScale(p physics.Params) float64 {
	return (p.M1 + p.M2) * physics.DefaultGravity * (p.L1 + p.L2)
}

// EnergyDrift is the peak-to-peak spread of a series divided by scale.
// Zero for an empty series or a non-positive scale.
func EnergyDrift(series []float64, scale float64) float64 {
	if len(series) == 0 || !(scale > 0) {
		return 0
	}
	return (floats.Max(series) - floats.Min(series)) / scale
}
