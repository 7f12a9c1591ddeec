package analysis

import (
	"math"

	"github.com/san-kum/dpend/internal/physics"
	"gonum.org/v1/gonum/floats"
)

// Divergence advances a and b side by side and returns, per step, the
// distance between their distal masses.
func Divergence(a, b physics.Params, steps int) []float64 {
	pa, pb := physics.New(a), physics.New(b)
	out := make([]float64, steps)
	for i := range out {
		pa.Advance()
		pb.Advance()
		_, ma := pa.Coordinates()
		_, mb := pb.Coordinates()
		out[i] = floats.Distance([]float64{ma.X, ma.Y}, []float64{mb.X, mb.Y}, 2)
	}
	return out
}

// LyapunovExponent estimates the largest Lyapunov exponent by perturbing
// theta2 by delta and pulling the separation back to delta after every
// step (Benettin renormalization).
func LyapunovExponent(p physics.Params, delta float64, steps int) float64 {
	if delta <= 0 || steps <= 0 {
		return 0
	}

	perturbed := p
	perturbed.Theta2 += delta

	x, xp := physics.New(p), physics.New(perturbed)
	sumLog := 0.0

	for i := 0; i < steps; i++ {
		x.Advance()
		xp.Advance()

		sep := floats.Distance(stateVec(x), stateVec(xp), 2)
		if !(sep > 0) || math.IsInf(sep, 0) {
			continue
		}
		sumLog += math.Log(sep / delta)

		scale := delta / sep
		xp.Theta1 = x.Theta1 + (xp.Theta1-x.Theta1)*scale
		xp.Theta2 = x.Theta2 + (xp.Theta2-x.Theta2)*scale
		xp.Omega1 = x.Omega1 + (xp.Omega1-x.Omega1)*scale
		xp.Omega2 = x.Omega2 + (xp.Omega2-x.Omega2)*scale
	}

	return sumLog / (float64(steps) * x.Dt)
}

func stateVec(p *physics.Pendulum) []float64 {
	return []float64{p.Theta1, p.Theta2, p.Omega1, p.Omega2}
}

// LogSeparation maps distances to log10, flooring zeros so the result is
// plottable.
func LogSeparation(dist []float64) []float64 {
	out := make([]float64, len(dist))
	for i, d := range dist {
		out[i] = math.Log10(math.Max(d, 1e-16))
	}
	return out
}
