// Package physics integrates the planar double pendulum.
//
// A [Pendulum] owns its parameters, its dynamical state and an optional
// [Trace] of the distal mass. A renderer drives it with three calls per
// frame:
//
//	p := physics.New(physics.DefaultParams())
//	p.Advance()
//	m1, m2 := p.Coordinates()
//	xs, ys := p.RecordTrace(m2.X, m2.Y)
//
// # Numerics
//
// Each [Pendulum.Advance] is a fixed-size semi-implicit Euler step of
// [Dt]. Angles are never wrapped. Degenerate configurations that zero the
// denominator of the equations of motion are not detected; the resulting
// NaN or Inf values propagate and can be observed with [Pendulum.Finite].
//
// # Thread Safety
//
// A Pendulum is NOT thread-safe. Distinct pendulums share no memory and can
// be advanced concurrently.
package physics
