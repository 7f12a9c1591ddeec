// Package analysis characterizes double-pendulum trajectories.
//
//   - [Divergence]: distance between the distal masses of two pendulums
//   - [LyapunovExponent]: largest exponent via trajectory separation
//   - [EnergySeries] and [EnergyDrift]: diagnostics of integration error
//   - [GeneratePhasePortrait]: (theta, omega) samples for one link
//   - [AmplitudeSpectrum]: one-sided spectrum of an angle series
//   - [Section]: Poincaré section across a sweep of release angles
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(params, 1e-8, 2000)
//	if lambda > 0 {
//	    // nearby releases separate exponentially
//	}
package analysis
