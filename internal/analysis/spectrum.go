package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/dpend/internal/physics"
)

// Spectrum is the one-sided amplitude spectrum of a sampled series.
type Spectrum struct {
	Freqs     []float64 // Hz
	Amplitude []float64
}

// AmplitudeSpectrum transforms series sampled every dt seconds. The mean is
// removed first so the zero bin does not dominate.
func AmplitudeSpectrum(series []float64, dt float64) Spectrum {
	n := len(series)
	if n < 2 || dt <= 0 {
		return Spectrum{}
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	centred := make([]float64, n)
	for i, v := range series {
		centred[i] = v - mean
	}

	coeffs := fft.FFTReal(centred)
	half := n / 2
	s := Spectrum{Freqs: make([]float64, half), Amplitude: make([]float64, half)}
	for k := 0; k < half; k++ {
		s.Freqs[k] = float64(k) / (float64(n) * dt)
		s.Amplitude[k] = cmplx.Abs(coeffs[k])
	}
	return s
}

// Dominant returns the frequency of the strongest non-zero bin.
func (s Spectrum) Dominant() float64 {
	best, f := 0.0, 0.0
	for k := 1; k < len(s.Amplitude); k++ {
		if s.Amplitude[k] > best {
			best, f = s.Amplitude[k], s.Freqs[k]
		}
	}
	return f
}

// AngleSeries runs a pendulum for steps steps and samples theta1 (link 1)
// or theta2 (link 2) after each one. Any other link, or steps < 1, returns
// nil.
func AngleSeries(p physics.Params, link, steps int) []float64 {
	if (link != 1 && link != 2) || steps < 1 {
		return nil
	}
	pend := physics.New(p)
	out := make([]float64, steps)
	for i := range out {
		pend.Advance()
		if link == 2 {
			out[i] = pend.Theta2
		} else {
			out[i] = pend.Theta1
		}
	}
	return out
}
