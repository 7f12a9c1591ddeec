package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/dpend/internal/physics"
)

// SectionPoint holds the distinct theta2 values seen on the Poincaré
// section for one release angle.
type SectionPoint struct {
	Param  float64
	Values []float64
}

// wrap maps an angle into [-pi, pi].
func wrap(a float64) float64 { return math.Remainder(a, 2*math.Pi) }

// Section sweeps the release angle theta1 = theta2 over [from, to] in n
// releases. After transient steps it records theta2 whenever link 1 swings
// up through the downward vertical, for record steps. Values are wrapped
// and deduplicated to three decimals.
func Section(base physics.Params, from, to float64, n, transient, record int) []SectionPoint {
	if n < 1 {
		return nil
	}
	step := 0.0
	if n > 1 {
		step = (to - from) / float64(n-1)
	}

	results := make([]SectionPoint, 0, n)
	for i := 0; i < n; i++ {
		angle := from + float64(i)*step
		p := base
		p.Theta1, p.Theta2, p.TraceCap = angle, angle, 0
		pend := physics.New(p)

		for j := 0; j < transient; j++ {
			pend.Advance()
		}

		values := make([]float64, 0, 64)
		seen := make(map[int]bool)
		prev := wrap(pend.Theta1)
		for j := 0; j < record; j++ {
			pend.Advance()
			cur := wrap(pend.Theta1)
			if prev < 0 && cur >= 0 && cur-prev < math.Pi && pend.Omega1 > 0 {
				v := wrap(pend.Theta2)
				key := int(math.Round(v * 1000))
				if !seen[key] {
					seen[key] = true
					values = append(values, v)
				}
			}
			prev = cur
		}

		results = append(results, SectionPoint{Param: angle, Values: values})
	}
	return results
}

// SectionToASCII plots section data with one column per release angle.
func SectionToASCII(data []SectionPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v+math.Pi)/(2*math.Pi)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var b strings.Builder
	for _, row := range canvas {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}
