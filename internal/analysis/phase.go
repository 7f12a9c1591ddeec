package analysis

import "github.com/san-kum/dpend/internal/physics"

type PhasePoint struct {
	Theta, Omega float64
}

// PhasePortrait holds (theta, omega) samples of one link.
type PhasePortrait struct {
	Link   int
	Points []PhasePoint
}

// GeneratePhasePortrait records link 1 or 2 over steps advances. Any other
// link number, or negative steps, returns nil.
func GeneratePhasePortrait(p physics.Params, link, steps int) *PhasePortrait {
	if (link != 1 && link != 2) || steps < 0 {
		return nil
	}

	pend := physics.New(p)
	portrait := &PhasePortrait{
		Link:   link,
		Points: make([]PhasePoint, 0, steps),
	}

	for i := 0; i < steps; i++ {
		pend.Advance()
		pt := PhasePoint{Theta: pend.Theta1, Omega: pend.Omega1}
		if link == 2 {
			pt = PhasePoint{Theta: pend.Theta2, Omega: pend.Omega2}
		}
		portrait.Points = append(portrait.Points, pt)
	}

	return portrait
}
