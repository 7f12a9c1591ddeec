package physics

import "math"

const (
	DefaultLength   = 1.0
	DefaultMass     = 1.0
	DefaultGravity  = 9.81
	DefaultTraceCap = 100

	// Dt is the fixed integration step, in seconds.
	Dt = 0.01
)

// Point is a Cartesian position relative to the pivot.
type Point struct {
	X, Y float64
}

// Params fixes a pendulum at construction time.
type Params struct {
	L1, L2   float64
	M1, M2   float64
	Theta1   float64
	Theta2   float64
	TraceCap int
}

// DefaultParams returns unit links and masses released horizontally.
func DefaultParams() Params {
	return Params{
		L1: DefaultLength, L2: DefaultLength,
		M1: DefaultMass, M2: DefaultMass,
		Theta1: math.Pi / 2, Theta2: math.Pi / 2,
		TraceCap: DefaultTraceCap,
	}
}

// Pendulum is a planar two-link, two-mass pendulum. Both angles are
// measured from the downward vertical through the pivot.
//
// A Pendulum is not safe for concurrent use. Distinct instances share no
// state and may be advanced from different goroutines.
type Pendulum struct {
	L1, L2  float64
	M1, M2  float64
	Gravity float64
	Dt      float64

	Theta1, Theta2 float64
	Omega1, Omega2 float64

	trace *Trace
}

func New(p Params) *Pendulum {
	return &Pendulum{
		L1: p.L1, L2: p.L2,
		M1: p.M1, M2: p.M2,
		Gravity: DefaultGravity,
		Dt:      Dt,
		Theta1:  p.Theta1,
		Theta2:  p.Theta2,
		trace:   NewTrace(p.TraceCap),
	}
}

// Accelerations evaluates the closed-form angular accelerations for the
// current state. The denominator is not guarded.
func (p *Pendulum) Accelerations() (alpha1, alpha2 float64) {
	m1, m2, l1, l2, g := p.M1, p.M2, p.L1, p.L2, p.Gravity
	t1, t2, w1, w2 := p.Theta1, p.Theta2, p.Omega1, p.Omega2

	delta := t1 - t2
	sinD, cosD := math.Sin(delta), math.Cos(delta)

	den := 2*m1 + m2 - m2*math.Cos(2*t1-2*t2)

	num1 := -g*(2*m1+m2)*math.Sin(t1) -
		m2*g*math.Sin(t1-2*t2) -
		2*sinD*m2*(w2*w2*l2+w1*w1*l1*cosD)

	num2 := 2 * sinD * (w1*w1*l1*(m1+m2) +
		g*(m1+m2)*math.Cos(t1) +
		w2*w2*l2*m2*cosD)

	return num1 / (l1 * den), num2 / (l2 * den)
}

// Advance takes one semi-implicit Euler step: velocities first, then
// angles from the updated velocities.
func (p *Pendulum) Advance() {
	a1, a2 := p.Accelerations()

	p.Omega1 += p.Dt * a1
	p.Omega2 += p.Dt * a2
	p.Theta1 += p.Dt * p.Omega1
	p.Theta2 += p.Dt * p.Omega2
}

// Coordinates returns the positions of mass 1 and mass 2.
func (p *Pendulum) Coordinates() (Point, Point) {
	x1 := p.L1 * math.Sin(p.Theta1)
	y1 := -p.L1 * math.Cos(p.Theta1)

	x2 := x1 + p.L2*math.Sin(p.Theta2)
	y2 := y1 - p.L2*math.Cos(p.Theta2)

	return Point{x1, y1}, Point{x2, y2}
}

// RecordTrace appends (x, y) to the trace, evicts the oldest points beyond
// capacity and returns the retained points as parallel slices.
func (p *Pendulum) RecordTrace(x, y float64) (xs, ys []float64) {
	p.trace.Push(Point{x, y})
	return p.trace.XY()
}

// Trace returns the retained points without recording a new one.
func (p *Pendulum) Trace() (xs, ys []float64) { return p.trace.XY() }

// Traced reports whether the pendulum keeps any trace points at all.
func (p *Pendulum) Traced() bool { return p.trace.Cap() != 0 }

func (p *Pendulum) TraceCap() int { return p.trace.Cap() }

// Energy is the total mechanical energy, with the pivot as the zero of
// potential. Diagnostic only.
func (p *Pendulum) Energy() float64 {
	m1, m2, l1, l2, g := p.M1, p.M2, p.L1, p.L2, p.Gravity
	w1, w2 := p.Omega1, p.Omega2

	v1sq := l1 * l1 * w1 * w1
	v2sq := v1sq + l2*l2*w2*w2 + 2*l1*l2*w1*w2*math.Cos(p.Theta1-p.Theta2)

	ke := 0.5*m1*v1sq + 0.5*m2*v2sq
	y1 := -l1 * math.Cos(p.Theta1)
	y2 := y1 - l2*math.Cos(p.Theta2)
	pe := m1*g*y1 + m2*g*y2

	return ke + pe
}

// Finite reports whether every state variable is still a finite number.
func (p *Pendulum) Finite() bool {
	for _, v := range [...]float64{p.Theta1, p.Theta2, p.Omega1, p.Omega2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// State is a value copy of the dynamical variables.
type State struct {
	Theta1, Theta2 float64
	Omega1, Omega2 float64
}

func (p *Pendulum) Snapshot() State {
	return State{p.Theta1, p.Theta2, p.Omega1, p.Omega2}
}
