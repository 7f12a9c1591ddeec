package physics

// Unbounded disables trace eviction.
const Unbounded = -1

// Trace is a FIFO of distal-mass positions. Eviction is by position, so a
// repeated coordinate never displaces the true oldest point.
type Trace struct {
	buf  []Point
	head int
	n    int
	cap  int
}

// NewTrace returns a trace holding at most capacity points. Unbounded (or
// any negative capacity) grows without limit; zero retains nothing.
func NewTrace(capacity int) *Trace {
	if capacity < 0 {
		capacity = Unbounded
	}
	t := &Trace{cap: capacity}
	if capacity > 0 {
		t.buf = make([]Point, capacity)
	}
	return t
}

func (t *Trace) Cap() int { return t.cap }
func (t *Trace) Len() int { return t.n }

// Push appends pt and drops the oldest point once the bound is exceeded.
func (t *Trace) Push(pt Point) {
	switch {
	case t.cap == Unbounded:
		t.buf = append(t.buf, pt)
		t.n++
	case t.cap == 0:
	case t.n < t.cap:
		t.buf[(t.head+t.n)%t.cap] = pt
		t.n++
	default:
		t.buf[t.head] = pt
		t.head = (t.head + 1) % t.cap
	}
}

// At returns the i-th oldest point.
func (t *Trace) At(i int) Point {
	if t.cap == Unbounded {
		return t.buf[i]
	}
	return t.buf[(t.head+i)%t.cap]
}

// Points copies the retained points in insertion order.
func (t *Trace) Points() []Point {
	out := make([]Point, t.n)
	for i := range out {
		out[i] = t.At(i)
	}
	return out
}

// XY copies the retained points as parallel coordinate slices.
func (t *Trace) XY() (xs, ys []float64) {
	xs = make([]float64, t.n)
	ys = make([]float64, t.n)
	for i := 0; i < t.n; i++ {
		pt := t.At(i)
		xs[i], ys[i] = pt.X, pt.Y
	}
	return xs, ys
}
