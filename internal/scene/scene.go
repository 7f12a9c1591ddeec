package scene

import (
	"context"

	"github.com/san-kum/dpend/internal/config"
	"github.com/san-kum/dpend/internal/physics"
	"go.uber.org/zap"
)

// Body is the drawable state of one pendulum in a frame.
type Body struct {
	Mass1, Mass2   physics.Point
	Color          string
	TraceX, TraceY []float64
	Energy         float64
	Finite         bool
}

// Frame is an immutable snapshot of every pendulum after one step.
type Frame struct {
	Index  int
	Time   float64
	Extent float64
	Bodies []Body
}

// Scene steps a set of independent pendulums in lockstep.
//
// A Scene is not safe for concurrent use; the pendulums it owns are
// advanced concurrently only inside Step.
type Scene struct {
	pendulums []*physics.Pendulum
	colors    []string
	parallel  bool
	extent    float64
	frame     int
	diverged  []bool
	log       *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) (*Scene, error) {
	params := cfg.Params()
	if len(params) == 0 {
		return nil, ErrEmpty
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Scene{
		pendulums: make([]*physics.Pendulum, len(params)),
		colors:    Colormap(len(params)),
		parallel:  cfg.Parallel,
		diverged:  make([]bool, len(params)),
		log:       log,
	}

	maxL1, maxL2 := 0.0, 0.0
	for i, p := range params {
		s.pendulums[i] = physics.New(p)
		maxL1 = max(maxL1, p.L1)
		maxL2 = max(maxL2, p.L2)
	}
	s.extent = maxL1 + maxL2 + 0.1

	log.Debug("scene created",
		zap.Int("pendulums", len(params)),
		zap.Bool("parallel", s.parallel),
		zap.Float64("extent", s.extent))

	return s, nil
}

func (s *Scene) Len() int                         { return len(s.pendulums) }
func (s *Scene) Extent() float64                  { return s.extent }
func (s *Scene) FrameIndex() int                  { return s.frame }
func (s *Scene) Pendulum(i int) *physics.Pendulum { return s.pendulums[i] }

// Initial describes the scene without advancing it or touching traces.
func (s *Scene) Initial() Frame {
	f := s.newFrame()
	for i, p := range s.pendulums {
		b := s.body(i, p)
		if p.Traced() {
			b.TraceX, b.TraceY = p.Trace()
		}
		f.Bodies[i] = b
	}
	return f
}

// Step advances every pendulum once, joins all workers, then reads
// coordinates and records traces. The first pendulum to turn non-finite is
// reported as a *DivergedError alongside the frame.
func (s *Scene) Step(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	if s.parallel {
		ParallelFor(len(s.pendulums), 1, func(start, end int) {
			for _, p := range s.pendulums[start:end] {
				p.Advance()
			}
		})
	} else {
		for _, p := range s.pendulums {
			p.Advance()
		}
	}
	s.frame++

	f := s.newFrame()
	for i, p := range s.pendulums {
		b := s.body(i, p)
		if p.Traced() {
			b.TraceX, b.TraceY = p.RecordTrace(b.Mass2.X, b.Mass2.Y)
		}
		f.Bodies[i] = b
	}

	return f, s.checkFinite(f)
}

// Run steps the scene n times (forever when n <= 0) and hands each frame
// to fn. It stops at the first error from Step or fn.
func (s *Scene) Run(ctx context.Context, n int, fn func(Frame) error) error {
	for i := 0; n <= 0 || i < n; i++ {
		f, err := s.Step(ctx)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) newFrame() Frame {
	return Frame{
		Index:  s.frame,
		Time:   float64(s.frame) * physics.Dt,
		Extent: s.extent,
		Bodies: make([]Body, len(s.pendulums)),
	}
}

func (s *Scene) body(i int, p *physics.Pendulum) Body {
	m1, m2 := p.Coordinates()
	return Body{
		Mass1:  m1,
		Mass2:  m2,
		Color:  s.colors[i],
		Energy: p.Energy(),
		Finite: p.Finite(),
	}
}

func (s *Scene) checkFinite(f Frame) error {
	var first error
	for i, b := range f.Bodies {
		if b.Finite || s.diverged[i] {
			continue
		}
		s.diverged[i] = true
		s.log.Warn("pendulum diverged",
			zap.Int("index", i),
			zap.Int("frame", f.Index))
		if first == nil {
			first = &DivergedError{Index: i, Frame: f.Index}
		}
	}
	return first
}
