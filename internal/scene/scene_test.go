package scene_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dpend/internal/config"
	"github.com/san-kum/dpend/internal/physics"
	"github.com/san-kum/dpend/internal/scene"
)

func mustPreset(name string) *config.Config {
	cfg, err := config.GetPreset(name)
	Expect(err).NotTo(HaveOccurred())
	return cfg
}

func stepN(s *scene.Scene, n int) scene.Frame {
	var f scene.Frame
	for i := 0; i < n; i++ {
		var err error
		f, err = s.Step(context.Background())
		Expect(err).NotTo(HaveOccurred())
	}
	return f
}

var _ = Describe("Scene", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("construction", func() {
		It("builds one pendulum per configured entry", func() {
			s, err := scene.New(mustPreset("many"), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Len()).To(Equal(99))
		})

		It("sizes the view from the longest links", func() {
			cfg := config.DefaultConfig()
			cfg.Pendulums = []config.PendulumConfig{
				{L1: 2, L2: 0.5, M1: 1, M2: 1},
				{L1: 1, L2: 1.5, M1: 1, M2: 1},
			}
			s, err := scene.New(cfg, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Extent()).To(BeNumerically("~", 3.6, 1e-12))
		})

		It("rejects an empty scene", func() {
			cfg := config.DefaultConfig()
			cfg.Pendulums = nil
			_, err := scene.New(cfg, nil)
			Expect(err).To(MatchError(scene.ErrEmpty))
		})
	})

	Describe("Initial", func() {
		It("reports positions without recording a trace", func() {
			s, _ := scene.New(config.DefaultConfig(), nil)
			f := s.Initial()

			Expect(f.Index).To(Equal(0))
			Expect(f.Bodies).To(HaveLen(1))
			Expect(f.Bodies[0].Mass2.X).To(BeNumerically("~", 2, 1e-12))
			Expect(f.Bodies[0].TraceX).To(BeEmpty())
		})
	})

	Describe("Step", func() {
		It("advances time by one step per frame", func() {
			s, _ := scene.New(config.DefaultConfig(), nil)
			f := stepN(s, 10)

			Expect(f.Index).To(Equal(10))
			Expect(f.Time).To(BeNumerically("~", 10*physics.Dt, 1e-12))
		})

		It("matches a pendulum driven by hand", func() {
			s, _ := scene.New(config.DefaultConfig(), nil)
			ref := physics.New(physics.DefaultParams())

			var xs []float64
			for i := 0; i < 150; i++ {
				ref.Advance()
				_, m2 := ref.Coordinates()
				xs, _ = ref.RecordTrace(m2.X, m2.Y)
			}
			f := stepN(s, 150)

			_, m2 := ref.Coordinates()
			Expect(f.Bodies[0].Mass2).To(Equal(m2))
			Expect(f.Bodies[0].TraceX).To(Equal(xs))
			Expect(f.Bodies[0].TraceX).To(HaveLen(physics.DefaultTraceCap))
		})

		It("leaves untraced pendulums without trace data", func() {
			s, _ := scene.New(mustPreset("fan"), nil)
			f := stepN(s, 5)

			for _, b := range f.Bodies {
				Expect(b.TraceX).To(BeNil())
				Expect(b.TraceY).To(BeNil())
			}
		})

		It("gives the same result in parallel and in sequence", func() {
			par := mustPreset("fan")
			seq := mustPreset("fan")
			seq.Parallel = false

			a, _ := scene.New(par, nil)
			b, _ := scene.New(seq, nil)
			fa := stepN(a, 400)
			fb := stepN(b, 400)

			Expect(fa.Bodies).To(HaveLen(len(fb.Bodies)))
			for i := range fa.Bodies {
				Expect(fa.Bodies[i].Mass1).To(Equal(fb.Bodies[i].Mass1))
				Expect(fa.Bodies[i].Mass2).To(Equal(fb.Bodies[i].Mass2))
			}
		})

		It("keeps the rest preset at rest", func() {
			s, _ := scene.New(mustPreset("rest"), nil)
			f := stepN(s, 100)

			Expect(f.Bodies[0].Mass1).To(Equal(physics.Point{X: 0, Y: -1}))
			Expect(f.Bodies[0].Mass2).To(Equal(physics.Point{X: 0, Y: -2}))
		})

		It("stops on a cancelled context", func() {
			s, _ := scene.New(config.DefaultConfig(), nil)
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := s.Step(cctx)
			Expect(err).To(MatchError(context.Canceled))
			Expect(s.FrameIndex()).To(Equal(0))
		})

		It("reports divergence once per pendulum", func() {
			cfg := config.DefaultConfig()
			cfg.Pendulums = []config.PendulumConfig{
				config.DefaultPendulum(),
				{L1: 1, L2: 1, M1: 0, M2: 0, Theta1: 1, Theta2: 1},
			}
			s, _ := scene.New(cfg, nil)

			f, err := s.Step(ctx)
			Expect(errors.Is(err, scene.ErrDiverged)).To(BeTrue())

			var de *scene.DivergedError
			Expect(errors.As(err, &de)).To(BeTrue())
			Expect(de.Index).To(Equal(1))
			Expect(de.Frame).To(Equal(1))
			Expect(f.Bodies[0].Finite).To(BeTrue())
			Expect(f.Bodies[1].Finite).To(BeFalse())
			Expect(math.IsNaN(f.Bodies[1].Mass1.X)).To(BeTrue())

			_, err = s.Step(ctx)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Run", func() {
		It("delivers exactly n frames", func() {
			s, _ := scene.New(config.DefaultConfig(), nil)
			var seen []int
			err := s.Run(ctx, 7, func(f scene.Frame) error {
				seen = append(seen, f.Index)
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal([]int{1, 2, 3, 4, 5, 6, 7}))
		})

		It("stops when the callback fails", func() {
			s, _ := scene.New(config.DefaultConfig(), nil)
			stop := errors.New("stop")
			err := s.Run(ctx, 0, func(f scene.Frame) error {
				if f.Index == 3 {
					return stop
				}
				return nil
			})
			Expect(err).To(MatchError(stop))
			Expect(s.FrameIndex()).To(Equal(3))
		})
	})
})

var _ = Describe("Colormap", func() {
	It("spans YlOrRd from light to dark", func() {
		colors := scene.Colormap(5)
		Expect(colors).To(HaveLen(5))
		Expect(colors[0]).To(Equal("#ffffcc"))
		Expect(colors[2]).To(Equal("#fd8d3c"))
		Expect(colors[4]).To(Equal("#800026"))
	})

	It("uses the lightest color for a single pendulum", func() {
		Expect(scene.Colormap(1)).To(Equal([]string{"#ffffcc"}))
	})

	It("returns nothing for an empty scene", func() {
		Expect(scene.Colormap(0)).To(BeEmpty())
	})
})

var _ = Describe("ParallelFor", func() {
	It("visits every index exactly once", func() {
		hits := make([]int, 1000)
		scene.ParallelFor(len(hits), 1, func(start, end int) {
			for i := start; i < end; i++ {
				hits[i]++
			}
		})
		for i, h := range hits {
			Expect(h).To(Equal(1), "index %d", i)
		}
	})
})
