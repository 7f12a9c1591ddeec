package export

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/dpend/internal/scene"
	"github.com/san-kum/dpend/internal/viz"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Side is the edge length of an exported frame.
const Side = 6 * vg.Inch

// hexColor converts a "#rrggbb" theme or body color. Unparseable input
// falls back to fallback.
func hexColor(hex string, fallback color.Color) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	return c
}

// FramePlot lays out one frame on equal-aspect axes spanning the scene
// extent: traces first, then rods with joint markers.
func FramePlot(f scene.Frame, theme viz.Theme) (*plot.Plot, error) {
	p := plot.New()
	p.HideAxes()
	p.BackgroundColor = hexColor(string(theme.Background), color.Black)
	p.X.Min, p.X.Max = -f.Extent, f.Extent
	p.Y.Min, p.Y.Max = -f.Extent, f.Extent

	lone := len(f.Bodies) == 1
	traceInk := hexColor(string(theme.Trace), color.Gray{Y: 128})

	for i, b := range f.Bodies {
		if len(b.TraceX) < 2 || !b.Finite {
			continue
		}
		pts := make(plotter.XYs, len(b.TraceX))
		for j := range b.TraceX {
			pts[j] = plotter.XY{X: b.TraceX[j], Y: b.TraceY[j]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("trace %d: %w", i, err)
		}
		line.Color = traceInk
		line.Width = vg.Points(1)
		p.Add(line)
	}

	for i, b := range f.Bodies {
		if !b.Finite {
			continue
		}
		ink := hexColor(b.Color, color.White)
		if lone {
			ink = hexColor(string(theme.Pendulum), color.White)
		}

		pts := plotter.XYs{{X: 0, Y: 0}, {X: b.Mass1.X, Y: b.Mass1.Y}, {X: b.Mass2.X, Y: b.Mass2.Y}}
		rod, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("rod %d: %w", i, err)
		}
		rod.Color = ink
		rod.Width = vg.Points(2)
		p.Add(rod)

		if !lone {
			continue
		}
		joints, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("joints %d: %w", i, err)
		}
		joints.GlyphStyle.Color = ink
		joints.GlyphStyle.Radius = vg.Points(4)
		joints.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(joints)
	}

	return p, nil
}

// SaveFrame renders f to path. The format follows the extension; plot
// supports .png, .svg, .pdf and a few others.
func SaveFrame(path string, f scene.Frame, theme viz.Theme) error {
	p, err := FramePlot(f, theme)
	if err != nil {
		return err
	}
	if err := p.Save(Side, Side, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// WriteSequence steps s n times and writes every every-th frame as a
// numbered PNG into dir. It returns the number of files written.
func WriteSequence(ctx context.Context, s *scene.Scene, dir string, n, every int, theme viz.Theme) (int, error) {
	if every < 1 {
		every = 1
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	written := 0
	err := s.Run(ctx, n, func(f scene.Frame) error {
		if f.Index%every != 0 {
			return nil
		}
		path := filepath.Join(dir, fmt.Sprintf("frame_%06d.png", f.Index))
		if err := SaveFrame(path, f, theme); err != nil {
			return err
		}
		written++
		return nil
	})
	return written, err
}

// SaveSeries plots ys against time with sample spacing dt. Non-finite
// samples are dropped.
func SaveSeries(path, title, ylabel string, ys []float64, dt float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, 0, len(ys))
	for i, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i+1) * dt, Y: y})
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("series: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
