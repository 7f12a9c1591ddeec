package viz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dpend/internal/scene"
	"go.uber.org/zap"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 300
)

const helpText = `
  Space  pause/resume
  N      single step while paused
  T      toggle dark/light theme
  ?      toggle this help
  Q      quit
`

type TickMsg time.Time

// Model animates a scene in the terminal. It only decides when the scene
// steps; nothing flows back into the pendulums.
type Model struct {
	ctx      context.Context
	scene    *scene.Scene
	interval time.Duration
	canvas   *Canvas
	theme    Theme
	frame    scene.Frame
	running  bool
	showHelp bool
	energy   []float64
	spread   []float64
	diverged int
	err      error
	log      *zap.Logger
}

// NewModel prepares a model for s that ticks every interval.
func NewModel(ctx context.Context, s *scene.Scene, interval time.Duration, theme Theme, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	return Model{
		ctx:      ctx,
		scene:    s,
		interval: interval,
		canvas:   NewCanvas(width, height),
		theme:    theme,
		frame:    s.Initial(),
		running:  true,
		energy:   make([]float64, 0, historyCapacity),
		spread:   make([]float64, 0, historyCapacity),
		log:      log,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the scene.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "t":
			m.theme = NextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w := min(msg.Width-statsStyle.GetWidth()-6, 2*(msg.Height-4))
		m.canvas.Resize(max(w, 10), max(msg.Height-4, 5))
	case TickMsg:
		if m.running {
			m.step()
		}
		if m.ctx.Err() != nil {
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the scene by one frame and records diagnostics.
func (m *Model) step() {
	f, err := m.scene.Step(m.ctx)
	if err != nil {
		var de *scene.DivergedError
		if !errors.As(err, &de) {
			m.err = err
			return
		}
		m.diverged++
		m.log.Warn("frame with diverged pendulum", zap.Int("frame", f.Index), zap.Int("index", de.Index))
	}
	m.frame = f

	m.energy = appendCapped(m.energy, f.Bodies[0].Energy)
	if len(f.Bodies) > 1 {
		m.spread = appendCapped(m.spread, Spread(f))
	}
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// Spread is the largest distance between the distal mass of the first body
// and any other body in the frame.
func Spread(f scene.Frame) float64 {
	if len(f.Bodies) == 0 {
		return 0
	}
	ref := f.Bodies[0].Mass2
	d := 0.0
	for _, b := range f.Bodies[1:] {
		if !b.Finite {
			continue
		}
		d = math.Max(d, math.Hypot(b.Mass2.X-ref.X, b.Mass2.Y-ref.Y))
	}
	return d
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	bg := m.theme.Background
	canvasView := canvasStyle.Background(bg).Render(m.canvas.Render(bg))

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	if m.err != nil {
		status = "ERROR: " + m.err.Error()
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render("DOUBLE PENDULUM") + "\n")
	s.WriteString(status + "\n\n")

	if chart := energyChart(m.energy); chart != "" {
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.frame.Time)) + "\n")
	s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%d", m.frame.Index)) + "\n")
	s.WriteString(labelStyle.Render("Pendulums") + valueStyle.Render(fmt.Sprintf("%d", len(m.frame.Bodies))) + "\n")
	if len(m.energy) > 0 {
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.4f", m.energy[len(m.energy)-1])) + "\n")
	}
	if len(m.spread) > 0 {
		s.WriteString(labelStyle.Render("Spread") + valueStyle.Render(fmt.Sprintf("%.2e", m.spread[len(m.spread)-1])) + "\n")
		s.WriteString(SparklineChart(m.spread, 30) + "\n")
	}
	if m.diverged > 0 {
		warn := lipgloss.NewStyle().Foreground(m.theme.Warning)
		s.WriteString(warn.Render(fmt.Sprintf("%d pendulum(s) diverged", m.diverged)) + "\n")
	}
	s.WriteString(labelStyle.Render("Theme") + valueStyle.Render(m.theme.Name) + "\n")

	s.WriteString(helpStyle.Render("SP:Pause N:Step T:Theme\n?:Help Q:Quit"))
	statsView := statsStyle.Render(s.String())

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

func energyChart(series []float64) string {
	if len(series) < 2 {
		return ""
	}
	lo, hi := series[0], series[0]
	for _, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo == hi {
		return ""
	}
	return asciigraph.Plot(series, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
}

// project maps scene coordinates to canvas sub-pixels, pivot centred.
func (m *Model) project(x, y float64) (int, int) {
	cw, ch := m.canvas.Dots()
	scale := float64(min(cw, ch)) / (2 * m.frame.Extent)
	return cw/2 + int(math.Round(x*scale)), ch/2 - int(math.Round(y*scale))
}

// draw paints traces first, then rods, so rods stay on top.
func (m *Model) draw() {
	m.canvas.Clear()
	lone := len(m.frame.Bodies) == 1

	for _, b := range m.frame.Bodies {
		for i := range b.TraceX {
			x, y := m.project(b.TraceX[i], b.TraceY[i])
			m.canvas.Set(x, y, m.theme.Trace)
		}
	}

	px, py := m.project(0, 0)
	for _, b := range m.frame.Bodies {
		if !b.Finite {
			continue
		}
		ink := lipgloss.Color(b.Color)
		if lone {
			ink = m.theme.Pendulum
		}
		x1, y1 := m.project(b.Mass1.X, b.Mass1.Y)
		x2, y2 := m.project(b.Mass2.X, b.Mass2.Y)
		m.canvas.DrawLine(px, py, x1, y1, ink)
		m.canvas.DrawLine(x1, y1, x2, y2, ink)
		if lone {
			m.canvas.DrawBlob(x1, y1, ink)
			m.canvas.DrawBlob(x2, y2, ink)
		}
	}
}
