package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dpend/internal/analysis"
	"github.com/san-kum/dpend/internal/config"
	"github.com/san-kum/dpend/internal/export"
	"github.com/san-kum/dpend/internal/physics"
	"github.com/san-kum/dpend/internal/scene"
	"github.com/san-kum/dpend/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	preset     string
	theme      string
	parallel   bool
	verbose    bool
	logFile    string

	runSteps  int
	runFormat string

	renderSteps int
	renderOut   string
	renderSeq   string
	renderEvery int

	divergeSteps int
	divergeDelta float64
	divergeOut   string

	spectrumSteps int
	spectrumLink  int

	phaseSteps int
	phaseLink  int

	sectionFrom  float64
	sectionTo    float64
	sectionN     int
	sectionSteps int
)

var log = zap.NewNop()

// main executes the root command. It exits with status 1 if the command
// returns an error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

// newRootCmd registers every command and flag. Registering resets each
// flag variable to its default.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dpend",
		Short:         "double pendulum simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose, logFile)
			if err != nil {
				return err
			}
			log = l
			return nil
		},
		RunE: runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "scene file (yaml)")
	pf.StringVar(&preset, "preset", "", "named scene preset")
	pf.StringVar(&theme, "theme", "", "override theme (dark|light)")
	pf.BoolVar(&parallel, "parallel", false, "advance pendulums concurrently")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&logFile, "log-file", "", "write logs to file instead of stderr")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate a scene in the terminal",
		RunE:  runLive,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "step a scene and print mass coordinates",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&runSteps, "steps", 100, "number of frames")
	runCmd.Flags().StringVar(&runFormat, "format", "table", "output format (table|csv|json)")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render a frame (or a frame sequence) to image files",
		RunE:  runRender,
	}
	renderCmd.Flags().IntVar(&renderSteps, "steps", 0, "frames to advance before rendering")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "frame.png", "output file (.png, .svg, .pdf)")
	renderCmd.Flags().StringVar(&renderSeq, "sequence", "", "write numbered PNG frames into this directory")
	renderCmd.Flags().IntVar(&renderEvery, "every", 1, "keep every n-th frame of a sequence")

	divergeCmd := &cobra.Command{
		Use:   "diverge",
		Short: "separation of two nearly identical releases",
		RunE:  runDiverge,
	}
	divergeCmd.Flags().Float64Var(&divergeDelta, "delta", 1e-8, "theta2 offset of the twin")
	divergeCmd.Flags().IntVar(&divergeSteps, "steps", 2000, "number of steps")
	divergeCmd.Flags().StringVarP(&divergeOut, "out", "o", "", "also plot log-separation to this file")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum",
		Short: "amplitude spectrum of one link angle",
		RunE:  runSpectrum,
	}
	spectrumCmd.Flags().IntVar(&spectrumSteps, "steps", 4096, "number of samples")
	spectrumCmd.Flags().IntVar(&spectrumLink, "link", 1, "link (1 or 2)")

	phaseCmd := &cobra.Command{
		Use:   "phase",
		Short: "phase portrait (theta, omega) of one link",
		RunE:  runPhase,
	}
	phaseCmd.Flags().IntVar(&phaseSteps, "steps", 3000, "number of samples")
	phaseCmd.Flags().IntVar(&phaseLink, "link", 1, "link (1 or 2)")

	sectionCmd := &cobra.Command{
		Use:   "section",
		Short: "Poincaré section over a sweep of release angles",
		RunE:  runSection,
	}
	sectionCmd.Flags().Float64Var(&sectionFrom, "from", 0.1, "first release angle (rad)")
	sectionCmd.Flags().Float64Var(&sectionTo, "to", 2.0, "last release angle (rad)")
	sectionCmd.Flags().IntVar(&sectionN, "n", 60, "number of releases")
	sectionCmd.Flags().IntVar(&sectionSteps, "steps", 3000, "recorded steps per release")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scene presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPresets(cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(liveCmd, runCmd, renderCmd, divergeCmd, spectrumCmd, phaseCmd, sectionCmd, presetsCmd)
	return rootCmd
}

// checkSteps rejects sample counts the analyses cannot allocate.
func checkSteps(n int) error {
	if n < 1 {
		return fmt.Errorf("steps must be positive, got %d", n)
	}
	return nil
}

// checkLink rejects anything but link 1 or 2.
func checkLink(l int) error {
	if l != 1 && l != 2 {
		return fmt.Errorf("link must be 1 or 2, got %d", l)
	}
	return nil
}

func newLogger(verbose bool, path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	if path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}
	return cfg.Build()
}

// loadConfig resolves the scene: file, then preset, then defaults, with
// flag overrides applied last.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case configFile != "":
		cfg, err = config.Load(configFile)
	case preset != "":
		cfg, err = config.GetPreset(preset)
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	if theme != "" {
		cfg.Theme = theme
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = parallel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadScene(cmd *cobra.Command) (*config.Config, *scene.Scene, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	s, err := scene.New(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, s, nil
}

// firstParams is the pendulum the single-pendulum analyses run on.
func firstParams(cmd *cobra.Command) (physics.Params, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return physics.Params{}, err
	}
	return cfg.Params()[0], nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, s, err := loadScene(cmd)
	if err != nil {
		return err
	}

	// The terminal belongs to the TUI; only a log file may be written.
	l := log
	if logFile == "" {
		l = zap.NewNop()
	}

	m := viz.NewModel(cmd.Context(), s, cfg.Interval(), viz.GetTheme(cfg.Theme), l)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	if runSteps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", runSteps)
	}
	_, s, err := loadScene(cmd)
	if err != nil {
		return err
	}

	w, err := newCoordWriter(cmd.OutOrStdout(), runFormat)
	if err != nil {
		return err
	}

	// Run treats n <= 0 as forever; --steps 0 prints nothing.
	if runSteps > 0 {
		err = s.Run(cmd.Context(), runSteps, w.write)
	}
	if flushErr := w.flush(); err == nil {
		err = flushErr
	}

	var de *scene.DivergedError
	if errors.As(err, &de) {
		log.Warn("run stopped early", zap.Int("frame", de.Frame), zap.Int("index", de.Index))
	}
	return err
}

// coordWriter prints one row per pendulum per frame.
type coordWriter struct {
	write func(scene.Frame) error
	flush func() error
}

func newCoordWriter(out io.Writer, format string) (*coordWriter, error) {
	switch format {
	case "table":
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FRAME\tTIME\tPEND\tX1\tY1\tX2\tY2")
		return &coordWriter{
			write: func(f scene.Frame) error {
				for i, b := range f.Bodies {
					fmt.Fprintf(tw, "%d\t%.2f\t%d\t%.6f\t%.6f\t%.6f\t%.6f\n",
						f.Index, f.Time, i, b.Mass1.X, b.Mass1.Y, b.Mass2.X, b.Mass2.Y)
				}
				return nil
			},
			flush: tw.Flush,
		}, nil

	case "csv":
		cw := csv.NewWriter(out)
		if err := cw.Write([]string{"frame", "time", "pendulum", "x1", "y1", "x2", "y2"}); err != nil {
			return nil, err
		}
		ff := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
		return &coordWriter{
			write: func(f scene.Frame) error {
				for i, b := range f.Bodies {
					row := []string{strconv.Itoa(f.Index), ff(f.Time), strconv.Itoa(i),
						ff(b.Mass1.X), ff(b.Mass1.Y), ff(b.Mass2.X), ff(b.Mass2.Y)}
					if err := cw.Write(row); err != nil {
						return err
					}
				}
				return nil
			},
			flush: func() error {
				cw.Flush()
				return cw.Error()
			},
		}, nil

	case "json":
		enc := json.NewEncoder(out)
		return &coordWriter{
			write: func(f scene.Frame) error { return enc.Encode(frameJSON(f)) },
			flush: func() error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown format: %s (table, csv, json)", format)
}

type bodyJSON struct {
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Energy float64 `json:"energy"`
}

type frameRecord struct {
	Frame  int        `json:"frame"`
	Time   float64    `json:"time"`
	Bodies []bodyJSON `json:"bodies"`
}

// frameJSON drops traces; NaN is not valid JSON, so diverged bodies are
// reported as zeros.
func frameJSON(f scene.Frame) frameRecord {
	rec := frameRecord{Frame: f.Index, Time: f.Time, Bodies: make([]bodyJSON, len(f.Bodies))}
	for i, b := range f.Bodies {
		if !b.Finite {
			continue
		}
		rec.Bodies[i] = bodyJSON{b.Mass1.X, b.Mass1.Y, b.Mass2.X, b.Mass2.Y, b.Energy}
	}
	return rec
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderSteps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", renderSteps)
	}
	cfg, s, err := loadScene(cmd)
	if err != nil {
		return err
	}
	th := viz.GetTheme(cfg.Theme)
	out := cmd.OutOrStdout()

	if renderSeq != "" {
		if err := checkSteps(renderSteps); err != nil {
			return err
		}
		n, err := export.WriteSequence(cmd.Context(), s, renderSeq, renderSteps, renderEvery, th)
		fmt.Fprintf(out, "wrote %d frames to %s\n", n, renderSeq)
		return err
	}

	f := s.Initial()
	if renderSteps > 0 {
		if err := s.Run(cmd.Context(), renderSteps, func(fr scene.Frame) error {
			f = fr
			return nil
		}); err != nil {
			return err
		}
	}
	if err := export.SaveFrame(renderOut, f, th); err != nil {
		return err
	}
	fmt.Fprintf(out, "frame %d (t=%.2fs) written to %s\n", f.Index, f.Time, renderOut)
	return nil
}

func runDiverge(cmd *cobra.Command, args []string) error {
	if err := checkSteps(divergeSteps); err != nil {
		return err
	}
	a, err := firstParams(cmd)
	if err != nil {
		return err
	}
	b := a
	b.Theta2 -= divergeDelta

	dist := analysis.Divergence(a, b, divergeSteps)
	logSep := analysis.LogSeparation(dist)
	lambda := analysis.LyapunovExponent(a, divergeDelta, divergeSteps)
	drift := analysis.EnergyDrift(analysis.EnergySeries(a, divergeSteps), analysis.EnergyScale(a))

	out := cmd.OutOrStdout()
	if plotable(logSep) {
		fmt.Fprintln(out, asciigraph.Plot(downsample(logSep, 80),
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("log10 separation of mass 2")))
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "delta:        %g rad\n", divergeDelta)
	fmt.Fprintf(out, "final sep:    %.6f\n", dist[len(dist)-1])
	fmt.Fprintf(out, "lyapunov:     %.4f 1/s\n", lambda)
	fmt.Fprintf(out, "energy drift: %.4f of (m1+m2)g(l1+l2)\n", drift)

	if divergeOut != "" {
		return export.SaveSeries(divergeOut, "separation", "log10 distance", logSep, physics.Dt)
	}
	return nil
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	if err := checkSteps(spectrumSteps); err != nil {
		return err
	}
	if err := checkLink(spectrumLink); err != nil {
		return err
	}
	p, err := firstParams(cmd)
	if err != nil {
		return err
	}

	s := analysis.AmplitudeSpectrum(analysis.AngleSeries(p, spectrumLink, spectrumSteps), physics.Dt)
	if len(s.Amplitude) < 2 {
		return fmt.Errorf("not enough samples: %d", spectrumSteps)
	}

	// Pendulum motion lives well below 10 Hz.
	n := len(s.Amplitude)
	for n > 2 && s.Freqs[n-1] > 10 {
		n--
	}

	out := cmd.OutOrStdout()
	if plotable(s.Amplitude[:n]) {
		fmt.Fprintln(out, asciigraph.Plot(downsample(s.Amplitude[:n], 80),
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("amplitude spectrum (theta%d, 0-%.1f Hz)", spectrumLink, s.Freqs[n-1]))))
		fmt.Fprintln(out)
	}

	freq := s.Dominant()
	fmt.Fprintf(out, "dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Fprintf(out, "period: %.3f s\n", 1/freq)
	}
	return nil
}

func runPhase(cmd *cobra.Command, args []string) error {
	if err := checkSteps(phaseSteps); err != nil {
		return err
	}
	if err := checkLink(phaseLink); err != nil {
		return err
	}
	p, err := firstParams(cmd)
	if err != nil {
		return err
	}
	portrait := analysis.GeneratePhasePortrait(p, phaseLink, phaseSteps)

	c := viz.NewCanvas(60, 20)
	plotPhase(c, portrait.Points)
	fmt.Fprintf(cmd.OutOrStdout(), "phase portrait: theta%d (x) vs omega%d (y), %d samples\n\n%s",
		phaseLink, phaseLink, len(portrait.Points), c.String())
	return nil
}

// plotPhase scales points into the canvas; non-finite samples are skipped.
func plotPhase(c *viz.Canvas, pts []analysis.PhasePoint) {
	var minX, maxX, minY, maxY float64
	first := true
	for _, pt := range pts {
		if !finite(pt.Theta) || !finite(pt.Omega) {
			continue
		}
		if first {
			minX, maxX, minY, maxY = pt.Theta, pt.Theta, pt.Omega, pt.Omega
			first = false
			continue
		}
		minX, maxX = math.Min(minX, pt.Theta), math.Max(maxX, pt.Theta)
		minY, maxY = math.Min(minY, pt.Omega), math.Max(maxY, pt.Omega)
	}
	if first {
		return
	}
	if maxX == minX {
		maxX = minX + 1
	}
	if maxY == minY {
		maxY = minY + 1
	}

	w, h := c.Dots()
	for _, pt := range pts {
		if !finite(pt.Theta) || !finite(pt.Omega) {
			continue
		}
		x := int((pt.Theta - minX) / (maxX - minX) * float64(w-1))
		y := h - 1 - int((pt.Omega-minY)/(maxY-minY)*float64(h-1))
		c.Set(x, y, "")
	}
}

func runSection(cmd *cobra.Command, args []string) error {
	if err := checkSteps(sectionSteps); err != nil {
		return err
	}
	if sectionN < 1 {
		return fmt.Errorf("n must be positive, got %d", sectionN)
	}
	p, err := firstParams(cmd)
	if err != nil {
		return err
	}
	data := analysis.Section(p, sectionFrom, sectionTo, sectionN, 500, sectionSteps)
	fmt.Fprintf(cmd.OutOrStdout(), "theta2 at upward crossings of link 1, release %.2f to %.2f rad\n\n%s",
		sectionFrom, sectionTo, analysis.SectionToASCII(data, 80, 24))
	return nil
}

func listPresets(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPENDULUMS\tTHEME\tPARALLEL")
	for _, name := range config.ListPresets() {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%t\n", name, len(cfg.Params()), cfg.Theme, cfg.Parallel)
	}
	return w.Flush()
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func plotable(data []float64) bool {
	if len(data) < 2 {
		return false
	}
	for _, v := range data {
		if !finite(v) {
			return false
		}
	}
	return true
}

// downsample keeps at most n evenly spaced samples.
func downsample(data []float64, n int) []float64 {
	if len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = data[i*len(data)/n]
	}
	return out
}
