package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/dpend/internal/analysis"
	"github.com/san-kum/dpend/internal/physics"
	"github.com/san-kum/dpend/internal/scene"
	"github.com/san-kum/dpend/internal/viz"
)

func testFrame() scene.Frame {
	return scene.Frame{
		Index: 3,
		Time:  0.03,
		Bodies: []scene.Body{
			{Mass1: physics.Point{X: 1, Y: 0}, Mass2: physics.Point{X: 2, Y: 0}, Finite: true, Energy: -1},
		},
	}
}

func TestCoordWriterCSV(t *testing.T) {
	var buf bytes.Buffer
	w, err := newCoordWriter(&buf, "csv")
	if err != nil {
		t.Fatal(err)
	}
	if err := w.write(testFrame()); err != nil {
		t.Fatal(err)
	}
	if err := w.flush(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", buf.String())
	}
	if lines[1] != "3,0.030000,0,1.000000,0.000000,2.000000,0.000000" {
		t.Errorf("unexpected row %q", lines[1])
	}
}

func TestCoordWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	w, _ := newCoordWriter(&buf, "json")
	if err := w.write(testFrame()); err != nil {
		t.Fatal(err)
	}

	var rec frameRecord
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec.Frame != 3 || len(rec.Bodies) != 1 || rec.Bodies[0].X2 != 2 {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestCoordWriterTable(t *testing.T) {
	var buf bytes.Buffer
	w, _ := newCoordWriter(&buf, "table")
	_ = w.write(testFrame())
	_ = w.flush()
	if !strings.HasPrefix(buf.String(), "FRAME") {
		t.Errorf("expected table header, got %q", buf.String())
	}
}

func TestCoordWriterUnknownFormat(t *testing.T) {
	if _, err := newCoordWriter(&bytes.Buffer{}, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestDownsample(t *testing.T) {
	data := make([]float64, 1000)
	for i := range data {
		data[i] = float64(i)
	}
	got := downsample(data, 10)
	if len(got) != 10 || got[0] != 0 || got[9] != 900 {
		t.Errorf("unexpected samples %v", got)
	}
	if len(downsample(data[:5], 10)) != 5 {
		t.Error("short input should pass through")
	}
}

func TestPlotable(t *testing.T) {
	if plotable([]float64{1}) {
		t.Error("single sample is not plotable")
	}
	if !plotable([]float64{1, 2}) {
		t.Error("expected plotable series")
	}
}

func TestPlotPhase(t *testing.T) {
	c := viz.NewCanvas(10, 5)
	plotPhase(c, []analysis.PhasePoint{{Theta: 0, Omega: 0}, {Theta: 1, Omega: 1}})

	w, h := c.Dots()
	if !c.IsSet(0, h-1) || !c.IsSet(w-1, 0) {
		t.Error("expected corners to be plotted")
	}
}

func TestListPresets(t *testing.T) {
	var buf bytes.Buffer
	if err := listPresets(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"NAME", "single", "many", "99"} {
		if !strings.Contains(out, want) {
			t.Errorf("preset list missing %q", want)
		}
	}
}

// execute runs the CLI with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append(args, "--log-file", filepath.Join(t.TempDir(), "dpend.log")))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunDefaultSteps(t *testing.T) {
	out, err := execute(t, "run", "--format", "csv")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 101 {
		t.Errorf("expected header and 100 rows, got %d lines", len(lines))
	}
}

func TestRunExplicitSteps(t *testing.T) {
	out, err := execute(t, "run", "--format", "csv", "--steps", "7")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if n := strings.Count(out, "\n"); n != 8 {
		t.Errorf("expected header and 7 rows, got %d lines", n)
	}
}

func TestRenderDefaultOutput(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := execute(t, "render"); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	info, err := os.Stat("frame.png")
	if err != nil {
		t.Fatalf("expected frame.png: %v", err)
	}
	if info.Size() == 0 {
		t.Error("frame.png is empty")
	}
}

func TestDefaultsSurviveRebuild(t *testing.T) {
	if _, err := execute(t, "run", "--format", "csv", "--steps", "3"); err != nil {
		t.Fatal(err)
	}
	newRootCmd()
	if runSteps != 100 || renderOut != "frame.png" || divergeOut != "" || sectionSteps != 3000 {
		t.Errorf("unexpected defaults: run %d, render %q, diverge %q, section %d",
			runSteps, renderOut, divergeOut, sectionSteps)
	}
}

func TestRejectsBadSteps(t *testing.T) {
	tests := [][]string{
		{"spectrum", "--steps", "-1"},
		{"spectrum", "--steps", "0"},
		{"phase", "--steps", "-5"},
		{"section", "--steps", "-1"},
		{"section", "--n", "0"},
		{"diverge", "--steps", "0"},
		{"run", "--steps", "-2"},
		{"render", "--steps", "-2"},
	}
	for _, args := range tests {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestRejectsUnknownLink(t *testing.T) {
	for _, name := range []string{"spectrum", "phase"} {
		_, err := execute(t, name, "--link", "7", "--steps", "64")
		if err == nil || !strings.Contains(err.Error(), "link must be 1 or 2") {
			t.Errorf("%s: expected link error, got %v", name, err)
		}
	}
}

func TestSpectrumCommand(t *testing.T) {
	out, err := execute(t, "spectrum", "--link", "2", "--steps", "512")
	if err != nil {
		t.Fatalf("spectrum failed: %v", err)
	}
	if !strings.Contains(out, "dominant frequency") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestDivergeEnergyDrift(t *testing.T) {
	out, err := execute(t, "diverge", "--steps", "500")
	if err != nil {
		t.Fatalf("diverge failed: %v", err)
	}
	if !strings.Contains(out, "of (m1+m2)g(l1+l2)") {
		t.Errorf("expected scaled energy drift, got %q", out)
	}
}
