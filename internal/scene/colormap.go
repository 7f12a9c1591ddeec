package scene

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ylOrRd holds the nine ColorBrewer YlOrRd anchors, light to dark.
var ylOrRd = mustHex(
	"#ffffcc", "#ffeda0", "#fed976", "#feb24c", "#fd8d3c",
	"#fc4e2a", "#e31a1c", "#bd0026", "#800026",
)

func mustHex(codes ...string) []colorful.Color {
	out := make([]colorful.Color, len(codes))
	for i, code := range codes {
		c, err := colorful.Hex(code)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}

// Colormap samples n evenly spaced colors over YlOrRd, blending between
// anchors in Lab space. A single pendulum gets the lightest color.
func Colormap(n int) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = sample(t).Hex()
	}
	return out
}

func sample(t float64) colorful.Color {
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(ylOrRd)-1)
	i := int(pos)
	frac := pos - float64(i)
	if frac == 0 || i >= len(ylOrRd)-1 {
		return ylOrRd[i]
	}
	return ylOrRd[i].BlendLab(ylOrRd[i+1], frac).Clamped()
}
