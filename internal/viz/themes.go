package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors of the animation surface and side panel.
type Theme struct {
	Name       string
	Background lipgloss.Color
	Pendulum   lipgloss.Color // rods of a lone pendulum
	Trace      lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Warning    lipgloss.Color
}

var (
	ThemeDark = Theme{
		Name:       "dark",
		Background: lipgloss.Color("#000000"),
		Pendulum:   lipgloss.Color("#ededed"),
		Trace:      lipgloss.Color("#5a7d96"),
		Text:       lipgloss.Color("#ededed"),
		Muted:      lipgloss.Color("#666666"),
		Warning:    lipgloss.Color("#ff8800"),
	}

	ThemeLight = Theme{
		Name:       "light",
		Background: lipgloss.Color("#ededed"),
		Pendulum:   lipgloss.Color("#000000"),
		Trace:      lipgloss.Color("#5a7d96"),
		Text:       lipgloss.Color("#000000"),
		Muted:      lipgloss.Color("#888888"),
		Warning:    lipgloss.Color("#cc4400"),
	}

	Themes = []Theme{ThemeDark, ThemeLight}
)

// GetTheme returns a theme by name, falling back to dark.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDark
}

// NextTheme returns the theme after t in Themes.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
