package sink

import (
	"strings"

	"github.com/matzehuels/planboard/pkg/errors"
)

// Theme holds the colours used by RenderSVG.
type Theme struct {
	Name       string
	Background string
	Text       string
	Muted      string
	Grid       string
	LaneEven   string
	LaneOdd    string
	Bar        string // default fill for items without a colour
	BarText    string
	Overdue    string
	Today      string
}

// Built-in themes.
var (
	Light = Theme{
		Name:       "light",
		Background: "#ffffff",
		Text:       "#1f2933",
		Muted:      "#7b8794",
		Grid:       "#e4e7eb",
		LaneEven:   "#f8f9fa",
		LaneOdd:    "#ffffff",
		Bar:        "#3f88c5",
		BarText:    "#ffffff",
		Overdue:    "#d64545",
		Today:      "#e12d39",
	}
	Dark = Theme{
		Name:       "dark",
		Background: "#1a1d21",
		Text:       "#e4e7eb",
		Muted:      "#9aa5b1",
		Grid:       "#323f4b",
		LaneEven:   "#20252b",
		LaneOdd:    "#1a1d21",
		Bar:        "#4c9be8",
		BarText:    "#ffffff",
		Overdue:    "#ff6b6b",
		Today:      "#ff4d5a",
	}
)

// Themes lists the built-in themes by name.
var Themes = []Theme{Light, Dark}

// ParseTheme looks up a built-in theme. Empty selects Light.
func ParseTheme(name string) (Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Light, nil
	}
	for _, t := range Themes {
		if t.Name == name {
			return t, nil
		}
	}
	return Theme{}, errors.New(errors.ErrCodeInvalidTheme, "unknown theme %q (must be one of: light, dark)", name)
}
