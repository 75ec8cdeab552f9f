// Package terminal provides the text layout helpers used by the human
// readable report: rules, padding and severity colours.
package terminal

import (
	"os"
	"strings"

	"github.com/fatih/color"
)

// DefaultWidth is the width of separator rules.
const DefaultWidth = 80

// Rule characters.
const (
	RuleHeavy = "="
	RuleLight = "-"
)

// Config holds terminal rendering configuration.
type Config struct {
	Width   int
	NoColor bool
}

// NewConfig creates a Config for stdout. Colour is off when stdout is not a
// terminal or NO_COLOR is set.
func NewConfig() Config {
	return Config{
		Width:   DefaultWidth,
		NoColor: color.NoColor || os.Getenv("NO_COLOR") != "",
	}
}

// Rule repeats char to the configured width, or DefaultWidth when unset.
func (c Config) Rule(char string) string {
	width := c.Width
	if width <= 0 {
		width = DefaultWidth
	}

	return strings.Repeat(char, width)
}

// Paint renders text with attrs unless colour is disabled.
func (c Config) Paint(text string, attrs ...color.Attribute) string {
	if c.NoColor || len(attrs) == 0 {
		return text
	}

	p := color.New(attrs...)
	p.EnableColor()

	return p.Sprint(text)
}
