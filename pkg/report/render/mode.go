package render

import "strings"

// Mode selects an output format.
type Mode string

// Output modes.
const (
	ModeAgent    Mode = "agent"
	ModeJSON     Mode = "json"
	ModeReadable Mode = "readable"
	ModeYAML     Mode = "yaml"
	ModeHTML     Mode = "html"
)

// ParseMode maps the positional argument to a Mode. Anything that is not a
// named mode, the empty string included, selects ModeAgent.
func ParseMode(arg string) Mode {
	switch mode := Mode(strings.TrimSpace(arg)); mode {
	case ModeJSON, ModeReadable, ModeYAML, ModeHTML:
		return mode
	default:
		return ModeAgent
	}
}
