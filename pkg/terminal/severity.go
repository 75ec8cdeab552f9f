package terminal

import "github.com/fatih/color"

// severityAttrs maps severities to their header colour.
var severityAttrs = map[string][]color.Attribute{
	"BLOCKER":  {color.FgRed, color.Bold},
	"CRITICAL": {color.FgRed},
	"MAJOR":    {color.FgYellow},
	"MINOR":    {color.FgCyan},
	"INFO":     {color.FgBlue},
}

// Severity colours a severity label. Unknown severities stay plain.
func (c Config) Severity(severity, text string) string {
	return c.Paint(text, severityAttrs[severity]...)
}

// Bold renders text in bold.
func (c Config) Bold(text string) string {
	return c.Paint(text, color.Bold)
}

