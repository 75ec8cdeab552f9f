// Package render writes a collected report in one of the output modes.
package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/sonarexport/pkg/report"
	"github.com/Sumatoshi-tech/sonarexport/pkg/terminal"
)

// Options tune rendering.
type Options struct {
	// Terminal controls colours and rule width of readable output.
	Terminal terminal.Config
	// ValidateJSON checks json output against the embedded schema.
	ValidateJSON bool
	// Title is the html page title.
	Title string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Terminal:     terminal.Config{Width: terminal.DefaultWidth},
		ValidateJSON: true,
		Title:        "SonarQube report",
	}
}

type renderFunc func(w io.Writer, rep *report.Report, opts Options) error

func renderer(mode Mode) renderFunc {
	switch mode {
	case ModeJSON:
		return renderJSON
	case ModeReadable:
		return renderReadable
	case ModeYAML:
		return renderYAML
	case ModeHTML:
		return renderHTML
	default:
		return renderAgent
	}
}

// Render writes rep to w in the given mode. Output is produced in memory
// first so nothing reaches w when rendering fails.
func Render(w io.Writer, mode Mode, rep *report.Report, opts Options) error {
	if rep == nil {
		rep = &report.Report{}
	}

	var buf bytes.Buffer

	err := renderer(mode)(&buf, rep, opts)
	if err != nil {
		return fmt.Errorf("render %s: %w", mode, err)
	}

	_, err = buf.WriteTo(w)
	if err != nil {
		return fmt.Errorf("write %s output: %w", mode, err)
	}

	return nil
}
