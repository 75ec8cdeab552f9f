// Package report turns raw SonarQube records into the normalized report
// consumed by the renderers: issues, duplicated blocks and coverage gaps.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrInvalidLine indicates a line value that is neither a number nor "N/A".
var ErrInvalidLine = errors.New("line must be a positive number or \"N/A\"")

// Severity is the issue severity reported by the server.
type Severity string

// Known severities, most severe first.
const (
	SeverityBlocker  Severity = "BLOCKER"
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
	SeverityInfo     Severity = "INFO"
)

// Severities returns the known severities in report order.
func Severities() []Severity {
	return []Severity{SeverityBlocker, SeverityCritical, SeverityMajor, SeverityMinor, SeverityInfo}
}

// Rank orders severities, 0 being the most severe. Unknown values rank
// after INFO.
func (s Severity) Rank() int {
	for i, known := range Severities() {
		if s == known {
			return i
		}
	}

	return len(Severities())
}

// Scope tells production code from test code.
type Scope string

// Scopes.
const (
	ScopeMain Scope = "MAIN"
	ScopeTest Scope = "TEST"
)

// NoLineText is the placeholder written for issues without a line.
const NoLineText = "N/A"

// Line is a 1-based line number. The zero value means the issue has no
// line and is written as "N/A"; it sorts before every real line.
type Line int

// NoLine is the missing line placeholder.
const NoLine Line = 0

// Valid reports whether l is a real line number.
func (l Line) Valid() bool {
	return l > 0
}

func (l Line) String() string {
	if !l.Valid() {
		return NoLineText
	}

	return strconv.Itoa(int(l))
}

// MarshalJSON writes a number, or "N/A" for NoLine.
func (l Line) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return []byte(`"` + NoLineText + `"`), nil
	}

	return []byte(strconv.Itoa(int(l))), nil
}

// UnmarshalJSON accepts a number, "N/A" or null.
func (l *Line) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*l = NoLine

		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string

		err := json.Unmarshal(data, &s)
		if err != nil {
			return fmt.Errorf("decode line: %w", err)
		}

		return l.parse(s)
	}

	var n int

	err := json.Unmarshal(data, &n)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLine, data)
	}

	*l = Line(max(n, 0))

	return nil
}

// MarshalYAML writes an int, or "N/A" for NoLine.
func (l Line) MarshalYAML() (any, error) {
	if !l.Valid() {
		return NoLineText, nil
	}

	return int(l), nil
}

// UnmarshalYAML accepts an int or "N/A".
func (l *Line) UnmarshalYAML(node *yaml.Node) error {
	return l.parse(node.Value)
}

func (l *Line) parse(s string) error {
	if s == NoLineText || s == "" {
		*l = NoLine

		return nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLine, s)
	}

	*l = Line(max(n, 0))

	return nil
}

// Issue is a normalized open issue.
type Issue struct {
	File     string   `json:"file"     yaml:"file"`
	Line     Line     `json:"line"     yaml:"line"`
	Severity Severity `json:"severity" yaml:"severity"`
	Type     string   `json:"type"     yaml:"type"`
	Rule     string   `json:"rule"     yaml:"rule"`
	Message  string   `json:"message"  yaml:"message"`
	Scope    Scope    `json:"scope"    yaml:"scope"`
}

// BlockReference is a range in another file that duplicates a block.
type BlockReference struct {
	File string `json:"file" yaml:"file"`
	From int    `json:"from" yaml:"from"`
	Size int    `json:"size" yaml:"size"`
}

// LastLine returns the last line of the range.
func (r BlockReference) LastLine() int {
	return r.From + r.Size - 1
}

// DuplicationBlock is a duplicated range of the entry's file and the ranges
// duplicating it.
type DuplicationBlock struct {
	From       int              `json:"from"       yaml:"from"`
	Size       int              `json:"size"       yaml:"size"`
	References []BlockReference `json:"references" yaml:"references"`
}

// LastLine returns the last line of the range.
func (b DuplicationBlock) LastLine() int {
	return b.From + b.Size - 1
}

// DuplicationEntry lists the duplicated blocks of one file. Blocks may be
// empty when the server returned groups without block data.
type DuplicationEntry struct {
	File    string             `json:"file"    yaml:"file"`
	Density float64            `json:"density" yaml:"density"`
	Blocks  []DuplicationBlock `json:"blocks"  yaml:"blocks"`
}

// CoverageEntry is a file below full coverage.
type CoverageEntry struct {
	File                string  `json:"file"                 yaml:"file"`
	Coverage            float64 `json:"coverage"             yaml:"coverage"`
	LineCoverage        float64 `json:"line_coverage"        yaml:"line_coverage"`
	BranchCoverage      float64 `json:"branch_coverage"      yaml:"branch_coverage"`
	UncoveredLines      int     `json:"uncovered_lines"      yaml:"uncovered_lines"`
	UncoveredConditions int     `json:"uncovered_conditions" yaml:"uncovered_conditions"`
}

// Report is the full snapshot exported by one run.
type Report struct {
	Issues       []Issue            `json:"issues"       yaml:"issues"`
	Duplications []DuplicationEntry `json:"duplications" yaml:"duplications"`
	Coverage     []CoverageEntry    `json:"coverage"     yaml:"coverage"`
}
