package render

import (
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/sonarexport/pkg/report"
	"github.com/Sumatoshi-tech/sonarexport/pkg/terminal"
)

const (
	agentPreamble = "# SonarQube Issues for Fixing\n\n" +
		"Below are code quality issues that need to be fixed. Each issue includes:\n" +
		"- File path and line number\n" +
		"- Severity and type\n" +
		"- Description of what needs to be fixed\n\n"

	agentDuplicationsIntro = "Please review these duplicated code blocks and determine if they are:\n" +
		"- Genuine duplicates that should be refactored\n" +
		"- False positives that can be marked as such\n\n"

	agentCoverageIntro = "Files needing test coverage improvements:\n\n"

	messageIndent = 3
)

// textWriter keeps the first write error so sections read linearly.
type textWriter struct {
	w   io.Writer
	err error
}

func (a *textWriter) printf(format string, args ...any) {
	if a.err != nil {
		return
	}

	_, a.err = fmt.Fprintf(a.w, format, args...)
}

type agentWriter struct {
	textWriter

	rule string
}

// renderAgent writes the Markdown report read by a code-fixing agent. Only
// MAIN scope issues are listed; agent output is never coloured.
func renderAgent(w io.Writer, rep *report.Report, opts Options) error {
	a := &agentWriter{
		textWriter: textWriter{w: w},
		rule:       terminal.Config{Width: opts.Terminal.Width}.Rule(terminal.RuleHeavy),
	}

	a.printf("%s%s\n", agentPreamble, a.rule)

	main := rep.MainIssues()
	a.printf("\n## Main Code Issues (%d issues)\n\n", len(main))

	for _, group := range report.GroupByFile(main) {
		a.printf("\n### %s\n\n", group.File)

		for _, issue := range group.Issues {
			a.printf("**Line %s** [%s] (%s)\n", issue.Line, issue.Severity, issue.Rule)
			a.printf("%s\n\n", terminal.Indent(issue.Message, messageIndent))
		}
	}

	if len(rep.Duplications) > 0 {
		a.duplications(rep.Duplications)
	}

	if len(rep.Coverage) > 0 {
		a.coverage(rep.Coverage)
	}

	return a.err
}

func (a *agentWriter) duplications(entries []report.DuplicationEntry) {
	a.printf("\n%s\n", a.rule)
	a.printf("\n## Code Duplications (%d files with duplicates)\n\n", len(entries))
	a.printf("%s", agentDuplicationsIntro)

	for _, entry := range report.SortByDensity(entries) {
		a.printf("\n### %s\n", entry.File)
		a.printf("Duplication Density: %.1f%%\n\n", entry.Density)

		for _, block := range entry.Blocks {
			a.printf("**Lines %d-%d** (%d lines duplicated)\n", block.From, block.LastLine(), block.Size)

			for _, ref := range block.References {
				a.printf("   Duplicated in: %s:%d-%d\n", ref.File, ref.From, ref.LastLine())
			}

			a.printf("\n")
		}
	}
}

func (a *agentWriter) coverage(entries []report.CoverageEntry) {
	a.printf("\n%s\n", a.rule)
	a.printf("\n## Code Coverage (%d files with incomplete coverage)\n\n", len(entries))
	a.printf("%s", agentCoverageIntro)

	for _, entry := range report.SortByCoverage(entries) {
		a.printf("\n### %s\n", entry.File)
		a.printf("Overall Coverage: %.1f%%\n", entry.Coverage)
		a.printf("Line Coverage: %.1f%% (%d uncovered lines)\n", entry.LineCoverage, entry.UncoveredLines)
		a.printf("Branch Coverage: %.1f%% (%d uncovered conditions)\n\n", entry.BranchCoverage, entry.UncoveredConditions)
	}
}
