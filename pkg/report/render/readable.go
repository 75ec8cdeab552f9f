package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/sonarexport/pkg/report"
	"github.com/Sumatoshi-tech/sonarexport/pkg/terminal"
)

// renderReadable writes issues grouped by severity for a human reader.
// Severities without issues get neither a section nor a summary row.
func renderReadable(w io.Writer, rep *report.Report, opts Options) error {
	term := opts.Terminal
	groups := rep.IssuesBySeverity()

	a := &textWriter{w: w}

	a.printf("%s\n\n", term.Bold(fmt.Sprintf("Total Issues: %d", len(rep.Issues))))
	a.printf("%s\n", term.Rule(terminal.RuleHeavy))

	if len(groups) > 0 {
		a.printf("\n%s\n", summaryTable(groups, len(rep.Issues)))
	}

	for _, group := range groups {
		header := fmt.Sprintf("%s (%d issues)", group.Severity, len(group.Issues))

		a.printf("\n%s\n", term.Severity(string(group.Severity), header))
		a.printf("%s\n", term.Rule(terminal.RuleLight))

		for _, issue := range group.Issues {
			a.printf("\nFile: %s\n", issue.File)
			a.printf("Line: %s\n", issue.Line)
			a.printf("Rule: %s\n", issue.Rule)
			a.printf("Issue: %s\n", issue.Message)
		}
	}

	return a.err
}

func summaryTable(groups []report.SeverityGroup, total int) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Severity", "Issues"})

	for _, group := range groups {
		tbl.AppendRow(table.Row{string(group.Severity), len(group.Issues)})
	}

	tbl.AppendFooter(table.Row{"Total", total})

	return tbl.Render()
}
