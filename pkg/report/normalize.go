package report

import (
	"strings"

	"github.com/Sumatoshi-tech/sonarexport/pkg/sonar"
)

// FilePath strips the "projectKey:" prefix of a component key. A component
// without a colon is already a path.
func FilePath(component string) string {
	_, path, found := strings.Cut(component, ":")
	if !found {
		return component
	}

	return path
}

// NormalizeIssue maps a raw issue to the report schema. A missing line
// becomes NoLine and a missing scope becomes MAIN.
func NormalizeIssue(raw sonar.Issue) Issue {
	line := NoLine
	if raw.Line != nil && *raw.Line > 0 {
		line = Line(*raw.Line)
	}

	scope := Scope(raw.Scope)
	if scope == "" {
		scope = ScopeMain
	}

	return Issue{
		File:     FilePath(raw.Component),
		Line:     line,
		Severity: Severity(raw.Severity),
		Type:     raw.Type,
		Rule:     raw.Rule,
		Message:  raw.Message,
		Scope:    scope,
	}
}

// NormalizeIssues maps raw issues, keeping their order.
func NormalizeIssues(raws []sonar.Issue) []Issue {
	issues := make([]Issue, 0, len(raws))

	for _, raw := range raws {
		issues = append(issues, NormalizeIssue(raw))
	}

	return issues
}
