package report

import (
	"cmp"
	"slices"
)

// SeverityGroup is the issues sharing one severity.
type SeverityGroup struct {
	Severity Severity
	Issues   []Issue
}

// FileGroup is the issues of one file, ordered by line.
type FileGroup struct {
	File   string
	Issues []Issue
}

// MainIssues returns the MAIN scope issues in report order.
func (r *Report) MainIssues() []Issue {
	main := make([]Issue, 0, len(r.Issues))

	for _, issue := range r.Issues {
		if issue.Scope == ScopeMain {
			main = append(main, issue)
		}
	}

	return main
}

// IssuesBySeverity groups all issues by severity.
func (r *Report) IssuesBySeverity() []SeverityGroup {
	return GroupBySeverity(r.Issues)
}

// IssuesByFile groups all issues by file.
func (r *Report) IssuesByFile() []FileGroup {
	return GroupByFile(r.Issues)
}

// GroupBySeverity groups issues by severity. Known severities come first in
// Severities order, followed by unknown ones by name. Only severities that
// occur are returned; issues keep their input order inside a group.
func GroupBySeverity(issues []Issue) []SeverityGroup {
	index := make(map[Severity]int)

	var groups []SeverityGroup

	for _, issue := range issues {
		idx, ok := index[issue.Severity]
		if !ok {
			idx = len(groups)
			index[issue.Severity] = idx
			groups = append(groups, SeverityGroup{Severity: issue.Severity})
		}

		groups[idx].Issues = append(groups[idx].Issues, issue)
	}

	slices.SortFunc(groups, func(a, b SeverityGroup) int {
		return cmp.Or(
			cmp.Compare(a.Severity.Rank(), b.Severity.Rank()),
			cmp.Compare(a.Severity, b.Severity),
		)
	})

	return groups
}

// GroupByFile groups issues by file path in lexicographic order. Inside a
// file issues are ordered by ascending line with NoLine first; equal lines
// keep their input order.
func GroupByFile(issues []Issue) []FileGroup {
	index := make(map[string]int)

	var groups []FileGroup

	for _, issue := range issues {
		idx, ok := index[issue.File]
		if !ok {
			idx = len(groups)
			index[issue.File] = idx
			groups = append(groups, FileGroup{File: issue.File})
		}

		groups[idx].Issues = append(groups[idx].Issues, issue)
	}

	slices.SortFunc(groups, func(a, b FileGroup) int {
		return cmp.Compare(a.File, b.File)
	})

	for i := range groups {
		slices.SortStableFunc(groups[i].Issues, func(a, b Issue) int {
			return cmp.Compare(a.Line, b.Line)
		})
	}

	return groups
}

// SortByDensity returns a copy of entries ordered by descending density.
// Ties keep their input order.
func SortByDensity(entries []DuplicationEntry) []DuplicationEntry {
	sorted := slices.Clone(entries)

	slices.SortStableFunc(sorted, func(a, b DuplicationEntry) int {
		return cmp.Compare(b.Density, a.Density)
	})

	return sorted
}

// SortByCoverage returns a copy of entries ordered by ascending overall
// coverage. Ties keep their input order.
func SortByCoverage(entries []CoverageEntry) []CoverageEntry {
	sorted := slices.Clone(entries)

	slices.SortStableFunc(sorted, func(a, b CoverageEntry) int {
		return cmp.Compare(a.Coverage, b.Coverage)
	})

	return sorted
}
