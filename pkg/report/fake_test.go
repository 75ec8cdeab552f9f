package report_test

import (
	"context"
	"slices"

	"github.com/Sumatoshi-tech/sonarexport/pkg/sonar"
)

// fakeSource serves canned API data and records duplication lookups.
type fakeSource struct {
	issues       []sonar.Issue
	components   map[string][]sonar.Component
	duplications map[string]*sonar.DuplicationsResponse

	issuesErr error
	treeErr   error
	dupErr    error

	lookups []string
	trees   [][]string
}

func (f *fakeSource) SearchIssues(_ context.Context, _ string) ([]sonar.Issue, error) {
	if f.issuesErr != nil {
		return nil, f.issuesErr
	}

	return f.issues, nil
}

func (f *fakeSource) ComponentTree(_ context.Context, _ string, metricKeys []string) ([]sonar.Component, error) {
	f.trees = append(f.trees, slices.Clone(metricKeys))

	if f.treeErr != nil {
		return nil, f.treeErr
	}

	return f.components[metricKeys[0]], nil
}

func (f *fakeSource) ShowDuplications(_ context.Context, fileKey string) (*sonar.DuplicationsResponse, error) {
	f.lookups = append(f.lookups, fileKey)

	if f.dupErr != nil {
		return nil, f.dupErr
	}

	resp, ok := f.duplications[fileKey]
	if !ok {
		return &sonar.DuplicationsResponse{}, nil
	}

	return resp, nil
}
