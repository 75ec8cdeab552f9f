package report_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sonarexport/pkg/report"
	"github.com/Sumatoshi-tech/sonarexport/pkg/sonar"
)

func TestResolver_ResolvesBlocksAndReferences(t *testing.T) {
	t.Parallel()

	src := &fakeSource{duplications: map[string]*sonar.DuplicationsResponse{
		"p:a.go": {
			Duplications: []sonar.Duplication{{Blocks: []sonar.Block{
				{From: 10, Size: 5, Ref: "1"},
				{From: 40, Size: 5, Ref: "2"},
				{From: 1, Size: 5, Ref: "3"},
			}}},
			Files: map[string]sonar.DuplicationFile{
				"1": {Key: "p:a.go", Name: "a.go"},
				"2": {Key: "p:b.go", Name: "b.go"},
			},
		},
	}}

	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	entries, err := report.NewResolver(src, logger).Resolve(context.Background(), []report.DuplicationCandidate{
		{Key: "p:a.go", File: "a.go", Density: 12.5},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, report.DuplicationEntry{
		File:    "a.go",
		Density: 12.5,
		Blocks: []report.DuplicationBlock{{
			From: 10,
			Size: 5,
			References: []report.BlockReference{
				{File: "b.go", From: 40, Size: 5},
				{File: report.UnknownFile, From: 1, Size: 5},
			},
		}},
	}, entries[0])

	assert.Contains(t, logs.String(), "unresolved duplication reference")
	assert.Contains(t, logs.String(), "ref=3")
}

func TestResolver_DropsFilesWithoutGroups(t *testing.T) {
	t.Parallel()

	src := &fakeSource{duplications: map[string]*sonar.DuplicationsResponse{
		"p:empty-blocks.go": {Duplications: []sonar.Duplication{{}}},
	}}

	entries, err := report.NewResolver(src, nil).Resolve(context.Background(), []report.DuplicationCandidate{
		{Key: "p:gone.go", File: "gone.go", Density: 3},
		{Key: "p:empty-blocks.go", File: "empty-blocks.go", Density: 4},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"p:gone.go", "p:empty-blocks.go"}, src.lookups)
	require.Len(t, entries, 1)
	assert.Equal(t, "empty-blocks.go", entries[0].File)
	assert.Empty(t, entries[0].Blocks)
}

func TestResolver_OrdersByDensityStable(t *testing.T) {
	t.Parallel()

	group := &sonar.DuplicationsResponse{Duplications: []sonar.Duplication{{Blocks: []sonar.Block{{From: 1, Size: 2}}}}}
	src := &fakeSource{duplications: map[string]*sonar.DuplicationsResponse{
		"p:low.go": group, "p:high.go": group, "p:tie1.go": group, "p:tie2.go": group,
	}}

	entries, err := report.NewResolver(src, nil).Resolve(context.Background(), []report.DuplicationCandidate{
		{Key: "p:low.go", File: "low.go", Density: 1},
		{Key: "p:tie1.go", File: "tie1.go", Density: 5},
		{Key: "p:high.go", File: "high.go", Density: 9},
		{Key: "p:tie2.go", File: "tie2.go", Density: 5},
	})
	require.NoError(t, err)

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		files = append(files, e.File)
	}

	assert.Equal(t, []string{"high.go", "tie1.go", "tie2.go", "low.go"}, files)
}

func TestResolver_LookupErrorAborts(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	src := &fakeSource{dupErr: errBoom}

	entries, err := report.NewResolver(src, nil).Resolve(context.Background(), []report.DuplicationCandidate{
		{Key: "p:a.go", File: "a.go", Density: 1},
		{Key: "p:b.go", File: "b.go", Density: 2},
	})

	require.ErrorIs(t, err, errBoom)
	assert.Nil(t, entries)
	assert.Equal(t, []string{"p:a.go"}, src.lookups)
}
