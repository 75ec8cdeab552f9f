package render

import "github.com/Sumatoshi-tech/sonarexport/pkg/report"

// document is the machine-readable report layout shared by json and yaml.
// Sections are never null.
type document struct {
	Issues       []report.Issue            `json:"issues"       yaml:"issues"`
	Duplications []report.DuplicationEntry `json:"duplications" yaml:"duplications"`
	Coverage     []report.CoverageEntry    `json:"coverage"     yaml:"coverage"`
}

func newDocument(rep *report.Report) document {
	doc := document{
		Issues:       rep.Issues,
		Duplications: make([]report.DuplicationEntry, 0, len(rep.Duplications)),
		Coverage:     rep.Coverage,
	}

	if doc.Issues == nil {
		doc.Issues = []report.Issue{}
	}

	if doc.Coverage == nil {
		doc.Coverage = []report.CoverageEntry{}
	}

	for _, entry := range rep.Duplications {
		blocks := make([]report.DuplicationBlock, 0, len(entry.Blocks))

		for _, block := range entry.Blocks {
			if block.References == nil {
				block.References = []report.BlockReference{}
			}

			blocks = append(blocks, block)
		}

		entry.Blocks = blocks
		doc.Duplications = append(doc.Duplications, entry)
	}

	return doc
}
