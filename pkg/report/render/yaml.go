package render

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/sonarexport/pkg/report"
)

const yamlIndent = 2

func renderYAML(w io.Writer, rep *report.Report, _ Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)

	err := enc.Encode(newDocument(rep))
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return enc.Close()
}
