package render

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/sonarexport/pkg/report"
)

//go:embed schema.json
var reportSchema []byte

// ErrSchemaViolation indicates json output that does not match the report schema.
var ErrSchemaViolation = errors.New("report does not match schema")

func renderJSON(w io.Writer, rep *report.Report, opts Options) error {
	data, err := json.MarshalIndent(newDocument(rep), "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	if opts.ValidateJSON {
		err = Validate(data)
		if err != nil {
			return err
		}
	}

	_, err = w.Write(append(data, '\n'))

	return err
}

// Validate checks a json document against the report schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(reportSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate json: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		details = append(details, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(details, "; "))
}
