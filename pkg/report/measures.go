package report

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/Sumatoshi-tech/sonarexport/pkg/sonar"
)

// fullCoverage is the coverage percentage at which a file is left out.
const fullCoverage = 100.0

// ErrMalformedMetric indicates a measure value that is not a decimal number.
var ErrMalformedMetric = errors.New("malformed metric value")

// Metrics maps metric keys to values. Absent metrics read as 0.
type Metrics map[string]float64

// Get returns the value of name, or 0 when absent.
func (m Metrics) Get(name string) float64 {
	return m[name]
}

// ParseMeasures parses string-encoded measure values. A measure without a
// value counts as 0.
func ParseMeasures(measures []sonar.Measure) (Metrics, error) {
	metrics := make(Metrics, len(measures))

	for _, measure := range measures {
		if measure.Value == nil {
			metrics[measure.Metric] = 0

			continue
		}

		value, err := strconv.ParseFloat(*measure.Value, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("%w: %s=%q", ErrMalformedMetric, measure.Metric, *measure.Value)
		}

		metrics[measure.Metric] = value
	}

	return metrics, nil
}

// ComponentFile returns the component path, or its key when it has none.
func ComponentFile(component sonar.Component) string {
	if component.Path != "" {
		return component.Path
	}

	return component.Key
}

func parseComponent(component sonar.Component) (Metrics, error) {
	metrics, err := ParseMeasures(component.Measures)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", component.Key, err)
	}

	return metrics, nil
}

// CoverageFromComponents builds the coverage entries of files below full
// coverage. Components without measures are skipped.
func CoverageFromComponents(components []sonar.Component) ([]CoverageEntry, error) {
	var entries []CoverageEntry

	for _, component := range components {
		if len(component.Measures) == 0 {
			continue
		}

		metrics, err := parseComponent(component)
		if err != nil {
			return nil, err
		}

		coverage := metrics.Get(sonar.MetricCoverage)
		if coverage >= fullCoverage {
			continue
		}

		entries = append(entries, CoverageEntry{
			File:                ComponentFile(component),
			Coverage:            coverage,
			LineCoverage:        metrics.Get(sonar.MetricLineCoverage),
			BranchCoverage:      metrics.Get(sonar.MetricBranchCoverage),
			UncoveredLines:      int(metrics.Get(sonar.MetricUncoveredLines)),
			UncoveredConditions: int(metrics.Get(sonar.MetricUncoveredConditions)),
		})
	}

	return entries, nil
}

// DuplicationCandidate is a file with a non-zero duplication density whose
// blocks still have to be looked up.
type DuplicationCandidate struct {
	Key     string
	File    string
	Density float64
}

// DuplicationCandidates selects the files with duplicated_lines_density > 0.
func DuplicationCandidates(components []sonar.Component) ([]DuplicationCandidate, error) {
	var candidates []DuplicationCandidate

	for _, component := range components {
		metrics, err := parseComponent(component)
		if err != nil {
			return nil, err
		}

		density := metrics.Get(sonar.MetricDuplicatedLinesDensity)
		if density <= 0 {
			continue
		}

		candidates = append(candidates, DuplicationCandidate{
			Key:     component.Key,
			File:    ComponentFile(component),
			Density: density,
		})
	}

	return candidates, nil
}
