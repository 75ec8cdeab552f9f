package sonar

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Paging is the pagination block returned by paginated endpoints.
type Paging struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Total     int `json:"total"`
}

// Issue is one record of /api/issues/search. Line and Scope are optional
// on the wire.
type Issue struct {
	Key       string `json:"key"`
	Component string `json:"component"`
	Project   string `json:"project"`
	Rule      string `json:"rule"`
	Severity  string `json:"severity"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	Scope     string `json:"scope,omitempty"`
	Line      *int   `json:"line,omitempty"`
}

// IssueSearchResponse is the body of /api/issues/search. Older servers only
// report the top-level total, newer ones also carry a paging block.
type IssueSearchResponse struct {
	Total  int     `json:"total"`
	P      int     `json:"p"`
	Ps     int     `json:"ps"`
	Paging *Paging `json:"paging,omitempty"`
	Issues []Issue `json:"issues"`
}

// PageInfo returns the paging block, falling back to the top-level fields.
func (r *IssueSearchResponse) PageInfo() Paging {
	if r.Paging != nil {
		return *r.Paging
	}

	return Paging{PageIndex: r.P, PageSize: r.Ps, Total: r.Total}
}

// Measure is a single metric value of a component. Value is nil when the
// server omits it; numeric values are string-encoded decimals.
type Measure struct {
	Metric string  `json:"metric"`
	Value  *string `json:"value,omitempty"`
}

// Component is one node of /api/measures/component_tree.
type Component struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Path      string    `json:"path,omitempty"`
	Qualifier string    `json:"qualifier"`
	Language  string    `json:"language,omitempty"`
	Measures  []Measure `json:"measures"`
}

// ComponentTreeResponse is the body of /api/measures/component_tree.
type ComponentTreeResponse struct {
	Paging        Paging      `json:"paging"`
	BaseComponent Component   `json:"baseComponent"`
	Components    []Component `json:"components"`
}

// RefID identifies a file inside a duplications response. The server sends
// it as a number or as a string depending on version.
type RefID string

// UnmarshalJSON accepts both `"1"` and `1`.
func (r *RefID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var s string

		err := json.Unmarshal(data, &s)
		if err != nil {
			return fmt.Errorf("decode _ref: %w", err)
		}

		*r = RefID(s)

		return nil
	}

	var n json.Number

	err := json.Unmarshal(data, &n)
	if err != nil {
		return fmt.Errorf("decode _ref %s: %w", data, err)
	}

	*r = RefID(n.String())

	return nil
}

// Block is a line range inside a duplication group.
type Block struct {
	From int   `json:"from"`
	Size int   `json:"size"`
	Ref  RefID `json:"_ref"`
}

// Duplication is one group of equivalent blocks. The first block lies in the
// requested file.
type Duplication struct {
	Blocks []Block `json:"blocks"`
}

// DuplicationFile describes a file referenced by a duplication block.
type DuplicationFile struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	ProjectName string `json:"projectName,omitempty"`
}

// DuplicationsResponse is the body of /api/duplications/show.
type DuplicationsResponse struct {
	Duplications []Duplication             `json:"duplications"`
	Files        map[string]DuplicationFile `json:"files"`
}
