package sonar

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidPageSize is returned by FetchAll for a non-positive page size.
var ErrInvalidPageSize = errors.New("page size must be positive")

// Page describes one fetched page of an offset-paginated endpoint.
type Page struct {
	Number int // 1-based.
	Size   int
	Total  int
}

// Last reports whether no page follows this one. The comparison is >= so a
// trailing partial page is still fetched and total == 0 stops after page 1.
func (p Page) Last() bool {
	return p.Number*p.Size >= p.Total
}

// PageFunc fetches one page and returns its records in API order together
// with the paging block of the response.
type PageFunc[T any] func(ctx context.Context, page int) ([]T, Paging, error)

// ProgressFunc observes each fetched page.
type ProgressFunc func(ctx context.Context, page Page)

// FetchAll requests pages 1, 2, ... until Page.Last and returns all records
// in page order. Any page error aborts the fetch and discards the records
// gathered so far. progress may be nil.
func FetchAll[T any](ctx context.Context, pageSize int, fetch PageFunc[T], progress ProgressFunc) ([]T, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}

	var all []T

	for number := 1; ; number++ {
		records, paging, err := fetch(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", number, err)
		}

		all = append(all, records...)

		page := Page{Number: number, Size: pageSize, Total: paging.Total}

		if progress != nil {
			progress(ctx, page)
		}

		if page.Last() {
			return all, nil
		}
	}
}
