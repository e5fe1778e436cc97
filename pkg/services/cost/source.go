package cost

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

// Query describes one window of cost records to fetch from a source
type Query struct {
	Start       time.Time
	End         time.Time
	Granularity domain.Granularity
	Dimensions  []string            // provider dimension names, source defaults when empty
	Filter      map[string][]string // dimension -> accepted values
	Scope       string              // provider scope such as an Azure subscription path
}

func (q Query) Validate() error {
	if q.Start.IsZero() || q.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", domain.ErrInvalidRequest)
	}
	if q.Start.After(q.End) {
		return fmt.Errorf("%w: start %s is after end %s", domain.ErrInvalidRequest,
			q.Start.Format(time.DateOnly), q.End.Format(time.DateOnly))
	}
	if _, ok := domain.ParseGranularity(string(q.Granularity)); !ok {
		return fmt.Errorf("%w: unsupported granularity %q", domain.ErrInvalidRequest, q.Granularity)
	}
	return nil
}

// Clone returns a copy sharing no slices or maps with q
func (q Query) Clone() Query {
	out := q
	out.Dimensions = slices.Clone(q.Dimensions)
	if q.Filter != nil {
		out.Filter = make(map[string][]string, len(q.Filter))
		for k, v := range q.Filter {
			out.Filter[k] = slices.Clone(v)
		}
	}
	return out
}

// Source fetches provider-shaped cost rows.
// Fetch errors are reported as *domain.SourceUnavailableError.
type Source interface {
	Name() string
	// Dimensions returns the dimension fields every fetched row carries for q
	Dimensions(q Query) []string
	Fetch(ctx context.Context, q Query) ([]domain.RawRow, error)
}

// ResolveDimensions returns requested when non-empty, defaults otherwise, bounded to limit
func ResolveDimensions(requested, defaults []string, limit int) []string {
	dims := requested
	if len(dims) == 0 {
		dims = defaults
	}
	if limit > 0 && len(dims) > limit {
		dims = dims[:limit]
	}
	return slices.Clone(dims)
}

// ParseFilter parses DIM:v1,v2 expressions
func ParseFilter(exprs []string) (map[string][]string, error) {
	filter := make(map[string][]string)
	for _, expr := range exprs {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}
		dim, values, ok := strings.Cut(expr, ":")
		dim = strings.TrimSpace(dim)
		if !ok || dim == "" {
			return nil, fmt.Errorf("%w: filter %q must look like DIMENSION:value1,value2", domain.ErrInvalidRequest, expr)
		}
		for _, v := range strings.Split(values, ",") {
			if v = strings.TrimSpace(v); v != "" {
				filter[dim] = append(filter[dim], v)
			}
		}
		if len(filter[dim]) == 0 {
			return nil, fmt.Errorf("%w: filter %q has no values", domain.ErrInvalidRequest, expr)
		}
	}
	return filter, nil
}

// FilterKeys returns the filter dimensions in sorted order
func FilterKeys(filter map[string][]string) []string {
	return slices.Sorted(maps.Keys(filter))
}
