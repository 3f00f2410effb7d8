package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// mapRows evaluates the mappings against every source row. Rows are mapped
// concurrently but results are collected positionally, so output order always
// equals input order. The first row failure cancels the remaining work and
// aborts the pass.
func mapRows(ctx context.Context, source []Record, mappings []FieldMapping) ([]Record, error) {
	mapped := make([]Record, len(source))

	g, ctx := errgroup.WithContext(ctx)
	for i, row := range source {
		i, row := i, row
		g.Go(func() error {
			out, err := mapRow(ctx, row, mappings)
			if err != nil {
				return err
			}
			mapped[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mapped, nil
}

// mapRow applies every mapping to one source row, in declaration order.
// The row is one unit: once a compute function fails, later mappings are not
// invoked for it.
func mapRow(ctx context.Context, row Record, mappings []FieldMapping) (Record, error) {
	out := make(Record, len(mappings))
	for _, m := range mappings {
		if m.Compute != nil {
			value, err := m.Compute(ctx, row)
			if err != nil {
				return nil, fmt.Errorf("compute field %q: %w", m.Name, err)
			}
			out[m.Name] = value
			continue
		}
		out[m.Name] = row[m.Source]
	}
	return out, nil
}
