// Package marker collects the points drawn on top of a sky map from an
// explicit list, an injection database and a catalog file.
package marker

import (
	"context"

	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

// Provider is one source of markers.
//
// A provider that cannot read its optional input returns a recoverable
// error (see skyerr.Warning) and no markers. Any other error aborts the
// aggregation.
type Provider interface {
	Source() core.MarkerSource
	Markers(ctx context.Context) ([]core.Marker, error)
}

// Aggregator merges the markers of its providers in registration order.
// Later markers are drawn over earlier ones, so callers register the
// explicit list first, then the database lookup, then the catalog.
type Aggregator struct {
	providers []Provider
}

// NewAggregator creates an aggregator over providers. Nil providers are skipped.
func NewAggregator(providers ...Provider) *Aggregator {
	a := &Aggregator{}
	for _, p := range providers {
		if p != nil {
			a.providers = append(a.providers, p)
		}
	}
	return a
}

// Aggregate runs every provider and returns the concatenated markers along
// with the recoverable warnings met on the way.
func (a *Aggregator) Aggregate(ctx context.Context) ([]core.Marker, []error, error) {
	var (
		out      []core.Marker
		warnings []error
	)
	for _, p := range a.providers {
		if err := ctx.Err(); err != nil {
			return nil, warnings, err
		}
		ms, err := p.Markers(ctx)
		if err != nil {
			if skyerr.IsRecoverable(err) {
				warnings = append(warnings, err)
				continue
			}
			return nil, warnings, err
		}
		for i := range ms {
			ms[i].Source = p.Source()
		}
		out = append(out, ms...)
	}
	return out, warnings, nil
}
