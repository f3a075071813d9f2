package marker

import (
	"context"

	"github.com/skyplot/skyplot/pkg/core"
)

// InjectionFinder resolves an object id to the injected sky position.
type InjectionFinder interface {
	FindInjection(ctx context.Context, objectID string) (core.SkyCoord, error)
}

// DatabaseProvider marks the injection correlated with one object id,
// drawn with the explicit marker style.
type DatabaseProvider struct {
	finder   InjectionFinder
	objectID string
	style    core.MarkerStyle
}

// NewDatabaseProvider creates a provider that looks objectID up through finder.
func NewDatabaseProvider(finder InjectionFinder, objectID string, style core.MarkerStyle) *DatabaseProvider {
	return &DatabaseProvider{finder: finder, objectID: objectID, style: style}
}

func (p *DatabaseProvider) Source() core.MarkerSource { return core.SourceDatabase }

// Markers returns exactly one marker. Lookup failures are not recoverable.
func (p *DatabaseProvider) Markers(ctx context.Context) ([]core.Marker, error) {
	c, err := p.finder.FindInjection(ctx, p.objectID)
	if err != nil {
		return nil, err
	}
	return []core.Marker{{Coord: c, Style: p.style}}, nil
}
