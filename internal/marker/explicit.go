package marker

import (
	"context"

	"github.com/skyplot/skyplot/internal/geo"
	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

// ExplicitProvider marks caller-supplied coordinates with one shared style.
type ExplicitProvider struct {
	coords []core.SkyCoord
	style  core.MarkerStyle
}

// NewExplicitProvider parses each entry of radec with geo.ParseSkyCoord.
// A coordinate that cannot be read is a configuration error.
func NewExplicitProvider(radec []string, style core.MarkerStyle) (*ExplicitProvider, error) {
	coords := make([]core.SkyCoord, 0, len(radec))
	for _, s := range radec {
		c, err := geo.ParseSkyCoord(s)
		if err != nil {
			return nil, skyerr.Configf("parse marker", skyerr.ErrInvalidAngle, "%v", err)
		}
		coords = append(coords, c)
	}
	return &ExplicitProvider{coords: coords, style: style}, nil
}

func (p *ExplicitProvider) Source() core.MarkerSource { return core.SourceExplicit }

func (p *ExplicitProvider) Markers(context.Context) ([]core.Marker, error) {
	out := make([]core.Marker, len(p.coords))
	for i, c := range p.coords {
		out[i] = core.Marker{Coord: c, Style: p.style}
	}
	return out, nil
}
