// Package skymap holds the numerical engine of the plotter: probability
// density and greedy credible levels of a HEALPix sky map.
package skymap

import (
	"github.com/skyplot/skyplot/internal/healpix"
	"github.com/skyplot/skyplot/pkg/core"
)

// ToDensity converts probability per pixel into probability per unit area.
// The map length must be 12·k² for some positive k.
func ToDensity(m core.SkyMap, unit core.AreaUnit) (core.DensityMap, error) {
	nside, err := healpix.Npix2Nside(m.Len())
	if err != nil {
		return core.DensityMap{}, err
	}
	area := healpix.PixelArea(nside, unit)

	out := make([]float64, m.Len())
	for i, v := range m.Values {
		out[i] = v / area
	}
	return core.DensityMap{Values: out, Scheme: m.Scheme, Unit: unit}, nil
}
