// Package backdrop loads the coastline lines drawn under terrestrial plots.
package backdrop

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/skyplot/skyplot/internal/geo"
	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

// coarse continental outlines, one closed line per land mass
//
//go:embed coastlines.geojson
var builtinCoastlines []byte

// Builtin returns the bundled low-resolution coastlines.
func Builtin() ([]core.Segment, error) {
	segs, err := ParseCoastlines(builtinCoastlines)
	if err != nil {
		return nil, skyerr.Warning("load coastlines", fmt.Errorf("%w: builtin: %v", skyerr.ErrSourceUnreadable, err))
	}
	return segs, nil
}

// LoadCoastlines reads a GeoJSON geometry, geometry collection or feature
// collection of geodetic (lon, lat) lines and returns one segment per line,
// in geocentric coordinates. Polygons contribute their rings; points are
// skipped. An empty path selects the bundled outlines. Any failure is
// recoverable: the plot is drawn without backdrop.
func LoadCoastlines(path string) ([]core.Segment, error) {
	if path == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, skyerr.Warning("load coastlines", fmt.Errorf("%w: %v", skyerr.ErrSourceUnreadable, err))
	}
	segs, err := ParseCoastlines(data)
	if err != nil {
		return nil, skyerr.Warning("load coastlines", fmt.Errorf("%w: %s: %v", skyerr.ErrSourceUnreadable, path, err))
	}
	return segs, nil
}

// ParseCoastlines converts GeoJSON data into geocentric segments.
func ParseCoastlines(data []byte) ([]core.Segment, error) {
	var geoms []geom.Geometry
	g, err := geom.UnmarshalGeoJSON(data)
	if err != nil {
		var fc geom.GeoJSONFeatureCollection
		if fcErr := fc.UnmarshalJSON(data); fcErr != nil {
			return nil, err
		}
		for _, f := range fc {
			geoms = append(geoms, f.Geometry)
		}
	} else {
		geoms = append(geoms, g)
	}

	var segs []core.Segment
	for _, g := range geoms {
		segs = appendGeometry(segs, g)
	}
	return segs, nil
}

func appendGeometry(segs []core.Segment, g geom.Geometry) []core.Segment {
	switch g.Type() {
	case geom.TypeLineString:
		ls, _ := g.AsLineString()
		segs = appendLine(segs, ls)
	case geom.TypeMultiLineString:
		mls, _ := g.AsMultiLineString()
		for i := 0; i < mls.NumLineStrings(); i++ {
			segs = appendLine(segs, mls.LineStringN(i))
		}
	case geom.TypePolygon:
		p, _ := g.AsPolygon()
		segs = appendPolygon(segs, p)
	case geom.TypeMultiPolygon:
		mp, _ := g.AsMultiPolygon()
		for i := 0; i < mp.NumPolygons(); i++ {
			segs = appendPolygon(segs, mp.PolygonN(i))
		}
	case geom.TypeGeometryCollection:
		gc, _ := g.AsGeometryCollection()
		for i := 0; i < gc.NumGeometries(); i++ {
			segs = appendGeometry(segs, gc.GeometryN(i))
		}
	}
	return segs
}

func appendPolygon(segs []core.Segment, p geom.Polygon) []core.Segment {
	segs = appendLine(segs, p.ExteriorRing())
	for i := 0; i < p.NumInteriorRings(); i++ {
		segs = appendLine(segs, p.InteriorRingN(i))
	}
	return segs
}

func appendLine(segs []core.Segment, ls geom.LineString) []core.Segment {
	seq := ls.Coordinates()
	n := seq.Length()
	if n < 2 {
		return segs
	}
	seg := make(core.Segment, n)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		lon, lat := geo.Geocentric(xy.X, xy.Y)
		seg[i] = core.SkyCoord{Lon: lon, Lat: lat}
	}
	return append(segs, seg)
}
