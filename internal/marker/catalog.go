package marker

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

// Catalog markers have a fixed look; only the size depends on the row.
const (
	CatalogSymbol    = "*"
	CatalogColor     = "white"
	CatalogEdgeColor = "black"

	referenceNoise = 1e-7
)

// CatalogSize maps a noise level to a marker size: quieter sources are
// drawn larger.
func CatalogSize(noise float64) float64 {
	return 10 * math.Pow(noise/referenceNoise, -0.4)
}

// CatalogProvider marks the rows of a whitespace-separated (ra, dec, noise)
// table. Text after '#' is a comment. Angles are in degrees.
type CatalogProvider struct {
	path string
	max  int
}

// NewCatalogProvider reads path; max > 0 keeps only the first max rows.
func NewCatalogProvider(path string, max int) *CatalogProvider {
	return &CatalogProvider{path: path, max: max}
}

func (p *CatalogProvider) Source() core.MarkerSource { return core.SourceCatalog }

// Markers returns a recoverable error and no markers when the file is
// missing or any row cannot be read.
func (p *CatalogProvider) Markers(context.Context) ([]core.Marker, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, skyerr.Warning("read catalog", fmt.Errorf("%w: %v", skyerr.ErrSourceUnreadable, err))
	}
	defer f.Close()

	rows, err := parseCatalog(f)
	if err != nil {
		return nil, skyerr.Warning("read catalog", fmt.Errorf("%w: %s: %v", skyerr.ErrSourceUnreadable, p.path, err))
	}
	if p.max > 0 && len(rows) > p.max {
		rows = rows[:p.max]
	}

	out := make([]core.Marker, len(rows))
	for i, r := range rows {
		out[i] = core.Marker{
			Coord: core.SkyCoord{Lon: r.ra, Lat: r.dec},
			Style: core.MarkerStyle{
				Symbol:    CatalogSymbol,
				Color:     CatalogColor,
				EdgeColor: CatalogEdgeColor,
				Size:      CatalogSize(r.noise),
			},
		}
	}
	return out, nil
}

type catalogRow struct {
	ra, dec, noise float64
}

func parseCatalog(f *os.File) ([]catalogRow, error) {
	var rows []catalogRow
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want 3 columns, got %d", line, len(fields))
		}
		var v [3]float64
		for i, s := range fields {
			x, err := strconv.ParseFloat(s, 64)
			if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("line %d: bad number %q", line, s)
			}
			v[i] = x
		}
		if v[1] < -90 || v[1] > 90 {
			return nil, fmt.Errorf("line %d: declination %g out of range", line, v[1])
		}
		if v[2] <= 0 {
			return nil, fmt.Errorf("line %d: noise must be positive", line)
		}
		rows = append(rows, catalogRow{ra: v[0], dec: v[1], noise: v[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
