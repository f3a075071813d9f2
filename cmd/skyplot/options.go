package main

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/skyplot/skyplot/internal/config"
	"github.com/skyplot/skyplot/internal/database"
	"github.com/skyplot/skyplot/internal/frame"
	"github.com/skyplot/skyplot/internal/marker"
	"github.com/skyplot/skyplot/internal/render"
	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

// renderOptions translates the plot configuration into pipeline options.
func renderOptions(plot config.PlotConfig) (render.Options, error) {
	fr, err := frame.ParseFrame(plot.Frame)
	if err != nil {
		return render.Options{}, err
	}
	family, err := frame.ParseFamily(plot.Projection)
	if err != nil {
		return render.Options{}, err
	}

	hint, err := parseOrdering(plot.Nested)
	if err != nil {
		return render.Options{}, err
	}
	output, err := parseOrdering(plot.OutputOrdering)
	if err != nil {
		return render.Options{}, err
	}

	return render.Options{
		Projection: frame.Request{
			Frame:  fr,
			Family: family,
			Center: plot.Center,
			Radius: plot.Radius,
		},
		SchemeHint:    hint,
		OutputScheme:  output,
		AreaUnit:      core.ParseAreaUnit(plot.AreaUnit),
		Contours:      plot.Contours,
		Annotate:      plot.Annotate,
		Colorbar:      plot.Colorbar,
		CoastlinePath: plot.CoastlinePath,
	}, nil
}

// parseOrdering reads "nested" or "ring"; empty yields SchemeUnknown.
func parseOrdering(s string) (core.Scheme, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.SchemeUnknown, nil
	}
	scheme := core.ParseScheme(s)
	if scheme == core.SchemeUnknown {
		return 0, skyerr.Configf("parse ordering", skyerr.ErrInvalidOption, "unknown ordering %q", s)
	}
	return scheme, nil
}

// markerSources builds the marker providers. The returned database handle
// is nil when no injection database is configured; the caller closes it.
func markerSources(mc config.MarkerConfig, inj config.InjectionDBConfig) (render.MarkerSources, *gorm.DB, error) {
	style := core.MarkerStyle{
		Symbol:    mc.Symbol,
		Color:     mc.Color,
		EdgeColor: mc.EdgeColor,
		Size:      mc.Size,
	}

	explicit, err := marker.NewExplicitProvider(mc.RADec, style)
	if err != nil {
		return render.MarkerSources{}, nil, err
	}

	src := render.MarkerSources{
		Explicit:    explicit,
		Style:       style,
		CatalogPath: mc.CatalogPath,
		CatalogMax:  mc.CatalogMax,
	}
	if inj.Type == "" {
		return src, nil, nil
	}

	db, err := database.Open(inj)
	if err != nil {
		return render.MarkerSources{}, nil, skyerr.Source("open injection database", fmt.Errorf("%s: %w", inj.Type, err))
	}
	src.Finder = database.NewInjectionFinder(db, inj.AngleUnit)
	return src, db, nil
}
