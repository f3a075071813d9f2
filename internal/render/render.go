// Package render assembles the render request handed to the drawing backend.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/skyplot/skyplot/internal/backdrop"
	"github.com/skyplot/skyplot/internal/frame"
	"github.com/skyplot/skyplot/internal/healpix"
	"github.com/skyplot/skyplot/internal/marker"
	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/internal/skymap"
	"github.com/skyplot/skyplot/pkg/core"
)

// Options is the per-render configuration.
type Options struct {
	// Projection selects frame and family. GPSTime is taken from the map
	// metadata and any value set here is overwritten.
	Projection frame.Request
	// SchemeHint forces the ordering of a map whose own ordering is unknown.
	SchemeHint core.Scheme
	// OutputScheme, when set, is the ordering of the arrays in the request.
	OutputScheme core.Scheme
	AreaUnit     core.AreaUnit
	// Contours are confidence percentages in [0, 100].
	Contours      []float64
	Annotate      bool
	Colorbar      bool
	CoastlinePath string
}

// MarkerSources configures the three marker providers. The database
// lookup needs the map's object id, so providers are built per render.
type MarkerSources struct {
	Explicit    *marker.ExplicitProvider
	Finder      marker.InjectionFinder
	Style       core.MarkerStyle
	CatalogPath string
	CatalogMax  int
}

// Pipeline turns a sky map and its metadata into a render request.
type Pipeline struct {
	opts    Options
	markers MarkerSources
	logger  *slog.Logger
	metrics *Metrics
}

// NewPipeline creates a pipeline. metrics may be nil.
func NewPipeline(opts Options, markers MarkerSources, logger *slog.Logger, metrics *Metrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{opts: opts, markers: markers, logger: logger, metrics: metrics}
}

// Build runs every stage and returns the request. Configuration and
// data-source errors abort the build; recoverable source failures are
// logged and listed in the request's warnings.
func (p *Pipeline) Build(ctx context.Context, m core.SkyMap, meta core.Metadata) (*core.RenderRequest, error) {
	start := time.Now()
	req, err := p.build(ctx, m, meta)
	if p.metrics != nil {
		p.metrics.record(ctx, req, err, time.Since(start))
	}
	return req, err
}

func (p *Pipeline) build(ctx context.Context, m core.SkyMap, meta core.Metadata) (*core.RenderRequest, error) {
	if err := validatePercents(p.opts.Contours); err != nil {
		return nil, err
	}

	scheme, err := healpix.ResolveScheme(m.Scheme, p.opts.SchemeHint, meta)
	if err != nil {
		return nil, err
	}
	m = core.SkyMap{Values: m.Values, Scheme: scheme}
	if p.opts.OutputScheme != core.SchemeUnknown && p.opts.OutputScheme != scheme {
		if m, err = healpix.Reorder(m, p.opts.OutputScheme); err != nil {
			return nil, err
		}
		p.logger.Debug("Reordered sky map", "from", scheme, "to", m.Scheme)
	}

	nside, err := healpix.Npix2Nside(m.Len())
	if err != nil {
		return nil, err
	}

	density, err := skymap.ToDensity(m, p.opts.AreaUnit)
	if err != nil {
		return nil, err
	}

	req := &core.RenderRequest{
		ObjectID: meta.ObjectID,
		Nside:    nside,
		Density:  density,
		VMin:     0,
		VMax:     density.Max(),
		Colorbar: p.opts.Colorbar,
	}
	if p.opts.Colorbar {
		req.ColorbarLabel = "prob. per " + unitLabel(p.opts.AreaUnit)
	}

	if len(p.opts.Contours) > 0 {
		levels := skymap.Rank(m)
		req.Levels = &levels
		req.Contours = skymap.Contours(levels, p.opts.Contours, healpix.PixelArea(nside, core.SquareDegrees))
	}

	projReq := p.opts.Projection
	projReq.GPSTime = nil
	if meta.HasGPSTime {
		t := meta.GPSTime
		projReq.GPSTime = &t
	}
	desc, err := frame.Resolve(projReq)
	if err != nil {
		return nil, err
	}
	for _, opt := range projReq.Ignored() {
		p.logger.Debug("Option has no effect", "option", opt, "projection", desc.Family())
	}
	req.Projection = desc

	var warnings []error
	if desc.Frame() == core.Terrestrial {
		segs, err := backdrop.LoadCoastlines(p.opts.CoastlinePath)
		if err != nil {
			if !skyerr.IsRecoverable(err) {
				return nil, err
			}
			warnings = append(warnings, err)
		}
		req.Backdrop = segs
	}

	markers, markerWarnings, err := p.aggregator(meta).Aggregate(ctx)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, markerWarnings...)
	for i := range markers {
		markers[i].X, markers[i].Y, markers[i].Visible = desc.Project(markers[i].Coord)
	}
	req.Markers = markers

	if p.opts.Annotate {
		req.Annotation = skymap.Annotate(meta, req.Contours)
	}

	for _, w := range warnings {
		p.logger.Warn("Skipping source", "source", sourceOf(w), "error", w)
		req.Warnings = append(req.Warnings, w.Error())
	}

	p.logger.Info("Render request built",
		"objectId", meta.ObjectID,
		"nside", nside,
		"scheme", m.Scheme,
		"frame", desc.Frame(),
		"projection", desc.Family(),
		"contours", len(req.Contours),
		"markers", len(req.Markers),
		"warnings", len(req.Warnings),
	)
	return req, nil
}

func (p *Pipeline) aggregator(meta core.Metadata) *marker.Aggregator {
	var providers []marker.Provider
	if p.markers.Explicit != nil {
		providers = append(providers, p.markers.Explicit)
	}
	if p.markers.Finder != nil {
		providers = append(providers, marker.NewDatabaseProvider(p.markers.Finder, meta.ObjectID, p.markers.Style))
	}
	if p.markers.CatalogPath != "" {
		providers = append(providers, marker.NewCatalogProvider(p.markers.CatalogPath, p.markers.CatalogMax))
	}
	return marker.NewAggregator(providers...)
}

func validatePercents(percents []float64) error {
	for _, pct := range percents {
		if pct < 0 || pct > 100 {
			return skyerr.Configf("contours", skyerr.ErrInvalidOption, "contour %g%% outside [0, 100]", pct)
		}
	}
	return nil
}

func unitLabel(u core.AreaUnit) string {
	if u == core.Steradians {
		return "sr"
	}
	return "deg²"
}

func sourceOf(err error) string {
	var ce *skyerr.ClassifiedError
	if errors.As(err, &ce) && ce.Op != "" {
		return ce.Op
	}
	return fmt.Sprintf("%T", err)
}
