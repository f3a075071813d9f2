// Package frame resolves a requested frame and projection into the single
// projection descriptor shared by every drawing step.
package frame

import (
	"fmt"
	"strings"
	"time"

	"github.com/skyplot/skyplot/internal/geo"
	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

// Request is the user-facing projection configuration.
type Request struct {
	Frame  core.Frame
	Family core.Family
	// GPSTime is the observation time; required for the terrestrial frame.
	GPSTime *float64
	// Center is a coordinate string such as "14h 10d". Used by globe and zoom.
	Center string
	// Radius is an angular size such as "4deg". Used by zoom.
	Radius string
}

// ParseFrame reads "celestial" or "terrestrial" (also "geo"). Empty means celestial.
func ParseFrame(s string) (core.Frame, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "celestial", "astro", "icrs":
		return core.Celestial, nil
	case "terrestrial", "geo":
		return core.Terrestrial, nil
	default:
		return 0, skyerr.Configf("parse frame", skyerr.ErrInvalidOption, "unknown frame %q", s)
	}
}

// ParseFamily reads a projection family name. Empty means mollweide.
func ParseFamily(s string) (core.Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mollweide":
		return core.Mollweide, nil
	case "aitoff":
		return core.Aitoff, nil
	case "globe":
		return core.Globe, nil
	case "zoom":
		return core.Zoom, nil
	default:
		return 0, skyerr.Configf("parse projection", skyerr.ErrInvalidOption, "unknown projection %q", s)
	}
}

// Resolve validates req and builds the projection descriptor.
//
// The terrestrial frame needs an observation time, which is converted from
// GPS seconds to UTC and then to the Greenwich sidereal angle that rotates
// the sky into the Earth-fixed frame. The celestial frame ignores the time.
// Globe and zoom read the center; zoom also reads the radius. Both are
// optional and the descriptor falls back to its defaults when they are
// missing. Mollweide and Aitoff accept but ignore center and radius, and
// globe ignores radius; see Ignored.
func Resolve(req Request) (core.ProjectionDescriptor, error) {
	var (
		obsTime  *time.Time
		sidereal float64
		center   *core.SkyCoord
		radius   *float64
	)

	switch req.Frame {
	case core.Celestial:
	case core.Terrestrial:
		if req.GPSTime == nil {
			return core.ProjectionDescriptor{}, skyerr.Config("resolve frame", skyerr.ErrMissingObservationTime)
		}
		t := geo.GPSToUTC(*req.GPSTime)
		obsTime = &t
		sidereal = geo.GreenwichSiderealAngle(t)
	default:
		return core.ProjectionDescriptor{}, skyerr.Configf("resolve frame", skyerr.ErrInvalidOption, "unknown frame %d", req.Frame)
	}

	switch req.Family {
	case core.Mollweide, core.Aitoff:
	case core.Globe, core.Zoom:
		if strings.TrimSpace(req.Center) != "" {
			c, err := geo.ParseSkyCoord(req.Center)
			if err != nil {
				return core.ProjectionDescriptor{}, skyerr.Configf("resolve projection", skyerr.ErrInvalidAngle,
					"projection center: %v", err)
			}
			center = &c
		}
		if req.Family == core.Zoom && strings.TrimSpace(req.Radius) != "" {
			r, err := geo.ParseAngularSize(req.Radius)
			if err != nil {
				return core.ProjectionDescriptor{}, skyerr.Configf("resolve projection", skyerr.ErrInvalidAngle,
					"zoom radius: %v", err)
			}
			radius = &r
		}
	default:
		return core.ProjectionDescriptor{}, skyerr.Configf("resolve projection", skyerr.ErrInvalidOption, "unknown projection %d", req.Family)
	}

	return core.NewProjectionDescriptor(req.Frame, req.Family, obsTime, sidereal, center, radius), nil
}

// Ignored lists the options of req that have no effect on the descriptor.
func (req Request) Ignored() []string {
	var out []string
	if req.Frame == core.Celestial && req.GPSTime != nil {
		out = append(out, "observation time")
	}
	hasCenter := strings.TrimSpace(req.Center) != ""
	hasRadius := strings.TrimSpace(req.Radius) != ""
	switch req.Family {
	case core.Mollweide, core.Aitoff:
		if hasCenter {
			out = append(out, fmt.Sprintf("center (unused by %s)", req.Family))
		}
		if hasRadius {
			out = append(out, fmt.Sprintf("radius (unused by %s)", req.Family))
		}
	case core.Globe:
		if hasRadius {
			out = append(out, "radius (unused by globe)")
		}
	}
	return out
}
