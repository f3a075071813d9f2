// pkg/core/projection.go
package core

import (
	"encoding/json"
	"math"
	"time"
)

// DefaultZoomRadius is the angular radius, in degrees, used by zoom
// projections when none was requested.
const DefaultZoomRadius = 10.0

// ProjectionDescriptor fully determines the coordinate transform of a plot.
// The same descriptor projects the map raster, the contour lines, the
// markers and the backdrop. It is built once by the frame resolver and is
// read-only afterwards: all fields are unexported and getters return copies.
type ProjectionDescriptor struct {
	frame    Frame
	family   Family
	obsTime  *time.Time
	sidereal float64
	center   *SkyCoord
	radius   *float64
}

// NewProjectionDescriptor builds a descriptor. siderealDeg is the Greenwich
// sidereal angle used to rotate celestial coordinates into the terrestrial
// frame and is ignored for the celestial frame. Pointer arguments are copied.
func NewProjectionDescriptor(
	frame Frame,
	family Family,
	obsTime *time.Time,
	siderealDeg float64,
	center *SkyCoord,
	radiusDeg *float64,
) ProjectionDescriptor {
	d := ProjectionDescriptor{frame: frame, family: family}
	if frame == Terrestrial {
		if obsTime != nil {
			t := obsTime.UTC()
			d.obsTime = &t
		}
		d.sidereal = siderealDeg
	}
	if center != nil {
		c := *center
		d.center = &c
	}
	if radiusDeg != nil {
		r := *radiusDeg
		d.radius = &r
	}
	return d
}

func (d ProjectionDescriptor) Frame() Frame   { return d.frame }
func (d ProjectionDescriptor) Family() Family { return d.family }

// SiderealAngle returns the frame rotation in degrees (0 for celestial).
func (d ProjectionDescriptor) SiderealAngle() float64 { return d.sidereal }

// ObservationTime returns the UTC observation time of a terrestrial plot.
func (d ProjectionDescriptor) ObservationTime() (time.Time, bool) {
	if d.obsTime == nil {
		return time.Time{}, false
	}
	return *d.obsTime, true
}

// Center returns the requested projection center, if any.
func (d ProjectionDescriptor) Center() (SkyCoord, bool) {
	if d.center == nil {
		return SkyCoord{}, false
	}
	return *d.center, true
}

// Radius returns the requested zoom radius in degrees, if any.
func (d ProjectionDescriptor) Radius() (float64, bool) {
	if d.radius == nil {
		return 0, false
	}
	return *d.radius, true
}

// EffectiveCenter is the point the projection is centered on, in frame
// coordinates. Mollweide and Aitoff ignore a requested center: celestial
// maps are centered on RA 180°, terrestrial maps on the prime meridian.
// Globe and zoom use the requested center or fall back to (0, 0).
func (d ProjectionDescriptor) EffectiveCenter() SkyCoord {
	switch d.family {
	case Globe, Zoom:
		if d.center != nil {
			return *d.center
		}
		return SkyCoord{}
	default:
		if d.frame == Celestial {
			return SkyCoord{Lon: 180}
		}
		return SkyCoord{}
	}
}

// EffectiveRadius is the zoom radius in degrees, falling back to DefaultZoomRadius.
func (d ProjectionDescriptor) EffectiveRadius() float64 {
	if d.radius != nil {
		return *d.radius
	}
	return DefaultZoomRadius
}

// ToFrame converts an ICRS coordinate into the descriptor's frame.
func (d ProjectionDescriptor) ToFrame(c SkyCoord) SkyCoord {
	if d.frame == Celestial {
		return c
	}
	return SkyCoord{Lon: wrap360(c.Lon - d.sidereal), Lat: c.Lat}
}

// Project maps an ICRS coordinate to the display plane. ok is false when
// the point is not drawn (far side of a globe, outside a zoom).
func (d ProjectionDescriptor) Project(c SkyCoord) (x, y float64, ok bool) {
	return d.ProjectNative(d.ToFrame(c))
}

// ProjectNative maps a coordinate that is already in the descriptor's frame,
// such as a coastline vertex, to the display plane.
func (d ProjectionDescriptor) ProjectNative(c SkyCoord) (x, y float64, ok bool) {
	center := d.EffectiveCenter()
	lam := deg2rad(wrap180(c.Lon - center.Lon))
	phi := deg2rad(c.Lat)

	switch d.family {
	case Aitoff:
		x, y = aitoff(lam, phi)
		ok = true
	case Globe:
		x, y, ok = orthographic(lam, phi, deg2rad(center.Lat))
	case Zoom:
		x, y, ok = gnomonic(lam, phi, deg2rad(center.Lat))
		scale := 1 / math.Tan(deg2rad(d.EffectiveRadius()))
		x, y = x*scale, y*scale
		ok = ok && math.Hypot(x, y) <= 1
	default:
		x, y = mollweide(lam, phi)
		ok = true
	}
	// Sky maps are drawn as seen from inside the sphere: east is on the left.
	if d.frame == Celestial {
		x = -x
	}
	return x, y, ok
}

type descriptorJSON struct {
	Frame           Frame      `json:"frame"`
	Family          Family     `json:"family"`
	ObservationTime *time.Time `json:"observationTime,omitempty"`
	SiderealAngle   float64    `json:"siderealAngle"`
	Center          *SkyCoord  `json:"center,omitempty"`
	Radius          *float64   `json:"radius,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d ProjectionDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(descriptorJSON{
		Frame:           d.frame,
		Family:          d.family,
		ObservationTime: d.obsTime,
		SiderealAngle:   d.sidereal,
		Center:          d.center,
		Radius:          d.radius,
	})
}

func mollweide(lam, phi float64) (x, y float64) {
	theta := phi
	if math.Abs(phi) < math.Pi/2 {
		target := math.Pi * math.Sin(phi)
		for i := 0; i < 50; i++ {
			f := 2*theta + math.Sin(2*theta) - target
			df := 2 + 2*math.Cos(2*theta)
			if df == 0 {
				break
			}
			step := f / df
			theta -= step
			if math.Abs(step) < 1e-12 {
				break
			}
		}
	}
	x = 2 * math.Sqrt2 / math.Pi * lam * math.Cos(theta)
	y = math.Sqrt2 * math.Sin(theta)
	return x, y
}

func aitoff(lam, phi float64) (x, y float64) {
	alpha := math.Acos(math.Cos(phi) * math.Cos(lam/2))
	sinc := 1.0
	if alpha != 0 {
		sinc = math.Sin(alpha) / alpha
	}
	x = 2 * math.Cos(phi) * math.Sin(lam/2) / sinc
	y = math.Sin(phi) / sinc
	return x, y
}

func orthographic(lam, phi, phi0 float64) (x, y float64, ok bool) {
	cosc := math.Sin(phi0)*math.Sin(phi) + math.Cos(phi0)*math.Cos(phi)*math.Cos(lam)
	x = math.Cos(phi) * math.Sin(lam)
	y = math.Cos(phi0)*math.Sin(phi) - math.Sin(phi0)*math.Cos(phi)*math.Cos(lam)
	return x, y, cosc >= 0
}

func gnomonic(lam, phi, phi0 float64) (x, y float64, ok bool) {
	cosc := math.Sin(phi0)*math.Sin(phi) + math.Cos(phi0)*math.Cos(phi)*math.Cos(lam)
	if cosc <= 0 {
		return 0, 0, false
	}
	x = math.Cos(phi) * math.Sin(lam) / cosc
	y = (math.Cos(phi0)*math.Sin(phi) - math.Sin(phi0)*math.Cos(phi)*math.Cos(lam)) / cosc
	return x, y, true
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func wrap360(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func wrap180(d float64) float64 {
	d = wrap360(d + 180)
	return d - 180
}
