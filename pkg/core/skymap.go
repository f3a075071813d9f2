// pkg/core/skymap.go
package core

import "strings"

// Scheme is a HEALPix pixel indexing scheme.
type Scheme int

const (
	// SchemeUnknown means the ordering has not been declared.
	SchemeUnknown Scheme = iota
	// SchemeNested is the hierarchical ordering.
	SchemeNested
	// SchemeRing is the iso-latitude ring ordering.
	SchemeRing
)

// String returns the scheme name as written in map metadata.
func (s Scheme) String() string {
	switch s {
	case SchemeNested:
		return "NESTED"
	case SchemeRing:
		return "RING"
	default:
		return "UNKNOWN"
	}
}

// ParseScheme reads a scheme name. Empty or unrecognized input yields SchemeUnknown.
func ParseScheme(s string) Scheme {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NESTED", "NEST":
		return SchemeNested
	case "RING":
		return SchemeRing
	default:
		return SchemeUnknown
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Scheme) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scheme) UnmarshalText(b []byte) error {
	*s = ParseScheme(string(b))
	return nil
}

// AreaUnit selects the unit used for pixel areas and densities.
type AreaUnit int

const (
	// SquareDegrees is the default area unit.
	SquareDegrees AreaUnit = iota
	// Steradians is the natural solid-angle unit.
	Steradians
)

// String returns the short unit label.
func (u AreaUnit) String() string {
	if u == Steradians {
		return "sr"
	}
	return "deg2"
}

// ParseAreaUnit reads "deg2" or "sr"; anything else falls back to square degrees.
func ParseAreaUnit(s string) AreaUnit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sr", "steradian", "steradians":
		return Steradians
	default:
		return SquareDegrees
	}
}

// SkyMap is a pixelized probability mass map. Values are never mutated by the engine.
type SkyMap struct {
	Values []float64
	Scheme Scheme
}

// Len returns the number of pixels.
func (m SkyMap) Len() int {
	return len(m.Values)
}

// Total returns the summed probability mass.
func (m SkyMap) Total() float64 {
	var sum float64
	for _, v := range m.Values {
		sum += v
	}
	return sum
}

// Metadata is the key-value record read alongside the map.
type Metadata struct {
	// GPSTime is the observation time in seconds since the GPS epoch.
	GPSTime float64 `json:"gps_time"`
	// HasGPSTime is false when the input did not carry an observation time.
	HasGPSTime bool   `json:"-"`
	Scheme     Scheme `json:"ordering"`
	// ObjectID correlates the map with the injection database. Empty when absent.
	ObjectID string `json:"objid,omitempty"`
}

// DensityMap holds probability per unit area, in the same ordering as its source map.
type DensityMap struct {
	Values []float64 `json:"values"`
	Scheme Scheme    `json:"scheme"`
	Unit   AreaUnit  `json:"-"`
}

// Max returns the largest density, or 0 for an empty map.
func (d DensityMap) Max() float64 {
	var max float64
	for _, v := range d.Values {
		if v > max {
			max = v
		}
	}
	return max
}

// CredibleLevelMap holds the greedy credible level of every pixel, each in [0, 1].
type CredibleLevelMap struct {
	Values []float64 `json:"values"`
	Scheme Scheme    `json:"scheme"`
}

// Contour summarizes one requested confidence contour.
type Contour struct {
	Percent    float64 `json:"percent"`
	Level      float64 `json:"level"`
	PixelCount int     `json:"pixelCount"`
	// Area is the enclosed area in square degrees, rounded to the nearest integer.
	Area int `json:"area"`
}
