// pkg/core/coord.go
package core

// SkyCoord is a point on the sphere in degrees. Lon is right ascension or
// terrestrial longitude, Lat is declination or latitude.
type SkyCoord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Frame is the reference coordinate system of a plot.
type Frame int

const (
	// Celestial is the sky-fixed (RA, Dec) frame.
	Celestial Frame = iota
	// Terrestrial is the Earth-fixed (lon, lat) frame.
	Terrestrial
)

// String returns the frame name.
func (f Frame) String() string {
	if f == Terrestrial {
		return "TERRESTRIAL"
	}
	return "CELESTIAL"
}

// MarshalText implements encoding.TextMarshaler.
func (f Frame) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Family is the projection shape.
type Family int

const (
	Mollweide Family = iota
	Aitoff
	Globe
	Zoom
)

// String returns the lower-case family name used on the command line.
func (f Family) String() string {
	switch f {
	case Aitoff:
		return "aitoff"
	case Globe:
		return "globe"
	case Zoom:
		return "zoom"
	default:
		return "mollweide"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
