package geo

import (
	"math"

	"github.com/wroge/wgs84"
)

// EPSG:4978 is the Earth-centered, Earth-fixed cartesian system
var toECEF = wgs84.EPSG().Transform(4326, 4978)

// Geocentric converts a WGS84 geodetic position on the ellipsoid surface to
// the longitude and geocentric latitude of its direction from Earth's
// center, in degrees. Sky directions in the terrestrial frame are
// geocentric, so geodetic backdrop data must pass through here first.
func Geocentric(longitude, latitude float64) (lon, lat float64) {
	x, y, z := toECEF(longitude, latitude, 0)
	r := math.Sqrt(x*x + y*y + z*z)
	if r == 0 || math.IsNaN(r) {
		return longitude, latitude
	}
	lon = math.Atan2(y, x) * 180 / math.Pi
	lat = math.Asin(z/r) * 180 / math.Pi
	return lon, lat
}
