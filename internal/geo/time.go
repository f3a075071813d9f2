package geo

import (
	"math"
	"time"
)

// GPSEpoch is the origin of GPS time.
var GPSEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// leapSeconds lists the UTC instants at which GPS−UTC grew by one second.
var leapSeconds = []time.Time{
	time.Date(1981, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1982, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1983, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1985, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1988, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1991, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1992, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1993, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1994, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1996, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1997, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2006, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2012, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2015, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC),
}

// GPSToUTC converts seconds since the GPS epoch to a UTC timestamp.
func GPSToUTC(gps float64) time.Time {
	offset := 0
	for i, leap := range leapSeconds {
		// GPS time at which the (i+1)-th leap second took effect
		at := leap.Sub(GPSEpoch).Seconds() + float64(i+1)
		if gps >= at {
			offset = i + 1
		}
	}
	// float64 GPS times near 1e9 s only carry about 0.2 µs of precision
	whole, frac := math.Modf(gps - float64(offset))
	return GPSEpoch.Add(time.Duration(whole) * time.Second).
		Add(time.Duration(math.Round(frac*1e6)) * time.Microsecond)
}

// GreenwichSiderealAngle returns the Greenwich mean sidereal time at t as an
// angle in degrees in [0, 360), using the IAU 1982 expression with UT1 ≈ UTC.
func GreenwichSiderealAngle(t time.Time) float64 {
	jd := julianDate(t.UTC())
	d := jd - 2451545.0
	c := d / 36525
	gmst := 280.46061837 + 360.98564736629*d + 0.000387933*c*c - c*c*c/38710000
	gmst = math.Mod(gmst, 360)
	if gmst < 0 {
		gmst += 360
	}
	return gmst
}

func julianDate(t time.Time) float64 {
	// Unix epoch is JD 2440587.5
	return 2440587.5 + float64(t.UnixNano())/86400e9
}
