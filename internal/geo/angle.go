package geo

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/skyplot/skyplot/pkg/core"
)

// ErrInvalidAngle is returned when an angle or coordinate string cannot be read
var ErrInvalidAngle = errors.New("invalid angle")

const num = `(\d+(?:\.\d*)?|\.\d+)`

var (
	// 14h, 14h30m, 14h30m12.5s
	hmsPattern = regexp.MustCompile(`^([+-]?)` + num + `h(?:` + num + `m(?:` + num + `s)?)?$`)
	// 10d, -10d30m, +10d30m15s
	dmsPattern = regexp.MustCompile(`^([+-]?)` + num + `d(?:` + num + `m(?:` + num + `s)?)?$`)
	// 12:30:00 or -10:30
	colonPattern = regexp.MustCompile(`^([+-]?)(\d+):(\d+)(?::` + num + `)?$`)
	// 4, 4deg, 30arcmin, 30', 90arcsec, 90"
	unitPattern = regexp.MustCompile(`^([+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?)\s*(deg|degree|degrees|°|arcmin|'|arcsec|"|)$`)
)

// ParseSkyCoord parses a coordinate pair such as "14h 10d", "14h30m -10d30m",
// "213.5 -42", "12:30:00, +10:00:00" or "210deg 10deg". The first component
// may be given in hours or degrees, the second only in degrees. Bare numbers
// are degrees; colon notation means hours for the first component.
func ParseSkyCoord(s string) (core.SkyCoord, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	if len(fields) != 2 {
		return core.SkyCoord{}, fmt.Errorf("%w: %q is not a coordinate pair", ErrInvalidAngle, s)
	}
	lon, err := parseAngle(fields[0], true)
	if err != nil {
		return core.SkyCoord{}, err
	}
	lat, err := parseAngle(fields[1], false)
	if err != nil {
		return core.SkyCoord{}, err
	}
	if lat < -90 || lat > 90 {
		return core.SkyCoord{}, fmt.Errorf("%w: latitude %g out of range", ErrInvalidAngle, lat)
	}
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	return core.SkyCoord{Lon: lon, Lat: lat}, nil
}

// ParseAngularSize parses a positive angular size such as "4deg", "4d",
// "30arcmin", "30'", "90arcsec" or "2.5". Bare numbers are degrees.
func ParseAngularSize(s string) (float64, error) {
	v, err := parseAngle(strings.TrimSpace(s), false)
	if err != nil {
		return 0, err
	}
	if v <= 0 || v > 180 {
		return 0, fmt.Errorf("%w: angular size %q must be in (0, 180] degrees", ErrInvalidAngle, s)
	}
	return v, nil
}

// parseAngle reads one angle token in degrees.
func parseAngle(tok string, hours bool) (float64, error) {
	bad := fmt.Errorf("%w: cannot read %q", ErrInvalidAngle, tok)

	if m := hmsPattern.FindStringSubmatch(tok); m != nil {
		if !hours {
			return 0, bad
		}
		v, ok := sexagesimal(m[2], m[3], m[4])
		if !ok {
			return 0, bad
		}
		return signOf(m[1]) * v * 15, nil
	}
	if m := dmsPattern.FindStringSubmatch(tok); m != nil {
		v, ok := sexagesimal(m[2], m[3], m[4])
		if !ok {
			return 0, bad
		}
		return signOf(m[1]) * v, nil
	}
	if m := colonPattern.FindStringSubmatch(tok); m != nil {
		v, ok := sexagesimal(m[2], m[3], m[4])
		if !ok {
			return 0, bad
		}
		if hours {
			v *= 15
		}
		return signOf(m[1]) * v, nil
	}
	if m := unitPattern.FindStringSubmatch(tok); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, bad
		}
		switch m[2] {
		case "arcmin", "'":
			v /= 60
		case "arcsec", `"`:
			v /= 3600
		}
		return v, nil
	}
	return 0, bad
}

// sexagesimal combines whole, minute and second fields. Minutes and
// seconds, when present, must be below 60.
func sexagesimal(whole, minutes, seconds string) (float64, bool) {
	v, err := strconv.ParseFloat(whole, 64)
	if err != nil {
		return 0, false
	}
	for i, part := range []string{minutes, seconds} {
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil || f >= 60 {
			return 0, false
		}
		v += f / math.Pow(60, float64(i+1))
	}
	return v, true
}

func signOf(s string) float64 {
	if s == "-" {
		return -1
	}
	return 1
}
