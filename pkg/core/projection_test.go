package core

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_MollweideCelestial(t *testing.T) {
	d := NewProjectionDescriptor(Celestial, Mollweide, nil, 0, nil, nil)

	// center of the map is RA 180
	x, y, ok := d.Project(SkyCoord{Lon: 180, Lat: 0})
	require.True(t, ok)
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 0, y, 1e-12)

	// east is on the left
	x, _, _ = d.Project(SkyCoord{Lon: 270, Lat: 0})
	assert.Less(t, x, 0.0)

	// poles sit at ±√2
	_, y, _ = d.Project(SkyCoord{Lon: 0, Lat: 90})
	assert.InDelta(t, math.Sqrt2, y, 1e-9)

	// edge of the ellipse at the equator is 2√2
	x, _, _ = d.Project(SkyCoord{Lon: 0.000001, Lat: 0})
	assert.InDelta(t, 2*math.Sqrt2, math.Abs(x), 1e-6)
}

func TestProject_MollweideTerrestrialIsNotMirrored(t *testing.T) {
	obs := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	d := NewProjectionDescriptor(Terrestrial, Mollweide, &obs, 0, nil, nil)
	x, _, _ := d.ProjectNative(SkyCoord{Lon: 90, Lat: 0})
	assert.Greater(t, x, 0.0)
}

func TestProject_Aitoff(t *testing.T) {
	d := NewProjectionDescriptor(Terrestrial, Aitoff, nil, 0, nil, nil)
	x, y, ok := d.ProjectNative(SkyCoord{Lon: 0, Lat: 0})
	require.True(t, ok)
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 0, y, 1e-12)

	x, _, _ = d.ProjectNative(SkyCoord{Lon: 179.9999, Lat: 0})
	assert.InDelta(t, math.Pi, x, 1e-5)
}

func TestProject_GlobeHidesFarSide(t *testing.T) {
	center := SkyCoord{Lon: 210, Lat: 10}
	d := NewProjectionDescriptor(Celestial, Globe, nil, 0, &center, nil)

	x, y, ok := d.Project(center)
	require.True(t, ok)
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 0, y, 1e-12)

	_, _, ok = d.Project(SkyCoord{Lon: 30, Lat: -10})
	assert.False(t, ok)
}

func TestProject_ZoomRadius(t *testing.T) {
	center := SkyCoord{Lon: 100, Lat: 0}
	r := 4.0
	d := NewProjectionDescriptor(Celestial, Zoom, nil, 0, &center, &r)

	_, _, ok := d.Project(SkyCoord{Lon: 103, Lat: 0})
	assert.True(t, ok)
	_, _, ok = d.Project(SkyCoord{Lon: 105, Lat: 0})
	assert.False(t, ok)

	x, _, _ := d.Project(SkyCoord{Lon: 104 - 1e-9, Lat: 0})
	assert.InDelta(t, -1, x, 1e-6)
}

func TestProject_TerrestrialRotation(t *testing.T) {
	obs := time.Date(2017, 8, 17, 12, 41, 4, 0, time.UTC)
	d := NewProjectionDescriptor(Terrestrial, Mollweide, &obs, 156.35, nil, nil)

	icrs := SkyCoord{Lon: 197.45, Lat: -23.38}
	x1, y1, _ := d.Project(icrs)
	x2, y2, _ := d.ProjectNative(d.ToFrame(icrs))
	assert.Equal(t, x2, x1)
	assert.Equal(t, y2, y1)
	assert.InDelta(t, 41.1, d.ToFrame(icrs).Lon, 1e-9)
}

func TestProjectionDescriptor_CopiesInputs(t *testing.T) {
	center := SkyCoord{Lon: 1, Lat: 2}
	r := 3.0
	d := NewProjectionDescriptor(Celestial, Zoom, nil, 0, &center, &r)
	center.Lon = 99
	r = 99

	c, _ := d.Center()
	assert.Equal(t, 1.0, c.Lon)
	got, _ := d.Radius()
	assert.Equal(t, 3.0, got)
}

func TestProjectionDescriptor_CelestialDropsTime(t *testing.T) {
	obs := time.Now()
	d := NewProjectionDescriptor(Celestial, Mollweide, &obs, 42, nil, nil)
	_, ok := d.ObservationTime()
	assert.False(t, ok)
	assert.Equal(t, 0.0, d.SiderealAngle())
}

func TestProjectionDescriptor_MarshalJSON(t *testing.T) {
	r := 4.0
	center := SkyCoord{Lon: 210, Lat: 10}
	d := NewProjectionDescriptor(Celestial, Zoom, nil, 0, &center, &r)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"frame":"CELESTIAL","family":"zoom","siderealAngle":0,"center":{"lon":210,"lat":10},"radius":4}`, string(b))
}
