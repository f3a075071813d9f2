package healpix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

func TestNpix2Nside(t *testing.T) {
	tests := []struct {
		npix    int
		want    int
		wantErr bool
	}{
		{12, 1, false},
		{48, 2, false},
		{108, 3, false},
		{12 * 1024 * 1024, 1024, false},
		{0, 0, true},
		{13, 0, true},
		{24, 0, true},
		{-12, 0, true},
	}
	for _, tt := range tests {
		got, err := Npix2Nside(tt.npix)
		if tt.wantErr {
			require.Error(t, err, "npix=%d", tt.npix)
			assert.True(t, skyerr.IsConfiguration(err))
			assert.ErrorIs(t, err, skyerr.ErrInvalidResolution)
			continue
		}
		require.NoError(t, err, "npix=%d", tt.npix)
		assert.Equal(t, tt.want, got)
	}
}

func TestPixelArea(t *testing.T) {
	assert.InDelta(t, math.Pi/3, PixelArea(1, core.Steradians), 1e-15)
	assert.InDelta(t, 3437.746770784939, PixelArea(1, core.SquareDegrees), 1e-9)
	assert.InDelta(t, 859.4366926962348, PixelArea(2, core.SquareDegrees), 1e-9)

	// total area of the sphere
	for _, nside := range []int{1, 2, 4, 64} {
		total := PixelArea(nside, core.SquareDegrees) * float64(Nside2Npix(nside))
		assert.InDelta(t, 41252.96124941927, total, 1e-6)
	}
}

func TestNest2Ring_Nside1IsIdentity(t *testing.T) {
	for i := 0; i < 12; i++ {
		r, err := Nest2Ring(1, i)
		require.NoError(t, err)
		assert.Equal(t, i, r)
		n, err := Ring2Nest(1, i)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
}

func TestNest2Ring_KnownValues(t *testing.T) {
	// first nested pixel of face 0 is the southernmost corner of that face
	r, err := Nest2Ring(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 13, r)

	// last nested pixel of face 0 touches the north pole
	r, err = Nest2Ring(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, r)

	n, err := Ring2Nest(2, 13)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestNestRingRoundTripIsPermutation(t *testing.T) {
	for _, nside := range []int{1, 2, 4, 8, 16} {
		npix := Nside2Npix(nside)
		seen := make([]bool, npix)
		for i := 0; i < npix; i++ {
			r, err := Nest2Ring(nside, i)
			require.NoError(t, err)
			require.True(t, r >= 0 && r < npix, "nside=%d nest=%d ring=%d", nside, i, r)
			require.False(t, seen[r], "nside=%d ring %d produced twice", nside, r)
			seen[r] = true

			back, err := Ring2Nest(nside, r)
			require.NoError(t, err)
			require.Equal(t, i, back, "nside=%d", nside)
		}
	}
}

func TestNest2Ring_Errors(t *testing.T) {
	_, err := Nest2Ring(3, 0)
	assert.True(t, skyerr.IsConfiguration(err))

	_, err = Nest2Ring(2, 48)
	assert.True(t, skyerr.IsConfiguration(err))

	_, err = Ring2Nest(2, -1)
	assert.True(t, skyerr.IsConfiguration(err))
}

func TestResolveScheme(t *testing.T) {
	nested := core.Metadata{Scheme: core.SchemeNested}
	ring := core.Metadata{Scheme: core.SchemeRing}
	none := core.Metadata{}

	tests := []struct {
		name     string
		native   core.Scheme
		hint     core.Scheme
		meta     core.Metadata
		want     core.Scheme
		sentinel error
	}{
		{"native wins", core.SchemeRing, core.SchemeNested, none, core.SchemeRing, nil},
		{"native agrees with metadata", core.SchemeNested, core.SchemeUnknown, nested, core.SchemeNested, nil},
		{"native contradicts metadata", core.SchemeNested, core.SchemeUnknown, ring, 0, skyerr.ErrSchemeMismatch},
		{"hint", core.SchemeUnknown, core.SchemeRing, nested, core.SchemeRing, nil},
		{"metadata", core.SchemeUnknown, core.SchemeUnknown, nested, core.SchemeNested, nil},
		{"undeclared", core.SchemeUnknown, core.SchemeUnknown, none, 0, skyerr.ErrSchemeUndeclared},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveScheme(tt.native, tt.hint, tt.meta)
			if tt.sentinel != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.sentinel)
				assert.True(t, skyerr.IsConfiguration(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAt(t *testing.T) {
	m := core.SkyMap{Values: []float64{0.1, 0.2, 0.3}, Scheme: core.SchemeRing}

	v, err := At(m, core.SchemeRing, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.2, v)

	_, err = At(m, core.SchemeNested, 1)
	assert.ErrorIs(t, err, skyerr.ErrSchemeMismatch)

	_, err = At(core.SkyMap{Values: m.Values}, core.SchemeRing, 1)
	assert.ErrorIs(t, err, skyerr.ErrSchemeUndeclared)

	_, err = At(m, core.SchemeRing, 3)
	assert.True(t, skyerr.IsConfiguration(err))
}

func TestReorder(t *testing.T) {
	values := make([]float64, 48)
	for i := range values {
		values[i] = float64(i)
	}
	nested := core.SkyMap{Values: values, Scheme: core.SchemeNested}

	ring, err := Reorder(nested, core.SchemeRing)
	require.NoError(t, err)
	assert.Equal(t, core.SchemeRing, ring.Scheme)
	assert.Equal(t, 0.0, ring.Values[13])
	assert.Equal(t, 3.0, ring.Values[0])
	assert.Equal(t, float64(47), values[47], "input must not be modified")

	back, err := Reorder(ring, core.SchemeNested)
	require.NoError(t, err)
	assert.Equal(t, values, back.Values)

	// accessor agrees across orderings
	for i := 0; i < 48; i++ {
		r, _ := Nest2Ring(2, i)
		a, err := At(nested, core.SchemeNested, i)
		require.NoError(t, err)
		b, err := At(ring, core.SchemeRing, r)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestReorder_ReadsEveryPixelOnce(t *testing.T) {
	values := make([]float64, 192)
	for i := range values {
		values[i] = float64(i + 1)
	}
	ring, err := Reorder(core.SkyMap{Values: values, Scheme: core.SchemeRing}, core.SchemeNested)
	require.NoError(t, err)

	seen := make(map[float64]bool, len(values))
	for j, v := range ring.Values {
		assert.False(t, seen[v], "pixel %d duplicated", j)
		seen[v] = true

		r, err := Nest2Ring(4, j)
		require.NoError(t, err)
		assert.Equal(t, values[r], v)
	}
	assert.Len(t, seen, len(values))
}

func TestReorder_Errors(t *testing.T) {
	_, err := Reorder(core.SkyMap{Values: make([]float64, 12)}, core.SchemeRing)
	assert.ErrorIs(t, err, skyerr.ErrSchemeUndeclared)

	_, err = Reorder(core.SkyMap{Values: make([]float64, 108), Scheme: core.SchemeRing}, core.SchemeNested)
	assert.ErrorIs(t, err, skyerr.ErrInvalidResolution)

	same, err := Reorder(core.SkyMap{Values: make([]float64, 108), Scheme: core.SchemeRing}, core.SchemeRing)
	require.NoError(t, err)
	assert.Len(t, same.Values, 108)
}
