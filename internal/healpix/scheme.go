package healpix

import (
	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

// ResolveScheme decides which ordering a map array is in.
//
// A map that knows its own ordering keeps it, and metadata that disagrees
// with it is an error. A map of undetermined ordering takes the caller's
// hint, then the metadata declaration. With none of the three it fails:
// the ordering is never guessed.
func ResolveScheme(native, hint core.Scheme, meta core.Metadata) (core.Scheme, error) {
	if native != core.SchemeUnknown {
		if meta.Scheme != core.SchemeUnknown && meta.Scheme != native {
			return core.SchemeUnknown, skyerr.Configf("resolve scheme", skyerr.ErrSchemeMismatch,
				"map is %s but metadata declares %s", native, meta.Scheme)
		}
		return native, nil
	}
	if hint != core.SchemeUnknown {
		return hint, nil
	}
	if meta.Scheme != core.SchemeUnknown {
		return meta.Scheme, nil
	}
	return core.SchemeUnknown, skyerr.Config("resolve scheme", skyerr.ErrSchemeUndeclared)
}

// At returns the value of pixel ipix, where ipix is an index in the scheme
// the caller expects. A map in any other ordering is rejected.
func At(m core.SkyMap, scheme core.Scheme, ipix int) (float64, error) {
	if m.Scheme == core.SchemeUnknown || scheme == core.SchemeUnknown {
		return 0, skyerr.Config("pixel lookup", skyerr.ErrSchemeUndeclared)
	}
	if m.Scheme != scheme {
		return 0, skyerr.Configf("pixel lookup", skyerr.ErrSchemeMismatch,
			"map is %s, lookup expects %s", m.Scheme, scheme)
	}
	if ipix < 0 || ipix >= len(m.Values) {
		return 0, skyerr.Configf("pixel lookup", skyerr.ErrInvalidResolution,
			"pixel %d out of range for %d pixels", ipix, len(m.Values))
	}
	return m.Values[ipix], nil
}

// Reorder returns a copy of m in the requested ordering. The input is not modified.
func Reorder(m core.SkyMap, to core.Scheme) (core.SkyMap, error) {
	if m.Scheme == core.SchemeUnknown || to == core.SchemeUnknown {
		return core.SkyMap{}, skyerr.Config("reorder", skyerr.ErrSchemeUndeclared)
	}
	nside, err := Npix2Nside(len(m.Values))
	if err != nil {
		return core.SkyMap{}, err
	}
	out := make([]float64, len(m.Values))
	if m.Scheme == to {
		copy(out, m.Values)
		return core.SkyMap{Values: out, Scheme: to}, nil
	}
	if !IsPowerOfTwo(nside) {
		return core.SkyMap{}, skyerr.Configf("reorder", skyerr.ErrInvalidResolution,
			"nside %d cannot be used with NESTED ordering", nside)
	}

	// source index of each output pixel
	source := Ring2Nest
	if to == core.SchemeNested {
		source = Nest2Ring
	}
	for j := range out {
		i, err := source(nside, j)
		if err != nil {
			return core.SkyMap{}, err
		}
		if out[j], err = At(m, m.Scheme, i); err != nil {
			return core.SkyMap{}, err
		}
	}
	return core.SkyMap{Values: out, Scheme: to}, nil
}
