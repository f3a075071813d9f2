// Package healpix handles the pixel indexing of HEALPix sky maps: resolution
// checks, pixel areas and conversion between NESTED and RING ordering.
package healpix

import (
	"math"

	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

// Face layout of the twelve base pixels.
var (
	jrll = [12]int{2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4}
	jpll = [12]int{1, 3, 5, 7, 0, 2, 4, 6, 1, 3, 5, 7}
)

// Npix2Nside returns the resolution parameter k of a map with npix = 12·k² pixels.
func Npix2Nside(npix int) (int, error) {
	if npix <= 0 || npix%12 != 0 {
		return 0, skyerr.Configf("npix2nside", skyerr.ErrInvalidResolution, "%d pixels is not 12·k²", npix)
	}
	nside := isqrt(npix / 12)
	if 12*nside*nside != npix {
		return 0, skyerr.Configf("npix2nside", skyerr.ErrInvalidResolution, "%d pixels is not 12·k²", npix)
	}
	return nside, nil
}

// Nside2Npix returns the pixel count of resolution nside.
func Nside2Npix(nside int) int {
	return 12 * nside * nside
}

// PixelArea returns the area of one pixel at resolution nside.
func PixelArea(nside int, unit core.AreaUnit) float64 {
	sr := 4 * math.Pi / float64(Nside2Npix(nside))
	if unit == core.Steradians {
		return sr
	}
	return sr * (180 / math.Pi) * (180 / math.Pi)
}

// IsPowerOfTwo reports whether nside can be used with NESTED ordering.
func IsPowerOfTwo(nside int) bool {
	return nside > 0 && nside&(nside-1) == 0
}

// Nest2Ring converts a NESTED pixel index to RING.
func Nest2Ring(nside, ipix int) (int, error) {
	if err := checkPixel("nest2ring", nside, ipix, true); err != nil {
		return 0, err
	}
	ix, iy, face := nest2xyf(nside, ipix)
	return xyf2ring(nside, ix, iy, face), nil
}

// Ring2Nest converts a RING pixel index to NESTED.
func Ring2Nest(nside, ipix int) (int, error) {
	if err := checkPixel("ring2nest", nside, ipix, true); err != nil {
		return 0, err
	}
	ix, iy, face := ring2xyf(nside, ipix)
	return xyf2nest(nside, ix, iy, face), nil
}

func checkPixel(op string, nside, ipix int, nested bool) error {
	if nside <= 0 || (nested && !IsPowerOfTwo(nside)) {
		return skyerr.Configf(op, skyerr.ErrInvalidResolution, "nside %d cannot be used with NESTED ordering", nside)
	}
	if ipix < 0 || ipix >= Nside2Npix(nside) {
		return skyerr.Configf(op, skyerr.ErrInvalidResolution, "pixel %d out of range for nside %d", ipix, nside)
	}
	return nil
}

func nest2xyf(nside, pix int) (ix, iy, face int) {
	npface := nside * nside
	face = pix / npface
	ipf := pix % npface
	return compressBits(ipf), compressBits(ipf >> 1), face
}

func xyf2nest(nside, ix, iy, face int) int {
	return face*nside*nside + spreadBits(ix) + spreadBits(iy)<<1
}

func xyf2ring(nside, ix, iy, face int) int {
	nl4 := 4 * nside
	npix := Nside2Npix(nside)
	ncap := 2 * nside * (nside - 1)
	jr := jrll[face]*nside - ix - iy - 1

	var nr, nBefore, kshift int
	switch {
	case jr < nside:
		nr = jr
		nBefore = 2 * nr * (nr - 1)
	case jr > 3*nside:
		nr = nl4 - jr
		nBefore = npix - 2*(nr+1)*nr
	default:
		nr = nside
		nBefore = ncap + (jr-nside)*nl4
		kshift = (jr - nside) & 1
	}

	jp := (jpll[face]*nr + ix - iy + 1 + kshift) / 2
	if jp > nl4 {
		jp -= nl4
	} else if jp < 1 {
		jp += nl4
	}
	return nBefore + jp - 1
}

func ring2xyf(nside, pix int) (ix, iy, face int) {
	nl2 := 2 * nside
	npix := Nside2Npix(nside)
	ncap := 2 * nside * (nside - 1)

	var iring, iphi, kshift, nr int
	switch {
	case pix < ncap:
		// north polar cap
		iring = (1 + isqrt(1+2*pix)) >> 1
		iphi = (pix + 1) - 2*iring*(iring-1)
		nr = iring
		face = (iphi - 1) / nr
	case pix < npix-ncap:
		ip := pix - ncap
		tmp := ip / (4 * nside)
		iring = tmp + nside
		iphi = ip - tmp*4*nside + 1
		kshift = (iring + nside) & 1
		nr = nside
		ire := tmp + 1
		irm := nl2 + 2 - ire
		ifm := (iphi - ire>>1 + nside - 1) / nside
		ifp := (iphi - irm>>1 + nside - 1) / nside
		switch {
		case ifp == ifm:
			face = ifp | 4
		case ifp < ifm:
			face = ifp
		default:
			face = ifm + 8
		}
	default:
		// south polar cap
		ip := npix - pix
		iring = (1 + isqrt(2*ip-1)) >> 1
		iphi = 4*iring + 1 - (ip - 2*iring*(iring-1))
		nr = iring
		iring = 2*nl2 - iring
		face = (iphi-1)/nr + 8
	}

	irt := iring - jrll[face]*nside + 1
	ipt := 2*iphi - jpll[face]*nr - kshift - 1
	if ipt >= nl2 {
		ipt -= 8 * nside
	}
	ix = (ipt - irt) >> 1
	iy = (-ipt - irt) >> 1
	return ix, iy, face
}

// compressBits collects the even-position bits of v.
func compressBits(v int) int {
	var out int
	for bit := 0; v != 0; bit++ {
		out |= (v & 1) << bit
		v >>= 2
	}
	return out
}

// spreadBits moves bit i of v to position 2i.
func spreadBits(v int) int {
	var out int
	for bit := 0; v != 0; bit++ {
		out |= (v & 1) << (2 * bit)
		v >>= 1
	}
	return out
}

func isqrt(v int) int {
	r := int(math.Sqrt(float64(v) + 0.5))
	for r*r > v {
		r--
	}
	for (r+1)*(r+1) <= v {
		r++
	}
	return r
}
