package healpix

// NESTED→RING reindexing. Planck sky maps ship NESTED-ordered; the aperture
// engine works in RING order, so loaders reindex at read time.

// jrll and jpll locate each of the 12 base faces in ring coordinates.
var (
	jrll = [12]int{2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4}
	jpll = [12]int{1, 3, 5, 7, 0, 2, 4, 6, 1, 3, 5, 7}
)

// compressBits extracts the even-indexed bits of v into the low bits.
func compressBits(v uint64) uint64 {
	x := v & 0x5555555555555555
	x = (x | x>>1) & 0x3333333333333333
	x = (x | x>>2) & 0x0f0f0f0f0f0f0f0f
	x = (x | x>>4) & 0x00ff00ff00ff00ff
	x = (x | x>>8) & 0x0000ffff0000ffff
	x = (x | x>>16) & 0x00000000ffffffff
	return x
}

// NestToRing converts a NESTED pixel index to the equivalent RING index at
// the same nside. nside must be a power of two.
func NestToRing(nside, p int) int {
	npface := nside * nside
	face := p / npface
	pf := uint64(p % npface)

	ix := int(compressBits(pf))
	iy := int(compressBits(pf >> 1))

	// ring index counted from the north pole, 1..4*nside-1
	jr := jrll[face]*nside - ix - iy - 1

	var nr, kshift, nBefore int
	npix := Npix(nside)
	ncap := 2 * nside * (nside - 1)
	switch {
	case jr < nside: // north cap
		nr = jr
		nBefore = 2 * nr * (nr - 1)
		kshift = 0
	case jr > 3*nside: // south cap
		nr = 4*nside - jr
		nBefore = npix - 2*nr*(nr+1)
		kshift = 0
	default: // equatorial belt
		nr = nside
		nBefore = ncap + (jr-nside)*4*nside
		kshift = (jr - nside) & 1
	}

	jp := (jpll[face]*nr + ix - iy + 1 + kshift) / 2
	if jp > 4*nr {
		jp -= 4 * nr
	}
	if jp < 1 {
		jp += 4 * nr
	}

	return nBefore + jp - 1
}

// ReorderNestToRing returns a copy of m reindexed from NESTED to RING order.
func ReorderNestToRing(nside int, m []float64) []float64 {
	out := make([]float64, len(m))
	for p, v := range m {
		out[NestToRing(nside, p)] = v
	}
	return out
}
