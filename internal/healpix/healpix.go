// Package healpix implements the RING-ordered HEALPix pixelization of the
// sphere: a hierarchical, equal-area partition into 12·nside² pixels, with
// conversions between pixel indices, angles and unit vectors, and
// spherical-cap (disc) queries.
//
// Only the operations needed for aperture photometry on CMB maps are
// implemented. Pixel indexing follows the standard HEALPix RING scheme;
// NESTED-ordered inputs can be reindexed with NestToRing.
package healpix

import (
	"fmt"
	"math"
)

const halfPi = math.Pi / 2

// Vec3 is a unit direction vector on the celestial sphere.
type Vec3 struct {
	X, Y, Z float64
}

// Dot returns the scalar product of two vectors.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Npix returns the total pixel count for a resolution parameter nside.
func Npix(nside int) int {
	return 12 * nside * nside
}

// IsValidNside reports whether nside is a positive power of two.
func IsValidNside(nside int) bool {
	return nside > 0 && nside&(nside-1) == 0
}

// NsideFromNpix returns the nside whose pixel count is npix, or an error if
// npix is not 12·nside² for a power-of-two nside.
func NsideFromNpix(npix int) (int, error) {
	if npix <= 0 || npix%12 != 0 {
		return 0, fmt.Errorf("invalid HEALPix map length %d", npix)
	}
	nside := int(math.Round(math.Sqrt(float64(npix) / 12.0)))
	if !IsValidNside(nside) || Npix(nside) != npix {
		return 0, fmt.Errorf("invalid HEALPix map length %d: not 12*nside^2 for power-of-two nside", npix)
	}
	return nside, nil
}

// Ang2Vec converts spherical angles (theta = colatitude, phi = longitude,
// both radians) to a unit vector.
func Ang2Vec(theta, phi float64) Vec3 {
	st := math.Sin(theta)
	return Vec3{
		X: st * math.Cos(phi),
		Y: st * math.Sin(phi),
		Z: math.Cos(theta),
	}
}

// Pix2Ang returns the colatitude theta and longitude phi (radians) of the
// centre of RING pixel p at resolution nside.
func Pix2Ang(nside, p int) (theta, phi float64) {
	npix := Npix(nside)
	ncap := 2 * nside * (nside - 1)
	fact2 := 4.0 / float64(npix)

	switch {
	case p < ncap: // north polar cap
		ring := (1 + isqrt(1+2*p)) / 2
		iphi := p + 1 - 2*ring*(ring-1)
		z := 1.0 - float64(ring*ring)*fact2
		theta = math.Acos(z)
		phi = (float64(iphi) - 0.5) * halfPi / float64(ring)

	case p < npix-ncap: // equatorial belt
		fact1 := float64(2*nside) * fact2
		ip := p - ncap
		ring := ip/(4*nside) + nside
		iphi := ip%(4*nside) + 1
		// odd rings are shifted by half a pixel width
		fodd := 0.5
		if (ring+nside)&1 == 1 {
			fodd = 1.0
		}
		z := float64(2*nside-ring) * fact1
		theta = math.Acos(z)
		phi = (float64(iphi) - fodd) * math.Pi / float64(2*nside)

	default: // south polar cap
		ip := npix - p
		ring := (1 + isqrt(2*ip-1)) / 2
		iphi := 4*ring + 1 - (ip - 2*ring*(ring-1))
		z := -1.0 + float64(ring*ring)*fact2
		theta = math.Acos(z)
		phi = (float64(iphi) - 0.5) * halfPi / float64(ring)
	}
	return theta, phi
}

// Pix2Vec returns the unit vector of the centre of RING pixel p.
func Pix2Vec(nside, p int) Vec3 {
	theta, phi := Pix2Ang(nside, p)
	return Ang2Vec(theta, phi)
}

// Ang2Pix returns the RING pixel index containing the direction
// (theta = colatitude, phi = longitude, radians) at resolution nside.
func Ang2Pix(nside int, theta, phi float64) int {
	ncap := 2 * nside * (nside - 1)
	npix := Npix(nside)
	z := math.Cos(theta)
	za := math.Abs(z)
	tt := math.Mod(phi, 2*math.Pi)
	if tt < 0 {
		tt += 2 * math.Pi
	}
	tt /= halfPi // in [0,4)

	if za <= 2.0/3.0 { // equatorial belt
		temp1 := float64(nside) * (0.5 + tt)
		temp2 := float64(nside) * z * 0.75
		jp := int(temp1 - temp2) // ascending edge line index
		jm := int(temp1 + temp2) // descending edge line index

		ring := nside + 1 + jp - jm // ring counted from z=2/3, in {1, 2nside+1}
		kshift := 1 - ring&1

		ip := (jp + jm - nside + kshift + 1) / 2
		ip = imod(ip, 4*nside)

		return ncap + (ring-1)*4*nside + ip
	}

	// polar caps
	tp := tt - math.Floor(tt)
	tmp := float64(nside) * math.Sqrt(3.0*(1.0-za))
	jp := int(tp * tmp)
	jm := int((1.0 - tp) * tmp)

	ring := jp + jm + 1 // ring counted from the closest pole
	ip := int(tt * float64(ring))
	ip = imod(ip, 4*ring)

	if z > 0 {
		return 2*ring*(ring-1) + ip
	}
	return npix - 2*ring*(ring+1) + ip
}

// ringInfo returns, for ring index i (1..4·nside−1 counted from the north
// pole), the first pixel index of the ring, the number of pixels it holds,
// and the z coordinate of its pixel centres.
func ringInfo(nside, i int) (startPix, ringPix int, z float64) {
	npix := Npix(nside)
	ncap := 2 * nside * (nside - 1)
	switch {
	case i < nside: // north cap
		startPix = 2 * i * (i - 1)
		ringPix = 4 * i
		z = 1.0 - float64(i*i)*4.0/float64(npix)
	case i <= 3*nside: // equatorial belt
		startPix = ncap + (i-nside)*4*nside
		ringPix = 4 * nside
		z = float64(2*nside-i) * 2.0 / (3.0 * float64(nside))
	default: // south cap
		is := 4*nside - i
		startPix = npix - 2*is*(is+1)
		ringPix = 4 * is
		z = -1.0 + float64(is*is)*4.0/float64(npix)
	}
	return startPix, ringPix, z
}

// QueryDisc returns the RING pixel indices whose centres lie within angular
// distance radius (radians) of the direction center. The selection is
// strict: a pixel whose centre sits exactly on the cap boundary is excluded,
// matching non-inclusive disc queries.
func QueryDisc(nside int, center Vec3, radius float64) []int {
	if radius <= 0 {
		return nil
	}
	if radius >= math.Pi {
		all := make([]int, Npix(nside))
		for i := range all {
			all[i] = i
		}
		return all
	}

	cosRadius := math.Cos(radius)
	thetaC := math.Acos(clamp(center.Z, -1, 1))

	// Candidate rings: colatitude within [thetaC-radius, thetaC+radius].
	// A half-ring slack absorbs pixel centres that sit just inside the cap
	// while their ring nominal z is just outside.
	ringStep := math.Pi / float64(4*nside-1)
	thetaMin := thetaC - radius - ringStep
	thetaMax := thetaC + radius + ringStep

	var pix []int
	for i := 1; i <= 4*nside-1; i++ {
		start, n, z := ringInfo(nside, i)
		thetaRing := math.Acos(clamp(z, -1, 1))
		if thetaRing < thetaMin || thetaRing > thetaMax {
			continue
		}
		for j := 0; j < n; j++ {
			p := start + j
			if Pix2Vec(nside, p).Dot(center) > cosRadius {
				pix = append(pix, p)
			}
		}
	}
	return pix
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func imod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// isqrt returns floor(sqrt(v)) for non-negative v.
func isqrt(v int) int {
	r := int(math.Sqrt(float64(v)))
	// guard against floating point rounding at perfect squares
	for r*r > v {
		r--
	}
	for (r+1)*(r+1) <= v {
		r++
	}
	return r
}
