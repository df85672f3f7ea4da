// Package coords converts equatorial (ICRS) sky positions to the Galactic
// frame used by CMB maps.
package coords

import "math"

// Galactic is a position in the Galactic frame, degrees.
// L is longitude in [0, 360), B is latitude in [-90, 90].
type Galactic struct {
	L float64
	B float64
}

// rotICRSToGal is the fixed J2000 ICRS→Galactic rotation matrix,
// derived from the IAU 1958 Galactic pole (αp=192.85948°, δp=27.12825°)
// and the node position angle 122.93192°.
var rotICRSToGal = [3][3]float64{
	{-0.0548755604162154, -0.8734370902348850, -0.4838350155487132},
	{+0.4941094278755837, -0.4448296299600112, +0.7469822444972189},
	{-0.8676661490190047, -0.1980763734312015, +0.4559837761750669},
}

// ICRSToGalactic converts an ICRS right ascension / declination pair
// (degrees) to Galactic longitude and latitude.
func ICRSToGalactic(raDeg, decDeg float64) Galactic {
	ra := raDeg * math.Pi / 180
	dec := decDeg * math.Pi / 180

	cd := math.Cos(dec)
	u := [3]float64{cd * math.Cos(ra), cd * math.Sin(ra), math.Sin(dec)}

	var g [3]float64
	for i := 0; i < 3; i++ {
		g[i] = rotICRSToGal[i][0]*u[0] + rotICRSToGal[i][1]*u[1] + rotICRSToGal[i][2]*u[2]
	}

	l := math.Atan2(g[1], g[0]) * 180 / math.Pi
	if l < 0 {
		l += 360
	}
	b := math.Asin(clamp(g[2], -1, 1)) * 180 / math.Pi
	return Galactic{L: l, B: b}
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
