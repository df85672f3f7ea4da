package aperture

import "fmt"

// ResolutionMismatchError reports a map and mask with different HEALPix
// resolutions. Terminal: the inputs cannot be combined.
type ResolutionMismatchError struct {
	MapNside  int
	MaskNside int
}

func (e *ResolutionMismatchError) Error() string {
	return fmt.Sprintf("NSIDE mismatch: map nside=%d vs mask nside=%d", e.MapNside, e.MaskNside)
}

// InsufficientCoverageError reports a region with too few qualifying pixels
// to form a trustworthy mean. Terminal for the invocation.
type InsufficientCoverageError struct {
	Region string // "core" or "rim"
	Got    int
	Want   int
}

func (e *InsufficientCoverageError) Error() string {
	return fmt.Sprintf(
		"too few unmasked pixels in %s (%d < %d): try a different theta_R, loosen the mask threshold, or use a less aggressive mask",
		e.Region, e.Got, e.Want)
}
