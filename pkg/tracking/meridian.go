package tracking

import "github.com/unklstewy/ads-bscope/pkg/coordinates"

// TrackingLimits defines the safe tracking envelope for a telescope
// mount: altitudes outside [MinAltitude, MaxAltitude] are excluded from
// automatic tracking even when a pointing solution exists for them.
type TrackingLimits struct {
	// MinAltitude is the minimum altitude in degrees (typically 10-20°).
	// Below this, atmospheric refraction and horizon obstacles become
	// issues.
	MinAltitude float64

	// MaxAltitude is the maximum altitude in degrees (typically 85-88°).
	// Near zenith (90°), alt-az tracking rate blows up and pointing
	// becomes unstable.
	MaxAltitude float64
}

// DefaultTrackingLimits returns conservative tracking limits suitable
// for most alt-az mounts.
func DefaultTrackingLimits() TrackingLimits {
	return TrackingLimits{
		MinAltitude: 15.0, // 15° above horizon
		MaxAltitude: 85.0, // 5° from zenith
	}
}

// TrackingLimitsFromConfig builds TrackingLimits from telescope-specific
// altitude limits.
func TrackingLimitsFromConfig(minAlt, maxAlt float64) TrackingLimits {
	return TrackingLimits{MinAltitude: minAlt, MaxAltitude: maxAlt}
}

// ShouldAbortTracking reports whether the given horizontal position
// falls outside limits and tracking should be withheld for this tick.
// A zero-value TrackingLimits (both bounds unset) disables the check.
func ShouldAbortTracking(horiz coordinates.HorizontalCoordinates, limits TrackingLimits) bool {
	if limits.MinAltitude == 0 && limits.MaxAltitude == 0 {
		return false
	}
	return horiz.Altitude < limits.MinAltitude || horiz.Altitude > limits.MaxAltitude
}
