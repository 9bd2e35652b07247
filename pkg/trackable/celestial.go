package trackable

import (
	"time"

	"github.com/unklstewy/ads-bscope/pkg/coordinates"
)

// RADecSource supplies the apparent right ascension and declination,
// in degrees, of the celestial target currently of interest — for
// example a separate ASCOM mount already slewed to the target star.
type RADecSource interface {
	GetRADec() (ra, dec float64, err error)
}

// Celestial tracks a celestial target by apparent RA/Dec, resolving it
// to a geodetic sub-point so it can be fed through the same local
// coordinate transform as any other Trackable.
type Celestial struct {
	source      RADecSource
	transformer coordinates.CelestialTransformer

	// Now returns the current time; overridable in tests.
	Now func() time.Time
}

// NewCelestial wraps an RA/Dec source as a Trackable celestial target.
func NewCelestial(source RADecSource) *Celestial {
	return &Celestial{
		source:      source,
		transformer: coordinates.NewCelestialTransformer(),
		Now:         time.Now,
	}
}

// celestialHeightMeters stands in for "effectively infinite" distance,
// matching the sentinel height the original tracker used for celestial
// targets so that range-based logic elsewhere treats them as always at
// the horizon's far limit.
const celestialHeightMeters = 1e11

// GetPosition resolves the current RA/Dec to a geodetic sub-point.
func (c *Celestial) GetPosition() (*Position, error) {
	ra, dec, err := c.source.GetRADec()
	if err != nil {
		return nil, err
	}

	lat, lon := c.transformer.ApparentToSubPoint(ra, dec, c.Now())
	pos := LatLong(lat, lon, celestialHeightMeters)
	return &pos, nil
}

// Name always identifies this Trackable as "Celestial".
func (c *Celestial) Name() string {
	return "Celestial"
}

// IsTracking is always true: a celestial target is always available.
func (c *Celestial) IsTracking() bool {
	return true
}
