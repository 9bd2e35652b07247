package coordinates

import (
	"math"
	"time"
)

// CelestialTransformer converts apparent (RA, Dec) coordinates into
// the sub-point on Earth whose zenith currently points at the object,
// and into observer-relative alt/az with a simple refraction
// correction. It carries the local atmospheric conditions used by the
// refraction model and the current TAI-UTC leap second count needed to
// get from Julian Date to Julian Ephemeris Date.
type CelestialTransformer struct {
	// LeapSeconds is the current TAI-UTC offset (37 as of 2017 and
	// still current at time of writing; update if IERS announces a
	// new leap second).
	LeapSeconds int

	// TempC is the local air temperature in Celsius, used to scale the
	// refraction correction.
	TempC float64

	// PressureMbar is the local atmospheric pressure in millibar, used
	// to scale the refraction correction.
	PressureMbar float64
}

// NewCelestialTransformer returns a transformer with the commonly-used
// defaults: 37 leap seconds, 10C, 1010mbar.
func NewCelestialTransformer() CelestialTransformer {
	return CelestialTransformer{LeapSeconds: 37, TempC: 10.0, PressureMbar: 1010.0}
}

// julianEphemerisDate adjusts a Julian Date for leap seconds to obtain
// the Julian Ephemeris Date. The constant 32 is the TAI-TT offset in
// seconds used to walk JD (UT1-based) to JDE (TT-based).
func (c CelestialTransformer) julianEphemerisDate(jd float64) float64 {
	return jd + float64(c.LeapSeconds+32)/86400.0
}

// greenwichHourAngle returns the Greenwich Hour Angle, in degrees, of
// an object at apparent right ascension raDeg (degrees) at time t.
func (c CelestialTransformer) greenwichHourAngle(raDeg float64, t time.Time) float64 {
	jd := timeToJulianDate(t.UTC())

	// JDE (TT-based) feeds obliquity/nutation for a full apparent
	// place; the GHA formula below only needs UT1-based JD, so JDE
	// goes unused here same as in the reference transformer.
	_ = c.julianEphemerisDate(jd)

	tCenturies := (jd - 2451545.0) / 36525.0

	gmst := math.Mod(280.46061837+360.98564736629*(jd-2451545.0)+
		0.000387933*tCenturies*tCenturies-tCenturies*tCenturies*tCenturies/38710000.0, 360.0)
	if gmst < 0 {
		gmst += 360.0
	}

	gha := math.Mod(gmst-raDeg, 360.0)
	if gha < 0 {
		gha += 360.0
	}
	return gha
}

// ApparentToSubPoint converts an apparent (RA, Dec) in degrees to the
// geodetic sub-point (lat, lon in degrees) at time t: lat = dec, lon =
// -GHA wrapped to (-180, 180].
func (c CelestialTransformer) ApparentToSubPoint(raDeg, decDeg float64, t time.Time) (lat, lon float64) {
	gha := c.greenwichHourAngle(raDeg, t)

	lon = -gha
	if lon > 180.0 {
		lon -= 360.0
	} else if lon <= -180.0 {
		lon += 360.0
	}

	return decDeg, lon
}

// ApparentToAltAz converts an apparent (RA, Dec) in degrees to
// observer-relative horizontal coordinates at time t, including a
// simple refraction correction scaled by local temperature and
// pressure.
func (c CelestialTransformer) ApparentToAltAz(raDeg, decDeg float64, observer Geographic, t time.Time) HorizontalCoordinates {
	gha := c.greenwichHourAngle(raDeg, t)
	lha := gha + observer.Longitude

	latRad := observer.Latitude * DegreesToRadians
	decRad := decDeg * DegreesToRadians
	lhaRad := lha * DegreesToRadians

	sinAlt := math.Sin(decRad)*math.Sin(latRad) + math.Cos(latRad)*math.Cos(decRad)*math.Cos(lhaRad)
	altRad := math.Asin(clamp(sinAlt, -1, 1))
	alt := altRad * RadiansToDegrees

	cosAz := (math.Sin(decRad) - math.Sin(latRad)*math.Sin(altRad)) / (math.Cos(latRad) * math.Cos(altRad))
	az := math.Acos(clamp(cosAz, -1, 1)) * RadiansToDegrees

	if NormalizeAzimuth(lha) < 180.0 {
		az = 360.0 - az
	}

	// Refraction correction, valid for alt above a few degrees.
	refraction := 1.02 / math.Tan(DegreesToRadians*(alt+10.3/(alt+5.11)))
	refraction *= 0.00467 * c.PressureMbar / (273.0 + c.TempC)
	alt += refraction

	return HorizontalCoordinates{Altitude: alt, Azimuth: NormalizeAzimuth(az)}
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
