package tracking

import (
	"math"
	"time"

	"github.com/unklstewy/ads-bscope/pkg/adsb"
	"github.com/unklstewy/ads-bscope/pkg/coordinates"
)

// PredictedPosition is an aircraft's predicted position at a future
// time, compensating for the latency between an ADS-B position report
// and the moment the telescope actually slews to it.
type PredictedPosition struct {
	// Position is the predicted geographic location.
	Position coordinates.Geographic

	// PredictionTime is when this prediction is valid.
	PredictionTime time.Time

	// Confidence is a measure of prediction reliability (0-1). Lower
	// confidence for longer predictions or stale source data.
	Confidence float64

	// OriginalPosition is the source report the prediction was derived from.
	OriginalPosition adsb.Aircraft
}

// PredictPosition predicts where an aircraft will be at predictionTime,
// dead-reckoning forward from its last reported state vector (ground
// speed, track, and vertical rate) assuming those hold constant. No
// wind correction is applied.
func PredictPosition(aircraft adsb.Aircraft, predictionTime time.Time) PredictedPosition {
	deltaT := predictionTime.Sub(aircraft.LastSeen).Seconds()

	if deltaT <= 0 {
		return PredictedPosition{
			Position: coordinates.Geographic{
				Latitude:  aircraft.Latitude,
				Longitude: aircraft.Longitude,
				Altitude:  aircraft.Altitude * coordinates.FeetToMeters,
			},
			PredictionTime:   predictionTime,
			Confidence:       1.0,
			OriginalPosition: aircraft,
		}
	}

	// Confidence decreases with prediction horizon: 1.0 at 0s, 0.5 at
	// 30s, 0.0 at 60s+.
	confidence := math.Max(0.0, 1.0-deltaT/60.0)

	if time.Since(aircraft.LastSeen).Seconds() > 10.0 {
		confidence *= 0.5
	}

	newLat, newLon := predictHorizontalPosition(
		aircraft.Latitude,
		aircraft.Longitude,
		aircraft.GroundSpeed,
		aircraft.Track,
		deltaT,
	)

	altitudeChangeFt := aircraft.VerticalRate * (deltaT / 60.0)
	newAltitudeFt := aircraft.Altitude + altitudeChangeFt
	if newAltitudeFt < 0 {
		newAltitudeFt = 0
		confidence *= 0.5
	}

	return PredictedPosition{
		Position: coordinates.Geographic{
			Latitude:  newLat,
			Longitude: newLon,
			Altitude:  newAltitudeFt * coordinates.FeetToMeters,
		},
		PredictionTime:   predictionTime,
		Confidence:       confidence,
		OriginalPosition: aircraft,
	}
}

// PredictPositionWithLatency predicts an aircraft's position
// estimatedLatencySeconds ahead of now, compensating for typical
// ADS-B feed latency (recommend ~2.5s for an aggregator feed, ~0.75s
// for a local SDR receiver).
func PredictPositionWithLatency(aircraft adsb.Aircraft, estimatedLatencySeconds float64) PredictedPosition {
	predictionTime := time.Now().UTC().Add(time.Duration(estimatedLatencySeconds * float64(time.Second)))
	return PredictPosition(aircraft, predictionTime)
}

// predictHorizontalPosition advances a lat/lon along a great circle
// track using the forward azimuth formula from spherical trigonometry.
func predictHorizontalPosition(lat, lon, speedKnots, trackDeg, deltaT float64) (float64, float64) {
	latRad := lat * coordinates.DegreesToRadians
	lonRad := lon * coordinates.DegreesToRadians
	trackRad := trackDeg * coordinates.DegreesToRadians

	// 1 knot = 1 nautical mile/hour = 1852 m/hour.
	distanceMeters := speedKnots * 1852.0 * (deltaT / 3600.0)
	angularDistance := distanceMeters / (coordinates.EarthRadiusKm * 1000.0)

	newLatRad := math.Asin(
		math.Sin(latRad)*math.Cos(angularDistance) +
			math.Cos(latRad)*math.Sin(angularDistance)*math.Cos(trackRad),
	)

	newLonRad := lonRad + math.Atan2(
		math.Sin(trackRad)*math.Sin(angularDistance)*math.Cos(latRad),
		math.Cos(angularDistance)-math.Sin(latRad)*math.Sin(newLatRad),
	)

	newLat := newLatRad * coordinates.RadiansToDegrees
	newLon := newLonRad * coordinates.RadiansToDegrees

	if newLon > 180.0 {
		newLon -= 360.0
	} else if newLon < -180.0 {
		newLon += 360.0
	}

	return newLat, newLon
}
