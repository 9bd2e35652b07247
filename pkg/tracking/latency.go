package tracking

import (
	"github.com/unklstewy/ads-bscope/pkg/adsb"
	"github.com/unklstewy/ads-bscope/pkg/trackable"
)

// LatencyCompensatedAircraft tracks a single aircraft by ICAO address
// like trackable.Aircraft, but reports a position predicted
// latencySeconds into the future rather than the manager's last
// reported fix. This compensates for the delay between an ADS-B
// position report and the moment the telescope actually reaches that
// pointing, using the same dead-reckoning state vector the manager
// already maintains.
type LatencyCompensatedAircraft struct {
	manager        *adsb.Manager
	icao           string
	latencySeconds float64
}

// NewLatencyCompensatedAircraft wraps a tracked aircraft with latency
// compensation. Typical values: ~2.5s for an online aggregator feed,
// ~0.75s for a local SDR receiver.
func NewLatencyCompensatedAircraft(manager *adsb.Manager, icao string, latencySeconds float64) *LatencyCompensatedAircraft {
	return &LatencyCompensatedAircraft{manager: manager, icao: icao, latencySeconds: latencySeconds}
}

// GetPosition returns the aircraft's predicted position latencySeconds
// ahead of now, or nil if the aircraft isn't currently tracked or has
// never reported a position.
func (a *LatencyCompensatedAircraft) GetPosition() (*trackable.Position, error) {
	plane := a.manager.GetPlane(a.icao)
	if plane == nil || plane.LastPosUpdate.IsZero() {
		return nil, nil
	}

	pred := PredictPositionWithLatency(plane.ToAircraft(), a.latencySeconds)
	pos := trackable.LatLong(pred.Position.Latitude, pred.Position.Longitude, pred.Position.Altitude)
	return &pos, nil
}

// Name returns the tracked aircraft's ICAO address.
func (a *LatencyCompensatedAircraft) Name() string {
	return a.icao
}

// IsTracking reports whether the aircraft is still present in the
// manager's table.
func (a *LatencyCompensatedAircraft) IsTracking() bool {
	return a.manager.GetPlane(a.icao) != nil
}
