package trackable

import "github.com/unklstewy/ads-bscope/pkg/adsb"

// Aircraft tracks a single aircraft by ICAO address, reading its
// current position out of an adsb.Manager's table on every call.
type Aircraft struct {
	manager *adsb.Manager
	icao    string
}

// NewAircraft wraps a single tracked aircraft as a Trackable.
func NewAircraft(manager *adsb.Manager, icao string) *Aircraft {
	return &Aircraft{manager: manager, icao: icao}
}

// GetPosition returns the aircraft's last known metric position, or
// nil if the aircraft isn't currently tracked or has never reported a
// position.
func (a *Aircraft) GetPosition() (*Position, error) {
	plane := a.manager.GetPlane(a.icao)
	if plane == nil || plane.LastPosUpdate.IsZero() {
		return nil, nil
	}

	lat, lon, heightM := plane.GetMetricPos()
	pos := LatLong(lat, lon, heightM)
	return &pos, nil
}

// Name returns the tracked aircraft's ICAO address.
func (a *Aircraft) Name() string {
	return a.icao
}

// IsTracking reports whether the aircraft is still present in the
// manager's table.
func (a *Aircraft) IsTracking() bool {
	return a.manager.GetPlane(a.icao) != nil
}
