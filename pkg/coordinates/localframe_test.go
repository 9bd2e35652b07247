package coordinates

import (
	"math"
	"testing"
)

func TestLocalFrameOrthonormalProperty(t *testing.T) {
	// Property P4: away from the poles, the local basis is right-handed
	// and orthonormal.
	observers := []Geographic{
		{Latitude: 0, Longitude: 0, Altitude: 0},
		{Latitude: 51.5, Longitude: -0.1, Altitude: 50},
		{Latitude: -33.9, Longitude: 151.2, Altitude: 10},
		{Latitude: 70.0, Longitude: 25.0, Altitude: 200},
	}

	for _, obs := range observers {
		frame := NewLocalFrame(obs)
		if !frame.Orthonormal(1e-6) {
			t.Errorf("observer %+v: local frame not orthonormal/right-handed", obs)
		}
	}
}

func TestLocalFrameAtEquatorScenario(t *testing.T) {
	// Scenario 6: observer at (0,0,0), target straight up 100m, should
	// resolve to local Cartesian ~(0,0,100).
	frame := NewLocalFrame(Geographic{Latitude: 0, Longitude: 0, Altitude: 0})

	target := Geographic{Latitude: 0, Longitude: 0, Altitude: 100}
	local := frame.TransformToLocal(target)

	if math.Abs(local.X) > 1e-6 {
		t.Errorf("expected x ~0, got %v", local.X)
	}
	if math.Abs(local.Y) > 1e-6 {
		t.Errorf("expected y ~0, got %v", local.Y)
	}
	if math.Abs(local.Z-100) > 1e-3 {
		t.Errorf("expected z ~100, got %v", local.Z)
	}
}

func TestLocalFrameOriginIsZero(t *testing.T) {
	obs := Geographic{Latitude: 40.0, Longitude: -74.0, Altitude: 30}
	frame := NewLocalFrame(obs)

	local := frame.TransformToLocal(obs)
	if local.norm() > 1e-6 {
		t.Errorf("expected observer's own position to map to origin, got %+v", local)
	}
}
