package trackable

import (
	"math"
	"testing"
)

func TestToCartesianStraightUp(t *testing.T) {
	pos := AltAz(90.0, 0.0).ToCartesian()

	if math.Abs(pos.X) > 1e-9 || math.Abs(pos.Y) > 1e-9 {
		t.Errorf("expected x,y ~0 at zenith, got (%v,%v)", pos.X, pos.Y)
	}
	if math.Abs(pos.Z-1.0) > 1e-9 {
		t.Errorf("expected z ~1 at zenith, got %v", pos.Z)
	}
}

func TestToCartesianDueNorthHorizon(t *testing.T) {
	pos := AltAz(0.0, 0.0).ToCartesian()

	if math.Abs(pos.X) > 1e-9 {
		t.Errorf("expected x ~0 due north, got %v", pos.X)
	}
	if math.Abs(pos.Y-1.0) > 1e-9 {
		t.Errorf("expected y ~1 due north, got %v", pos.Y)
	}
	if math.Abs(pos.Z) > 1e-9 {
		t.Errorf("expected z ~0 on horizon, got %v", pos.Z)
	}
}

func TestToCartesianPanicsOnWrongKind(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic converting non-AltAz position")
		}
	}()
	LatLong(0, 0, 0).ToCartesian()
}
