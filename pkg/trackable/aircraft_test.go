package trackable

import (
	"context"
	"testing"
	"time"

	"github.com/unklstewy/ads-bscope/pkg/adsb"
)

func TestAircraftNotTrackingWhenAbsent(t *testing.T) {
	mgr := adsb.NewManager(nil, adsb.DefaultManagerConfig(0, 0, 50))
	target := NewAircraft(mgr, "NONE01")

	if target.IsTracking() {
		t.Error("expected IsTracking false for unknown aircraft")
	}

	pos, err := target.GetPosition()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos != nil {
		t.Error("expected nil position for unknown aircraft")
	}
}

func TestAircraftNamePassesThroughICAO(t *testing.T) {
	mgr := adsb.NewManager(nil, adsb.DefaultManagerConfig(0, 0, 50))
	target := NewAircraft(mgr, "ABC123")

	if target.Name() != "ABC123" {
		t.Errorf("expected name ABC123, got %v", target.Name())
	}
}

func TestAircraftGetPositionAfterSeedingManager(t *testing.T) {
	src := &seedSource{reports: []adsb.Aircraft{
		{ICAO: "SEED01", Latitude: 10, Longitude: 20, Altitude: 1000, LastSeen: time.Now()},
	}}
	cfg := adsb.DefaultManagerConfig(0, 0, 50)
	cfg.PollInterval = 5 * time.Millisecond
	cfg.MotionModelRate = 5 * time.Millisecond
	mgr := adsb.NewManager(src, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	mgr.Run(ctx)

	target := NewAircraft(mgr, "SEED01")
	if !target.IsTracking() {
		t.Fatal("expected seeded aircraft to be tracked")
	}

	pos, err := target.GetPosition()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos == nil {
		t.Fatal("expected non-nil position")
	}
	if pos.Kind != KindLatLong {
		t.Errorf("expected LatLong position, got %v", pos.Kind)
	}
	if pos.Lat != 10 || pos.Long != 20 {
		t.Errorf("expected lat/long (10,20), got (%v,%v)", pos.Lat, pos.Long)
	}
}

// seedSource is a minimal adsb.DataSource for trackable package tests.
type seedSource struct {
	reports []adsb.Aircraft
}

func (s *seedSource) GetAircraft(centerLat, centerLon, radiusNM float64) ([]adsb.Aircraft, error) {
	return s.reports, nil
}

func (s *seedSource) GetAircraftByICAO(icao string) (*adsb.Aircraft, error) {
	return nil, nil
}

func (s *seedSource) Close() error { return nil }
