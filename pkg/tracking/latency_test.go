package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/unklstewy/ads-bscope/pkg/adsb"
)

// fakeDataSource is a minimal adsb.DataSource returning a fixed report,
// just enough to seed a Manager's table for latency-compensation tests.
type fakeDataSource struct {
	report []adsb.Aircraft
}

func (f *fakeDataSource) GetAircraft(centerLat, centerLon, radiusNM float64) ([]adsb.Aircraft, error) {
	return f.report, nil
}

func (f *fakeDataSource) GetAircraftByICAO(icao string) (*adsb.Aircraft, error) { return nil, nil }

func (f *fakeDataSource) Close() error { return nil }

func TestLatencyCompensatedAircraftPredictsAhead(t *testing.T) {
	src := &fakeDataSource{report: []adsb.Aircraft{{
		ICAO:        "ABC123",
		Latitude:    35.0,
		Longitude:   -80.0,
		GroundSpeed: 300.0,
		Track:       90.0,
		LastSeen:    time.Now(),
	}}}

	cfg := adsb.DefaultManagerConfig(0, 0, 250)
	cfg.PollInterval = 5 * time.Millisecond
	cfg.MotionModelRate = 5 * time.Millisecond
	mgr := adsb.NewManager(src, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	mgr.Run(ctx)

	tracked := NewLatencyCompensatedAircraft(mgr, "ABC123", 2.5)
	if !tracked.IsTracking() {
		t.Fatal("expected aircraft to be tracked")
	}
	if tracked.Name() != "ABC123" {
		t.Errorf("expected name ABC123, got %s", tracked.Name())
	}

	pos, err := tracked.GetPosition()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos == nil {
		t.Fatal("expected a position")
	}
	// Predicted position should have moved east of the original report.
	if pos.Long <= -80.0 {
		t.Errorf("expected eastward-predicted longitude, got %f", pos.Long)
	}
}

func TestLatencyCompensatedAircraftUnknownICAO(t *testing.T) {
	src := &fakeDataSource{}
	cfg := adsb.DefaultManagerConfig(0, 0, 250)
	mgr := adsb.NewManager(src, cfg)

	tracked := NewLatencyCompensatedAircraft(mgr, "NOPE", 2.5)
	if tracked.IsTracking() {
		t.Error("expected untracked aircraft to report false")
	}

	pos, err := tracked.GetPosition()
	if err != nil || pos != nil {
		t.Errorf("expected (nil, nil) for unknown aircraft, got (%v, %v)", pos, err)
	}
}
