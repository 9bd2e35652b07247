package tracking

import (
	"testing"

	"github.com/unklstewy/ads-bscope/pkg/coordinates"
	"github.com/unklstewy/ads-bscope/pkg/mount"
	"github.com/unklstewy/ads-bscope/pkg/trackable"
)

// fakeScope is a ScopeDriver test double recording the last slew
// command and reporting a fixed alt/az.
type fakeScope struct {
	lastAlt, lastAz float64
	slewCount       int
	reportAlt       float64
	reportAz        float64
	slewErr         error
}

func (f *fakeScope) SlewToAltAz(altitude, azimuth float64) error {
	f.lastAlt, f.lastAz = altitude, azimuth
	f.slewCount++
	return f.slewErr
}

func (f *fakeScope) GetAltAz() (alt, az float64, err error) {
	return f.reportAlt, f.reportAz, nil
}

// fakeTrackable reports a fixed geodetic or alt/az position.
type fakeTrackable struct {
	pos       *trackable.Position
	tracking  bool
	posErr    error
}

func (f *fakeTrackable) GetPosition() (*trackable.Position, error) { return f.pos, f.posErr }
func (f *fakeTrackable) Name() string                              { return "fake" }
func (f *fakeTrackable) IsTracking() bool                          { return f.tracking }

func TestRunNoTrackedObjectIsNoOp(t *testing.T) {
	frame := coordinates.NewLocalFrame(coordinates.Geographic{})
	scope := &fakeScope{}
	ot := NewObjectTracker(frame, scope, mount.Model{})

	if err := ot.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.slewCount != 0 {
		t.Errorf("expected no slew with no tracked object, got %d calls", scope.slewCount)
	}
}

func TestRunSlewsToSolvedAltitude(t *testing.T) {
	observer := coordinates.Geographic{Latitude: 40.0, Longitude: -74.0, Altitude: 0}
	frame := coordinates.NewLocalFrame(observer)
	scope := &fakeScope{}
	ot := NewObjectTracker(frame, scope, mount.Model{})

	// Target directly overhead of the observer.
	pos := trackable.LatLong(40.0, -74.0, 1000.0)
	ot.SetTrackedObject(&fakeTrackable{pos: &pos, tracking: true})

	if err := ot.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.slewCount != 1 {
		t.Fatalf("expected exactly one slew, got %d", scope.slewCount)
	}
	if scope.lastAlt < 89.0 {
		t.Errorf("expected near-zenith altitude for overhead target, got %v", scope.lastAlt)
	}
}

func TestRunAppliesTrackingOffset(t *testing.T) {
	observer := coordinates.Geographic{Latitude: 0, Longitude: 0, Altitude: 0}
	frame := coordinates.NewLocalFrame(observer)
	scope := &fakeScope{}
	ot := NewObjectTracker(frame, scope, mount.Model{})

	altAzPos := trackable.AltAz(30.0, 90.0)
	ot.SetTrackedObject(&fakeTrackable{pos: &altAzPos, tracking: true})
	ot.SetTrackingOffset(5.0, -10.0)

	if err := ot.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.lastAlt != 35.0 {
		t.Errorf("expected alt 35 after offset, got %v", scope.lastAlt)
	}
	if scope.lastAz != 80.0 {
		t.Errorf("expected az 80 after offset, got %v", scope.lastAz)
	}
}

func TestRunOverheadFlipCorrectsAltitude(t *testing.T) {
	// Property P7: an altitude that would exceed 90 degrees after
	// offsetting flips azimuth by 180 and reflects back under 90.
	observer := coordinates.Geographic{Latitude: 0, Longitude: 0, Altitude: 0}
	frame := coordinates.NewLocalFrame(observer)
	scope := &fakeScope{}
	ot := NewObjectTracker(frame, scope, mount.Model{})

	altAzPos := trackable.AltAz(88.0, 0.0)
	ot.SetTrackedObject(&fakeTrackable{pos: &altAzPos, tracking: true})
	ot.SetTrackingOffset(5.0, 0.0) // would be 93 degrees, past zenith

	if err := ot.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.lastAlt != 87.0 {
		t.Errorf("expected reflected altitude 87, got %v", scope.lastAlt)
	}
	if scope.lastAz != 180.0 {
		t.Errorf("expected azimuth flipped to 180, got %v", scope.lastAz)
	}
}

func TestGetStateReturnsScopeAndObjectPosition(t *testing.T) {
	observer := coordinates.Geographic{Latitude: 0, Longitude: 0, Altitude: 0}
	frame := coordinates.NewLocalFrame(observer)
	scope := &fakeScope{reportAlt: 45.0, reportAz: 90.0}
	ot := NewObjectTracker(frame, scope, mount.Model{})

	altAzPos := trackable.AltAz(10.0, 20.0)
	ot.SetTrackedObject(&fakeTrackable{pos: &altAzPos, tracking: true})

	state, err := ot.GetState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Alt != 45.0 || state.Az != 90.0 {
		t.Errorf("expected scope-reported alt/az (45,90), got (%v,%v)", state.Alt, state.Az)
	}
}

func TestRunWithheldWhenOutsideTrackingLimits(t *testing.T) {
	observer := coordinates.Geographic{Latitude: 0, Longitude: 0, Altitude: 0}
	frame := coordinates.NewLocalFrame(observer)
	scope := &fakeScope{}
	ot := NewObjectTracker(frame, scope, mount.Model{})
	ot.SetTrackingLimits(TrackingLimits{MinAltitude: 15.0, MaxAltitude: 85.0})

	altAzPos := trackable.AltAz(5.0, 90.0) // below MinAltitude
	ot.SetTrackedObject(&fakeTrackable{pos: &altAzPos, tracking: true})

	if err := ot.Run(); err != ErrTrackingLimitExceeded {
		t.Fatalf("expected ErrTrackingLimitExceeded, got %v", err)
	}
	if scope.slewCount != 0 {
		t.Errorf("expected no slew when outside tracking limits, got %d", scope.slewCount)
	}
}

func TestRunDefaultLimitsDisabled(t *testing.T) {
	// Without SetTrackingLimits, the tracker always slews, even past
	// what DefaultTrackingLimits would allow.
	observer := coordinates.Geographic{Latitude: 0, Longitude: 0, Altitude: 0}
	frame := coordinates.NewLocalFrame(observer)
	scope := &fakeScope{}
	ot := NewObjectTracker(frame, scope, mount.Model{})

	altAzPos := trackable.AltAz(5.0, 90.0)
	ot.SetTrackedObject(&fakeTrackable{pos: &altAzPos, tracking: true})

	if err := ot.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.slewCount != 1 {
		t.Errorf("expected slew when no tracking limits configured, got %d", scope.slewCount)
	}
}

func TestGetStateErrorsWithNoTrackedObject(t *testing.T) {
	frame := coordinates.NewLocalFrame(coordinates.Geographic{})
	scope := &fakeScope{}
	ot := NewObjectTracker(frame, scope, mount.Model{})

	if _, err := ot.GetState(); err != ErrNoTrackedObject {
		t.Errorf("expected ErrNoTrackedObject, got %v", err)
	}
}
