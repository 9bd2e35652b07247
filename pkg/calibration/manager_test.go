package calibration

import (
	"math"
	"testing"

	"github.com/unklstewy/ads-bscope/pkg/coordinates"
	"github.com/unklstewy/ads-bscope/pkg/mount"
	"github.com/unklstewy/ads-bscope/pkg/trackable"
	"github.com/unklstewy/ads-bscope/pkg/tracking"
)

type fakeScope struct {
	alt, az float64
}

func (f *fakeScope) SlewToAltAz(altitude, azimuth float64) error {
	f.alt, f.az = altitude, azimuth
	return nil
}

func (f *fakeScope) GetAltAz() (alt, az float64, err error) {
	return f.alt, f.az, nil
}

type fakeTrackable struct {
	pos      *trackable.Position
	tracking bool
}

func (f *fakeTrackable) GetPosition() (*trackable.Position, error) { return f.pos, nil }
func (f *fakeTrackable) Name() string                              { return "fixture" }
func (f *fakeTrackable) IsTracking() bool                          { return f.tracking }

func newFixtureTracker(truth mount.Model) (*tracking.ObjectTracker, *fakeScope) {
	frame := coordinates.NewLocalFrame(coordinates.Geographic{})
	scope := &fakeScope{}
	ot := tracking.NewObjectTracker(frame, scope, truth)
	return ot, scope
}

func TestCapturePointFailsWhenNotTracking(t *testing.T) {
	ot, _ := newFixtureTracker(mount.Model{})
	mgr := NewManager(ot, mount.Model{})

	if err := mgr.CapturePoint(); err != ErrNotTracking {
		t.Fatalf("expected ErrNotTracking, got %v", err)
	}
}

func TestCapturePointAndUpdateModelRecoversTruth(t *testing.T) {
	truth := mount.Model{AzRotZ: 12.0, DecOffset: 33.0}
	ot, _ := newFixtureTracker(truth)
	mgr := NewManager(ot, mount.Model{})

	targets := []mount.Vec3{
		{X: 100, Y: 400, Z: 150},
		{X: -200, Y: 300, Z: 80},
		{X: 50, Y: 600, Z: -40},
		{X: 300, Y: 200, Z: 250},
	}

	for _, target := range targets {
		// Solve truth's actual motor angles for this local target, run
		// the tracker so it drives (and the fake scope reports back)
		// those exact angles, then capture the resulting state.
		cartesian := trackable.Position{Kind: trackable.KindCartesian, X: target.X, Y: target.Y, Z: target.Z}
		ot.SetTrackedObject(&fakeTrackable{pos: &cartesian, tracking: true})

		if err := ot.Run(); err != nil {
			t.Fatalf("unexpected run error: %v", err)
		}

		if err := mgr.CapturePoint(); err != nil {
			t.Fatalf("unexpected capture error: %v", err)
		}
	}

	residual := mgr.UpdateModel(false)
	if residual < 0 {
		t.Fatalf("expected successful fit, got sentinel residual %v", residual)
	}

	fitted := mgr.GetModel()
	if math.Abs(fitted.AzRotZ-truth.AzRotZ) > 1.0 {
		t.Errorf("expected AzRotZ close to truth %v, got %v", truth.AzRotZ, fitted.AzRotZ)
	}
}

func TestUpdateModelWithNoPointsReturnsSentinel(t *testing.T) {
	ot, _ := newFixtureTracker(mount.Model{})
	mgr := NewManager(ot, mount.Model{})

	if residual := mgr.UpdateModel(false); residual != -1.0 {
		t.Errorf("expected sentinel -1.0 with no points, got %v", residual)
	}
}

func TestResetModelClearsPointsAndModel(t *testing.T) {
	ot, _ := newFixtureTracker(mount.Model{})
	mgr := NewManager(ot, mount.Model{AzRotZ: 5})
	mgr.points = append(mgr.points, Point{})

	mgr.ResetModel()

	if mgr.GetModel() != (mount.Model{}) {
		t.Errorf("expected zero-value model after reset")
	}
	if len(mgr.PointList()) != 0 {
		t.Errorf("expected no points after reset")
	}
}
