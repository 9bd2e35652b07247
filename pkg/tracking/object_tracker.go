package tracking

import (
	"errors"
	"math"
	"sync"

	"github.com/unklstewy/ads-bscope/pkg/coordinates"
	"github.com/unklstewy/ads-bscope/pkg/mount"
	"github.com/unklstewy/ads-bscope/pkg/pointing"
	"github.com/unklstewy/ads-bscope/pkg/trackable"
)

// ErrTrackingLimitExceeded is returned by Run when the computed
// position falls outside the tracker's configured TrackingLimits; no
// slew is issued for that tick.
var ErrTrackingLimitExceeded = errors.New("tracking: target outside configured tracking limits")

// ScopeDriver is the minimal telescope control surface the object
// tracker drives: slew to a target alt/az, and read back where the
// mount actually is. An alpaca.TelescopeClient satisfies this via a
// thin adapter.
type ScopeDriver interface {
	SlewToAltAz(altitude, azimuth float64) error
	GetAltAz() (alt, az float64, err error)
}

// ErrNoTrackedObject is returned by GetState when no Trackable has
// been attached yet, or the attached one currently has no position.
var ErrNoTrackedObject = errors.New("tracking: object tracker has no tracked object")

// State is a snapshot of the object tracker's current tracked-object
// position and the scope's actual reported motor angles.
type State struct {
	LocalPos trackable.Position
	Alt      float64
	Az       float64
}

// ObjectTracker drives a ScopeDriver to follow a Trackable target,
// converting its reported geodetic or alt/az position into motor
// angles via a LocalFrame and a mount model, applying a manual
// tracking offset, and correcting for the near-zenith flip where
// altitude briefly "overshoots" past 90 degrees.
type ObjectTracker struct {
	frame coordinates.LocalFrame
	scope ScopeDriver

	mu             sync.Mutex
	model          mount.Model
	trackedObject  trackable.Trackable
	trackingOffset mount.Angles
	lastMotorAngle mount.Angles
	limits         TrackingLimits
}

// SetTrackingLimits installs a safety envelope that withholds slews for
// positions outside [MinAltitude, MaxAltitude]. The zero value disables
// the check (the default), matching the tracker's baseline behavior of
// always issuing the best-available slew.
func (o *ObjectTracker) SetTrackingLimits(limits TrackingLimits) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.limits = limits
}

// NewObjectTracker creates a tracker anchored at the observer's local
// frame, driving scope, starting from the given mount model.
func NewObjectTracker(frame coordinates.LocalFrame, scope ScopeDriver, model mount.Model) *ObjectTracker {
	return &ObjectTracker{frame: frame, scope: scope, model: model}
}

// SetTrackedObject swaps the object currently being tracked.
func (o *ObjectTracker) SetTrackedObject(obj trackable.Trackable) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.trackedObject = obj
}

// SetModel replaces the active mount model, e.g. after a fresh
// calibration.
func (o *ObjectTracker) SetModel(model mount.Model) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.model = model
}

// Model returns a copy of the active mount model.
func (o *ObjectTracker) Model() mount.Model {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.model
}

// SetTrackingOffset sets the manual alt/az offset applied to every
// computed pointing solution.
func (o *ObjectTracker) SetTrackingOffset(alt, az float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.trackingOffset = mount.Angles{Alt: alt, Az: az}
}

// AddTrackingOffset accumulates a delta onto the current tracking
// offset.
func (o *ObjectTracker) AddTrackingOffset(dAlt, dAz float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.trackingOffset.Alt += dAlt
	o.trackingOffset.Az += dAz
}

// TrackingOffset returns the current manual tracking offset.
func (o *ObjectTracker) TrackingOffset() (alt, az float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.trackingOffset.Alt, o.trackingOffset.Az
}

// TrackedObjectName returns the attached object's name, or "" if none
// is attached.
func (o *ObjectTracker) TrackedObjectName() string {
	o.mu.Lock()
	obj := o.trackedObject
	o.mu.Unlock()

	if obj == nil {
		return ""
	}
	return obj.Name()
}

// IsTracking reports whether the currently attached object is
// available to track.
func (o *ObjectTracker) IsTracking() bool {
	o.mu.Lock()
	obj := o.trackedObject
	o.mu.Unlock()

	if obj == nil {
		return false
	}
	return obj.IsTracking()
}

// trackablePosition fetches the tracked object's position and, if
// it's geodetic, folds it through the local frame into a Cartesian
// local position. A nil result (with nil error) means the object
// currently has no position to offer.
func (o *ObjectTracker) trackablePosition() (*trackable.Position, error) {
	o.mu.Lock()
	obj := o.trackedObject
	o.mu.Unlock()

	if obj == nil {
		return nil, nil
	}

	pos, err := obj.GetPosition()
	if err != nil || pos == nil {
		return pos, err
	}

	if pos.Kind != trackable.KindLatLong {
		return pos, nil
	}

	local := o.frame.TransformToLocal(coordinates.Geographic{
		Latitude:  pos.Lat,
		Longitude: pos.Long,
		Altitude:  pos.Height,
	})

	cartesian := trackable.Position{Kind: trackable.KindCartesian, X: local.X, Y: local.Y, Z: local.Z}
	return &cartesian, nil
}

// Run computes a fresh pointing solution from the tracked object's
// current position and drives the scope to it. It is a no-op if the
// tracked object currently has no position.
func (o *ObjectTracker) Run() error {
	localPos, err := o.trackablePosition()
	if err != nil || localPos == nil {
		return err
	}

	o.mu.Lock()
	model := o.model
	offset := o.trackingOffset
	limits := o.limits
	o.mu.Unlock()

	var alt, az float64

	switch localPos.Kind {
	case trackable.KindCartesian:
		res := pointing.Solve(model, mount.Vec3{X: localPos.X, Y: localPos.Y, Z: localPos.Z})
		alt, az = res.Angles.Alt, res.Angles.Az
	case trackable.KindAltAz:
		alt, az = localPos.Alt, localPos.Az
	default:
		return errors.New("tracking: unusable local position type")
	}

	alt += offset.Alt
	az += offset.Az

	if ShouldAbortTracking(coordinates.HorizontalCoordinates{Altitude: alt, Azimuth: az}, limits) {
		return ErrTrackingLimitExceeded
	}

	if math.Abs(alt) > 90.0 {
		az += 180.0
		if alt > 0.0 {
			alt = 180.0 - alt
		} else {
			alt = -180.0 - alt
		}
	}

	az = math.Mod(az, 360.0)
	if az < 0 {
		az += 360.0
	}

	if err := o.scope.SlewToAltAz(alt, az); err != nil {
		return err
	}

	o.mu.Lock()
	o.lastMotorAngle = mount.Angles{Alt: alt, Az: az}
	o.mu.Unlock()

	return nil
}

// GetState returns the tracked object's local position together with
// the scope's actual reported motor angles.
func (o *ObjectTracker) GetState() (State, error) {
	localPos, err := o.trackablePosition()
	if err != nil {
		return State{}, err
	}

	alt, az, err := o.scope.GetAltAz()
	if err != nil {
		return State{}, err
	}

	o.mu.Lock()
	o.lastMotorAngle = mount.Angles{Alt: alt, Az: az}
	o.mu.Unlock()

	if localPos == nil {
		return State{}, ErrNoTrackedObject
	}

	return State{LocalPos: *localPos, Alt: alt, Az: az}, nil
}

// LastMotorAngle returns the most recent alt/az command sent to (or
// read back from) the scope driver.
func (o *ObjectTracker) LastMotorAngle() (alt, az float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastMotorAngle.Alt, o.lastMotorAngle.Az
}
