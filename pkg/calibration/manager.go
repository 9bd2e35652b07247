// Package calibration manages the interactive calibration workflow:
// capturing alt/az-to-local-position pairs from a live tracked object
// and periodically refitting the mount model against them.
package calibration

import (
	"errors"
	"log"

	"github.com/unklstewy/ads-bscope/pkg/mount"
	"github.com/unklstewy/ads-bscope/pkg/pointing"
	"github.com/unklstewy/ads-bscope/pkg/trackable"
	"github.com/unklstewy/ads-bscope/pkg/tracking"
)

// ErrNotTracking is returned by CapturePoint when the attached
// object tracker has no trackable object currently available.
var ErrNotTracking = errors.New("calibration: object tracker is not tracking")

// Point is a single captured alt/az-to-local-position calibration
// sample, plus the residual left over from the most recent fit.
type Point struct {
	LocalPos mount.Vec3
	Angles   mount.Angles

	ObjectName       string
	ReprojectionError float64
}

// Manager captures calibration points from a live ObjectTracker and
// fits a mount model against them.
type Manager struct {
	tracker *tracking.ObjectTracker
	model   mount.Model
	points  []Point
}

// NewManager creates a calibration manager seeded with startModel and
// drawing points from tracker.
func NewManager(tracker *tracking.ObjectTracker, startModel mount.Model) *Manager {
	return &Manager{tracker: tracker, model: startModel}
}

// CapturePoint records the tracker's current local position and motor
// angles as a new calibration point. It fails if the tracker isn't
// currently tracking an object, or if the tracked position isn't
// Cartesian (i.e. it's a raw alt/az source like a satellite bridge,
// which can't be fit into the mount model).
func (m *Manager) CapturePoint() error {
	if !m.tracker.IsTracking() {
		return ErrNotTracking
	}

	state, err := m.tracker.GetState()
	if err != nil {
		return err
	}
	if state.LocalPos.Kind != trackable.KindCartesian {
		return errors.New("calibration: tracked position must be cartesian")
	}

	m.points = append(m.points, Point{
		LocalPos:   mount.Vec3{X: state.LocalPos.X, Y: state.LocalPos.Y, Z: state.LocalPos.Z},
		Angles:     mount.Angles{Alt: state.Alt, Az: state.Az},
		ObjectName: m.tracker.TrackedObjectName(),
	})
	return nil
}

// UpdateModel refits the mount model against all captured points. If
// there are no points, or the fit fails to converge, the prior model
// is kept and -1.0 is returned as the residual, matching the "no
// solution" sentinel used elsewhere in the calibration workflow. On
// success it records each point's reprojection error and, if
// updateTracker is true, pushes the fitted model to the attached
// object tracker.
func (m *Manager) UpdateModel(updateTracker bool) float64 {
	if len(m.points) == 0 {
		return -1.0
	}

	samples := make([]pointing.Sample, len(m.points))
	for i, p := range m.points {
		samples[i] = pointing.Sample{Point: p.LocalPos, Rots: p.Angles}
	}

	result, err := pointing.Calibrate(m.model, samples)
	if err != nil {
		log.Printf("calibration: fit failed: %v", err)
		return -1.0
	}
	if !result.Converged {
		log.Printf("calibration: fit did not converge, keeping prior model")
		return -1.0
	}

	m.model = result.Model
	for i := range m.points {
		m.points[i].ReprojectionError = result.Reprojection[i]
	}

	if updateTracker {
		m.tracker.SetModel(m.model)
	}

	return result.Residual
}

// SendModel pushes the current (not necessarily freshly-fit) model to
// the attached object tracker.
func (m *Manager) SendModel() {
	m.tracker.SetModel(m.model)
}

// ResetModel discards the current model and all captured points,
// returning to the uncalibrated identity model.
func (m *Manager) ResetModel() {
	m.model = mount.Model{}
	m.points = nil
}

// GetModel returns the manager's current mount model.
func (m *Manager) GetModel() mount.Model {
	return m.model
}

// SetModel replaces the manager's current mount model without
// affecting captured points.
func (m *Manager) SetModel(model mount.Model) {
	m.model = model
}

// DeletePoint removes the point at index i and refits the model
// against the remaining points.
func (m *Manager) DeletePoint(i int, updateTracker bool) float64 {
	m.points = append(m.points[:i], m.points[i+1:]...)
	return m.UpdateModel(updateTracker)
}

// PointList returns a copy of the captured calibration points.
func (m *Manager) PointList() []Point {
	out := make([]Point, len(m.points))
	copy(out, m.points)
	return out
}
