package trackable

// Trackable is anything the object tracker can point a telescope at:
// an aircraft, a celestial object, or a satellite fed from an
// external source.
type Trackable interface {
	// GetPosition returns the object's current position, or nil if no
	// position is currently available (e.g. the aircraft has dropped
	// out of range).
	GetPosition() (*Position, error)

	// Name identifies the object for logging and UI display.
	Name() string

	// IsTracking reports whether the object is currently available to
	// track.
	IsTracking() bool
}
