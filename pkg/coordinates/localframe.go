package coordinates

import "math"

// WGS84 ellipsoid parameters, used for the ECEF conversion backing the
// local horizon-tangent frame below.
const (
	wgs84SemiMajorAxis = 6378137.0
	wgs84Flattening    = 1.0 / 298.257223563
)

func wgs84EccentricitySquared() float64 {
	f := wgs84Flattening
	return f * (2 - f)
}

// ecef converts a geodetic position (lat/lon in degrees, height in
// meters) to Earth-centered, Earth-fixed Cartesian coordinates.
func ecef(g Geographic) Vec3 {
	latRad := g.Latitude * DegreesToRadians
	lonRad := g.Longitude * DegreesToRadians
	h := g.Altitude

	e2 := wgs84EccentricitySquared()
	sinLat := math.Sin(latRad)
	n := wgs84SemiMajorAxis / math.Sqrt(1-e2*sinLat*sinLat)

	return Vec3{
		X: (n + h) * math.Cos(latRad) * math.Cos(lonRad),
		Y: (n + h) * math.Cos(latRad) * math.Sin(lonRad),
		Z: (n*(1-e2) + h) * sinLat,
	}
}

// Vec3 is a plain Cartesian vector in meters.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vec3) scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) unit() Vec3 {
	n := v.norm()
	if n == 0 {
		return v
	}
	return v.scale(1 / n)
}

func (v Vec3) cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// LocalFrame anchors a horizon-tangent Cartesian frame (+x east, +y
// north, +z up, in meters) at a fixed observer position, by deriving a
// right-handed basis from the WGS84 ellipsoid normal and the local
// meridian at the observer's location.
//
// This is the precise metric frame the pointing solver needs; it is
// distinct from the spherical bearing/elevation shortcut in
// transform.go (GeographicToHorizontal), which nothing in the
// tracking path calls.
type LocalFrame struct {
	origin Vec3
	vx     Vec3 // east
	vy     Vec3 // north
	vz     Vec3 // up
}

// NewLocalFrame anchors a local frame at the given observer position.
func NewLocalFrame(observer Geographic) LocalFrame {
	origin := ecef(observer)

	// Local vertical: ECEF delta toward a point 0.1m higher.
	up := observer
	up.Altitude += 0.1
	vz := ecef(up).sub(origin).unit()

	// Local north: ECEF delta toward a point 1e-5 degrees further
	// north, with the projection out of vz and an at-pole correction.
	northLat := observer.Latitude + 1e-5
	northLon := observer.Longitude
	if northLat > 90.0 {
		northLat = 180.0 - northLat
		northLon += 180.0
	}
	north := Geographic{Latitude: northLat, Longitude: northLon, Altitude: observer.Altitude}

	vyRaw := ecef(north).sub(origin)
	vy := vyRaw.sub(vz.scale(vyRaw.dot(vz))).unit()

	vx := vy.cross(vz)

	return LocalFrame{origin: origin, vx: vx, vy: vy, vz: vz}
}

// TransformToLocal converts a geodetic position to the horizon-tangent
// Cartesian frame anchored at this LocalFrame's observer: +x east, +y
// north, +z up, in meters.
func (f LocalFrame) TransformToLocal(g Geographic) Vec3 {
	delta := ecef(g).sub(f.origin)
	return Vec3{
		X: f.vx.dot(delta),
		Y: f.vy.dot(delta),
		Z: f.vz.dot(delta),
	}
}

// Orthonormal reports whether the frame's basis is right-handed and
// orthonormal to within tol — used by Property P4.
func (f LocalFrame) Orthonormal(tol float64) bool {
	rows := [3]Vec3{f.vx, f.vy, f.vz}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(rows[i].dot(rows[j])-want) > tol {
				return false
			}
		}
	}

	det := f.vx.dot(f.vy.cross(f.vz))
	return det > 0
}
