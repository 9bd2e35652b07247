// Package mount implements the six-parameter kinematic model of an
// Alt/Az telescope mount: the chain of rotations that maps a target
// direction in the observer's local horizon frame to the direction the
// scope boresight actually points, given the two motor drive angles.
//
// The parameters absorb the mount's physical misalignment: the azimuth
// platform is rarely bolted down dead level, the declination axis has
// its own roll and home offset, and the optical tube is rarely bolted
// to the declination cradle perfectly square. Six angles, fit once
// during calibration, correct for all of it.
package mount

import (
	"bytes"
	"encoding/json"
	"log"
	"math"
)

// Model holds the six calibrated angular parameters of the mount, all
// in degrees. The zero value is the uncalibrated identity model.
type Model struct {
	// AzRotX, AzRotY, AzRotZ describe the azimuth platform's
	// orientation relative to true level/north, applied as an
	// intrinsic Z-X-Y Euler rotation.
	AzRotX float64
	AzRotY float64
	AzRotZ float64

	// DecRoll is the roll of the declination axis about the scope's
	// forward direction once the azimuth drive is accounted for.
	DecRoll float64

	// DecOffset is the declination drive's home position offset.
	DecOffset float64

	// ScopeYaw is the final yaw between the declination axis and the
	// scope boresight.
	ScopeYaw float64
}

// Vec3 is a Cartesian vector, used both for target positions in the
// observer's local horizon frame and for the resulting scope-frame
// direction.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Angles is a pair of motor drive angles, in degrees.
type Angles struct {
	Alt float64
	Az  float64
}

// rotZ, rotX, rotY return the 3x3 right-handed rotation matrices for a
// rotation of deg degrees about the named axis, as flat row-major
// arrays.
func rotZ(deg float64) [3][3]float64 {
	r := deg * math.Pi / 180.0
	c, s := math.Cos(r), math.Sin(r)
	return [3][3]float64{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}
}

func rotX(deg float64) [3][3]float64 {
	r := deg * math.Pi / 180.0
	c, s := math.Cos(r), math.Sin(r)
	return [3][3]float64{
		{1, 0, 0},
		{0, c, -s},
		{0, s, c},
	}
}

func rotY(deg float64) [3][3]float64 {
	r := deg * math.Pi / 180.0
	c, s := math.Cos(r), math.Sin(r)
	return [3][3]float64{
		{c, 0, s},
		{0, 1, 0},
		{-s, 0, c},
	}
}

func matMul(a, b [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j] + a[i][2]*b[2][j]
		}
	}
	return out
}

func matVec(m [3][3]float64, v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Transform maps a target point, given in the observer's local horizon
// frame, through the mount's kinematic chain to the scope frame, for
// the given candidate motor angles. When the model is correctly
// calibrated and rots is the correct pointing solution for point, the
// result lies along +Y: Transform(point, rots) == (0, |point|, 0).
//
// The chain, applied point-first:
//
//	R1 = Rz(AzRotZ) Rx(AzRotX) Ry(AzRotY)   intrinsic Z-X-Y platform tilt
//	R2 = Rz(az)                             azimuth drive
//	R3 = Ry(DecRoll)                        declination axis tilt
//	R4 = Rx(-(DecOffset + alt))             declination drive + home offset
//	R5 = Rz(ScopeYaw)                       scope boresight yaw
//
// v_scope = R5 R4 R3 R2 R1 point
func (m Model) Transform(point Vec3, rots Angles) Vec3 {
	r1 := matMul(rotZ(m.AzRotZ), matMul(rotX(m.AzRotX), rotY(m.AzRotY)))
	r2 := rotZ(rots.Az)
	r3 := rotY(m.DecRoll)
	r4 := rotX(-(m.DecOffset + rots.Alt))
	r5 := rotZ(m.ScopeYaw)

	chain := matMul(r5, matMul(r4, matMul(r3, matMul(r2, r1))))
	return matVec(chain, point)
}

// ScopeError returns the residual angular miss, in degrees, between
// the scope boresight (+Y in scope frame) and the target, for the
// given point and candidate motor angles.
func (m Model) ScopeError(point Vec3, rots Angles) float64 {
	s := m.Transform(point, rots)
	n := s.norm()
	if n == 0 {
		return 0
	}
	cos := s.Y / n
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180.0 / math.Pi
}

// Pack returns the model's six parameters as a flat, order-preserving
// vector: [AzRotX, AzRotY, AzRotZ, DecRoll, DecOffset, ScopeYaw].
func (m Model) Pack() [6]float64 {
	return [6]float64{m.AzRotX, m.AzRotY, m.AzRotZ, m.DecRoll, m.DecOffset, m.ScopeYaw}
}

// Unpack rebuilds a Model from a packed parameter vector in the same
// order Pack produces.
func Unpack(p [6]float64) Model {
	return Model{
		AzRotX:    p[0],
		AzRotY:    p[1],
		AzRotZ:    p[2],
		DecRoll:   p[3],
		DecOffset: p[4],
		ScopeYaw:  p[5],
	}
}

// modelJSON mirrors the on-disk persisted representation: a flat
// object of six named degree fields.
type modelJSON struct {
	AzRotX    *float64 `json:"az_rot_x"`
	AzRotY    *float64 `json:"az_rot_y"`
	AzRotZ    *float64 `json:"az_rot_z"`
	DecRoll   *float64 `json:"dec_roll"`
	DecOffset *float64 `json:"dec_offset"`
	ScopeYaw  *float64 `json:"scope_yaw"`
}

// MarshalJSON writes the model as the flat six-field object used by
// the persisted model file format.
func (m Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AzRotX    float64 `json:"az_rot_x"`
		AzRotY    float64 `json:"az_rot_y"`
		AzRotZ    float64 `json:"az_rot_z"`
		DecRoll   float64 `json:"dec_roll"`
		DecOffset float64 `json:"dec_offset"`
		ScopeYaw  float64 `json:"scope_yaw"`
	}{m.AzRotX, m.AzRotY, m.AzRotZ, m.DecRoll, m.DecOffset, m.ScopeYaw})
}

// UnmarshalJSON restores a model from the flat six-field object. If
// any field is missing, an unknown field is present, or the data does
// not parse, the model resets to the all-zero default and a warning is
// logged; no error is returned.
func (m *Model) UnmarshalJSON(data []byte) error {
	var raw modelJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		log.Printf("mount: model JSON unparseable, resetting to defaults: %v", err)
		*m = Model{}
		return nil
	}

	if raw.AzRotX == nil || raw.AzRotY == nil || raw.AzRotZ == nil ||
		raw.DecRoll == nil || raw.DecOffset == nil || raw.ScopeYaw == nil {
		log.Printf("mount: model file missing required fields, resetting to defaults")
		*m = Model{}
		return nil
	}

	*m = Model{
		AzRotX:    *raw.AzRotX,
		AzRotY:    *raw.AzRotY,
		AzRotZ:    *raw.AzRotZ,
		DecRoll:   *raw.DecRoll,
		DecOffset: *raw.DecOffset,
		ScopeYaw:  *raw.ScopeYaw,
	}
	return nil
}
