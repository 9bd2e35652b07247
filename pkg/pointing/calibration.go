package pointing

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/unklstewy/ads-bscope/pkg/mount"
)

// ErrNoCalibrationData is the distinguished sentinel returned when
// Calibrate is asked to fit a model with no samples. Callers must
// leave the prior model untouched on this error.
var ErrNoCalibrationData = errors.New("pointing: no calibration samples supplied")

// Sample is one captured (target, driven-angle) calibration
// observation: the Cartesian target position in the observer's local
// horizon frame, and the motor angles the operator drove to center it.
type Sample struct {
	Point mount.Vec3
	Rots  mount.Angles
}

// CalibrationResult is the outcome of fitting a mount model to a set
// of samples.
type CalibrationResult struct {
	Model        mount.Model
	Residual     float64
	Converged    bool
	Reprojection []float64 // per-sample scope error, in degrees, at Model
}

// Calibrate fits the six mount model parameters to the given samples,
// starting the search from start's parameters after seeding az_rot_z
// and dec_offset with the warm-start heuristic. On solver failure, the
// returned model equals start unchanged and Converged is false; the
// caller must not adopt Model in that case.
func Calibrate(start mount.Model, samples []Sample) (CalibrationResult, error) {
	if len(samples) < 1 {
		return CalibrationResult{}, ErrNoCalibrationData
	}

	seeded := start
	seeded.AzRotX = 0
	seeded.AzRotY = 0
	seeded.DecRoll = 0
	seeded.ScopeYaw = 0
	seeded.DecOffset, seeded.AzRotZ = warmStart(samples)

	x0 := seeded.Pack()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return calibrationObjective(packedModel(x), samples)
		},
		Grad: func(grad, x []float64) {
			calibrationGradient(grad, x, samples)
		},
	}

	res, err := optimize.Minimize(problem, x0[:], &optimize.Settings{
		GradientThreshold: gradientTolerance,
	}, &optimize.LBFGS{})

	if err != nil || res == nil || res.Status != optimize.Success {
		return CalibrationResult{Model: start, Converged: false}, nil
	}

	var fitted [6]float64
	copy(fitted[:], res.X)
	newModel := mount.Unpack(fitted)

	reproj := make([]float64, len(samples))
	for i, s := range samples {
		reproj[i] = newModel.ScopeError(s.Point, s.Rots)
	}

	return CalibrationResult{
		Model:        newModel,
		Residual:     res.F,
		Converged:    true,
		Reprojection: reproj,
	}, nil
}

// warmStart computes the mean alt/az offset between each sample's raw
// spherical angle (ignoring all calibration) and its observed driven
// angle, used to seed dec_offset and az_rot_z before the nonlinear
// solve — these two parameters dominate the error surface, so seeding
// them well is what keeps the fit out of local minima.
func warmStart(samples []Sample) (decOffset, azRotZ float64) {
	var sumAlt, sumAz float64
	for _, s := range samples {
		base := math.Sqrt(s.Point.X*s.Point.X + s.Point.Y*s.Point.Y)
		trueAlt := math.Atan(s.Point.Z/base) * 180.0 / math.Pi
		trueAz := -math.Atan2(s.Point.Y, s.Point.X)*180.0/math.Pi + 90.0

		sumAlt += math.Mod(trueAlt-s.Rots.Alt, 360.0)
		sumAz += math.Mod(trueAz-s.Rots.Az, 360.0)
	}
	n := float64(len(samples))
	return sumAlt / n, sumAz / n
}

func packedModel(x []float64) mount.Model {
	var p [6]float64
	copy(p[:], x)
	return mount.Unpack(p)
}

// calibrationObjective is the mean per-sample pointing error, scaled
// by the same conditioning factor as the single-point solver.
func calibrationObjective(m mount.Model, samples []Sample) float64 {
	var sum float64
	for _, s := range samples {
		v := m.Transform(s.Point, s.Rots)
		n := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
		if n == 0 {
			continue
		}
		sum += 1.0 - v.Y/n
	}
	return errScale * sum / float64(len(samples))
}

// calibrationGradient fills grad with the central-difference gradient
// of calibrationObjective with respect to the six packed parameters.
func calibrationGradient(grad, x []float64, samples []Sample) {
	const h = 1e-6

	for i := range x {
		xPlus := append([]float64(nil), x...)
		xMinus := append([]float64(nil), x...)
		xPlus[i] += h
		xMinus[i] -= h

		fPlus := calibrationObjective(packedModel(xPlus), samples)
		fMinus := calibrationObjective(packedModel(xMinus), samples)
		grad[i] = (fPlus - fMinus) / (2 * h)
	}
}
