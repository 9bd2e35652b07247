// Package pointing solves for the motor angles that aim a calibrated
// mount at a target, and fits mount calibration parameters from a set
// of captured (target, driven-angle) pairs.
//
// Both problems are posed as the same small nonlinear least-squares
// objective minimized with gonum's L-BFGS implementation: no variable
// bounds are needed, the objective is smooth away from the mount's
// mechanical singularities, and a good initial guess (derived from the
// target's raw spherical angles) keeps the solver out of local minima
// in practice.
package pointing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/unklstewy/ads-bscope/pkg/mount"
)

// gradientTolerance matches the calibrated source's solver: L-BFGS
// terminates once the gradient infinity norm drops below this value.
const gradientTolerance = 1e-10

// errScale conditions the objective so its gradient doesn't vanish too
// close to the optimum for the optimizer's tolerance to bite.
const errScale = 10.0

// Result is the outcome of a pointing solve.
type Result struct {
	// Angles is the best motor-angle solution found, each reduced
	// modulo 360 degrees.
	Angles mount.Angles

	// ScopeError is the residual angular miss, in degrees, between the
	// scope boresight and the target at Angles.
	ScopeError float64

	// Converged is false if the underlying optimizer reported
	// non-convergence; Angles is still the best point found and is
	// safe to use (best-effort), but callers that care should log or
	// surface the failure rather than silently retry.
	Converged bool
}

// Solve finds the motor angles (alt, az) that point the given
// calibrated model's boresight at point, starting from the geometric
// initial guess derived from point's raw spherical angles.
func Solve(m mount.Model, point mount.Vec3) Result {
	guess := initialGuess(m, point)
	return solveFrom(m, point, guess)
}

// initialGuess computes the alt/az a perfectly-aligned mount would
// need to point at point, ignoring all six calibration parameters
// except the azimuth-drive's own z rotation and the declination home
// offset (both of which are large, first-order effects worth
// seeding). This keeps the optimizer out of the wrong local minimum
// for points far from the horizon.
func initialGuess(m mount.Model, point mount.Vec3) mount.Angles {
	base := math.Sqrt(point.X*point.X + point.Y*point.Y)
	alt0 := math.Atan2(point.Z, base)*180.0/math.Pi - m.DecOffset
	az0 := -math.Atan2(point.Y, point.X)*180.0/math.Pi - m.AzRotZ + 90.0
	return mount.Angles{Alt: alt0, Az: az0}
}

func objective(m mount.Model, point mount.Vec3, rots mount.Angles) float64 {
	s := m.Transform(point, rots)
	n := math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
	if n == 0 {
		return errScale
	}
	return errScale * (1.0 - s.Y/n)
}

// centralGradient approximates d(objective)/d(alt,az) by central
// differences; the mount transform has no convenient closed-form
// Jacobian once all six parameters are folded in, so finite
// differences stand in for an analytic gradient here.
func centralGradient(m mount.Model, point mount.Vec3, rots mount.Angles) []float64 {
	const h = 1e-6
	fAltPlus := objective(m, point, mount.Angles{Alt: rots.Alt + h, Az: rots.Az})
	fAltMinus := objective(m, point, mount.Angles{Alt: rots.Alt - h, Az: rots.Az})
	fAzPlus := objective(m, point, mount.Angles{Alt: rots.Alt, Az: rots.Az + h})
	fAzMinus := objective(m, point, mount.Angles{Alt: rots.Alt, Az: rots.Az - h})

	return []float64{
		(fAltPlus - fAltMinus) / (2 * h),
		(fAzPlus - fAzMinus) / (2 * h),
	}
}

func solveFrom(m mount.Model, point mount.Vec3, guess mount.Angles) Result {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return objective(m, point, mount.Angles{Alt: x[0], Az: x[1]})
		},
		Grad: func(grad, x []float64) {
			g := centralGradient(m, point, mount.Angles{Alt: x[0], Az: x[1]})
			copy(grad, g)
		},
	}

	res, err := optimize.Minimize(problem, []float64{guess.Alt, guess.Az}, &optimize.Settings{
		GradientThreshold: gradientTolerance,
	}, &optimize.LBFGS{})

	var best mount.Angles
	if res != nil {
		best = mount.Angles{Alt: res.X[0], Az: res.X[1]}
	} else {
		best = guess
	}

	best.Alt = math.Mod(best.Alt, 360.0)
	best.Az = math.Mod(best.Az, 360.0)

	scopeErr := m.ScopeError(point, best)

	converged := err == nil && res != nil && res.Status == optimize.Success
	return Result{Angles: best, ScopeError: scopeErr, Converged: converged}
}

// String renders a human-readable summary, used in logging around
// non-convergence.
func (r Result) String() string {
	return fmt.Sprintf("alt=%.4f az=%.4f scope_err=%.6f converged=%v",
		r.Angles.Alt, r.Angles.Az, r.ScopeError, r.Converged)
}
