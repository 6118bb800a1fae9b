package lindblad

import (
	"context"

	"github.com/pkg/errors"

	"qlaser/cmat"
)

// Step advances rho by one classic RK4 step of size dt:
//
//	k1 = f(ρ)
//	k2 = f(ρ + dt/2 k1)
//	k3 = f(ρ + dt/2 k2)
//	k4 = f(ρ + dt k3)
//	ρ  = ρ + dt/6 (k1 + 2 k2 + 2 k3 + k4)
//
// On error rho is left unmodified. A step is atomic: there is no
// cancellation point inside it.
func Step(sys *System, rho *cmat.Matrix, dt float64) error {
	if dt <= 0 {
		return errors.Errorf("non-positive dt %f", dt)
	}
	halfDt := complex(dt/2, 0)

	k1, err := sys.RHS(rho)
	if err != nil {
		return errors.Wrap(err, "")
	}

	var tmp cmat.Matrix
	if err := tmp.AddScaled(rho, k1, halfDt); err != nil {
		return errors.Wrap(err, "")
	}
	k2, err := sys.RHS(&tmp)
	if err != nil {
		return errors.Wrap(err, "")
	}

	if err := tmp.AddScaled(rho, k2, halfDt); err != nil {
		return errors.Wrap(err, "")
	}
	k3, err := sys.RHS(&tmp)
	if err != nil {
		return errors.Wrap(err, "")
	}

	if err := tmp.AddScaled(rho, k3, complex(dt, 0)); err != nil {
		return errors.Wrap(err, "")
	}
	k4, err := sys.RHS(&tmp)
	if err != nil {
		return errors.Wrap(err, "")
	}

	// ρ + dt/6 (k1 + 2 k2 + 2 k3 + k4), accumulated term by term in tmp
	// and written back in one go so rho never holds a partial update.
	sixth := complex(dt/6, 0)
	third := complex(dt/3, 0)
	if err := tmp.AddScaled(rho, k1, sixth); err != nil {
		return errors.Wrap(err, "")
	}
	if err := tmp.AddScaled(&tmp, k2, third); err != nil {
		return errors.Wrap(err, "")
	}
	if err := tmp.AddScaled(&tmp, k3, third); err != nil {
		return errors.Wrap(err, "")
	}
	if err := tmp.AddScaled(&tmp, k4, sixth); err != nil {
		return errors.Wrap(err, "")
	}
	if err := rho.Copy(&tmp); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Evolve advances rho in fixed dt steps while elapsed time < total.
// The final step may overshoot total by up to dt; the last step is not
// clamped. Cancellation is checked between steps only.
func Evolve(ctx context.Context, sys *System, rho *cmat.Matrix, total, dt float64) error {
	for t := 0.0; t < total; t += dt {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "")
		}
		if err := Step(sys, rho, dt); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}
