// Package lindblad models open quantum systems via the Lindblad master
// equation
//
//	dρ/dt = -i[H, ρ] + Σ_k (L_k ρ L_k† - ½{L_k† L_k, ρ})
//
// and integrates it with a fixed-step fourth-order Runge-Kutta scheme.
//
// References:
//   - The theory of open quantum systems, Breuer and Petruccione
package lindblad

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"qlaser/cmat"
)

// MaxJumpOps is the maximum number of jump operators a System holds.
const MaxJumpOps = 8

type jumpOp struct {
	// op is sqrt(gamma) * L.
	op cmat.Matrix
	// dag is op†.
	dag cmat.Matrix
	// dagOp is op† op, precomputed for the anticommutator term.
	dagOp cmat.Matrix
}

// System is a Hamiltonian together with a bounded, ordered set of jump
// operators. It is a single-owner mutable container: build it once, then
// step it repeatedly. It is not safe for concurrent use.
type System struct {
	dim   int
	h     cmat.Matrix
	jumps []jumpOp
}

// NewSystem returns a system of the given Hilbert-space dimension with a
// zero Hamiltonian and no jump operators.
func NewSystem(dim int) (*System, error) {
	s := &System{dim: dim}
	if err := s.h.Zeros(dim, dim); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return s, nil
}

// Dim returns the Hilbert-space dimension.
func (s *System) Dim() int { return s.dim }

// NumJumpOps returns the number of jump operators added so far.
func (s *System) NumJumpOps() int { return len(s.jumps) }

// SetHamiltonian copies h into the system.
func (s *System) SetHamiltonian(h *cmat.Matrix) error {
	if h.Rows() != s.dim || h.Cols() != s.dim {
		return errors.Wrap(cmat.ErrDimensionMismatch, fmt.Sprintf("%dx%d != %d", h.Rows(), h.Cols(), s.dim))
	}
	if err := s.h.Copy(h); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// AddJumpOperator stores sqrt(gamma)*l together with its precomputed
// adjoint and adjoint-product. Insertion order is preserved. When the
// table is full the call is rejected and the system is unchanged.
func (s *System) AddJumpOperator(l *cmat.Matrix, gamma float64) error {
	if l.Rows() != s.dim || l.Cols() != s.dim {
		return errors.Wrap(cmat.ErrDimensionMismatch, fmt.Sprintf("%dx%d != %d", l.Rows(), l.Cols(), s.dim))
	}
	if gamma < 0 {
		return errors.Errorf("negative rate %f", gamma)
	}
	if len(s.jumps) >= MaxJumpOps {
		return errors.Wrap(cmat.ErrCapacityExceeded, fmt.Sprintf("%d jump operators", MaxJumpOps))
	}

	var j jumpOp
	if err := j.op.Copy(l); err != nil {
		return errors.Wrap(err, "")
	}
	j.op.Scale(complex(math.Sqrt(gamma), 0))
	if err := j.dag.Dagger(&j.op); err != nil {
		return errors.Wrap(err, "")
	}
	if err := j.dagOp.Mul(&j.dag, &j.op); err != nil {
		return errors.Wrap(err, "")
	}

	s.jumps = append(s.jumps, j)
	return nil
}

// Terms evaluates the two halves of the master equation at rho: the
// unitary term -i[H, ρ] and the dissipative term
// Σ_k (L_k ρ L_k† - ½{L_k† L_k, ρ}).
func (s *System) Terms(rho *cmat.Matrix) (unitary, dissipative *cmat.Matrix, err error) {
	if rho.Rows() != s.dim || rho.Cols() != s.dim {
		return nil, nil, errors.Wrap(cmat.ErrDimensionMismatch, fmt.Sprintf("%dx%d != %d", rho.Rows(), rho.Cols(), s.dim))
	}

	unitary = &cmat.Matrix{}
	if err := unitary.Commutator(&s.h, rho); err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	unitary.Scale(-1i)

	dissipative = &cmat.Matrix{}
	if err := dissipative.Zeros(s.dim, s.dim); err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	var lRho, lRhoLd, anticomm, term cmat.Matrix
	for k := range s.jumps {
		j := &s.jumps[k]

		// L_k ρ L_k†
		if err := lRho.Mul(&j.op, rho); err != nil {
			return nil, nil, errors.Wrap(err, "")
		}
		if err := lRhoLd.Mul(&lRho, &j.dag); err != nil {
			return nil, nil, errors.Wrap(err, "")
		}

		// {L_k† L_k, ρ}
		if err := anticomm.Anticommutator(&j.dagOp, rho); err != nil {
			return nil, nil, errors.Wrap(err, "")
		}

		if err := term.AddScaled(&lRhoLd, &anticomm, -0.5); err != nil {
			return nil, nil, errors.Wrap(err, "")
		}
		if err := dissipative.Add(dissipative, &term); err != nil {
			return nil, nil, errors.Wrap(err, "")
		}
	}

	return unitary, dissipative, nil
}

// RHS evaluates dρ/dt at rho.
func (s *System) RHS(rho *cmat.Matrix) (*cmat.Matrix, error) {
	unitary, dissipative, err := s.Terms(rho)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	drho := &cmat.Matrix{}
	if err := drho.Add(unitary, dissipative); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return drho, nil
}

// Expect returns the expectation value <O> = Tr(ρ O).
func Expect(rho, op *cmat.Matrix) (complex128, error) {
	var rhoOp cmat.Matrix
	if err := rhoOp.Mul(rho, op); err != nil {
		return 0, errors.Wrap(err, "")
	}
	return rhoOp.Trace(), nil
}
