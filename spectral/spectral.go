// Package spectral computes eigenvalue diagnostics of density matrices.
//
// The integrator guarantees neither positivity nor low mixedness of an
// evolved state; this package measures both exactly, which the linear
// entropy proxy 1 - Tr(ρ²) cannot.
package spectral

import (
	stderrors "errors"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"qlaser/cmat"
)

// ErrNotHermitian is returned when the input is not Hermitian within
// the package tolerance.
var ErrNotHermitian = stderrors.New("spectral: matrix is not hermitian")

const (
	hermTol = 1e-9
	// eigFloor is the eigenvalue below which a state is treated as
	// unoccupied when summing entropy contributions.
	eigFloor = 1e-12
)

// Eigenvalues returns the spectrum of a Hermitian matrix in ascending
// order.
//
// A Hermitian H = Re + i·Im is embedded as the real symmetric block
// matrix [[Re, -Im], [Im, Re]], whose spectrum is that of H with every
// eigenvalue doubled. The embedding is diagonalized with gonum and
// adjacent pairs are collapsed back into single eigenvalues.
func Eigenvalues(rho *cmat.Matrix) ([]float64, error) {
	if rho.Rows() != rho.Cols() {
		return nil, errors.Wrap(cmat.ErrDimensionMismatch, "not square")
	}
	if !rho.Hermitian(hermTol) {
		return nil, errors.Wrap(ErrNotHermitian, "")
	}
	n := rho.Rows()

	sym := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			// Symmetrize away the sub-tolerance Hermiticity drift.
			v := (rho.At(i, j) + complex(real(rho.At(j, i)), -imag(rho.At(j, i)))) / 2
			sym.SetSym(i, j, real(v))
			sym.SetSym(n+i, n+j, real(v))
			sym.SetSym(i, n+j, -imag(v))
			if i != j {
				sym.SetSym(j, n+i, imag(v))
			}
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, false); !ok {
		return nil, errors.Errorf("factorization failed for %dx%d", n, n)
	}
	doubled := eig.Values(nil)

	// Ascending order, each eigenvalue twice; average the pairs.
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = (doubled[2*i] + doubled[2*i+1]) / 2
	}
	return vals, nil
}

// MinEigenvalue returns the smallest eigenvalue of rho. For a physical
// density matrix it is >= 0; a negative value measures positivity drift
// accumulated by the integrator.
func MinEigenvalue(rho *cmat.Matrix) (float64, error) {
	vals, err := Eigenvalues(rho)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return vals[0], nil
}

// VonNeumannEntropy returns the exact entropy -Σ λ ln λ of rho, in nats.
func VonNeumannEntropy(rho *cmat.Matrix) (float64, error) {
	vals, err := Eigenvalues(rho)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	var s float64
	for _, v := range vals {
		if v > eigFloor {
			s -= v * math.Log(v)
		}
	}
	return s, nil
}
