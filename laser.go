// Package qlaser simulates a driven four-level atom coupled to a single
// cavity mode as an open quantum system.
//
// Atomic levels:
//
//	|3⟩ pump level
//	|2⟩ upper laser level
//	|1⟩ lower laser level
//	|0⟩ ground state
//
// Incoherent pumping drives 0 → 3, fast relaxation brings 3 → 2 and
// 1 → 0, and the 2 → 1 transition couples to the cavity mode with
// strength g (Jaynes-Cummings). Cavity photons leak at rate κ.
//
// References:
//   - Quantum Optics, Scully and Zubairy, chapter 11
package qlaser

import (
	"context"
	"fmt"
	"math"

	"github.com/pkg/errors"

	"qlaser/cmat"
	"qlaser/lindblad"
)

// NumLevels is the number of atomic levels of the gain medium.
const NumLevels = 4

// ThresholdInfinite is the threshold reported when the atom-cavity
// coupling is numerically negligible, meaning lasing is impossible.
const ThresholdInfinite = 1e10

// degenerateCoupling is the g² below which the threshold is degenerate.
const degenerateCoupling = 1e-10

// Params configures one laser run. It is immutable during a run.
type Params struct {
	// DimAtom is the number of atomic levels, fixed at NumLevels.
	DimAtom int
	// DimCavity is the cavity truncation; the maximum Fock state is DimCavity-1.
	DimCavity int

	// OmegaAtom is the 2 → 1 transition frequency.
	OmegaAtom float64
	// OmegaCavity is the cavity mode frequency.
	OmegaCavity float64

	// G is the Jaynes-Cummings coupling strength.
	G float64

	// Kappa is the cavity loss rate.
	Kappa float64
	// PumpRate is the incoherent pump rate 0 → 3.
	PumpRate float64
	// Gamma32 is the fast relaxation rate 3 → 2.
	Gamma32 float64
	// Gamma21 is the spontaneous emission rate 2 → 1.
	Gamma21 float64
	// Gamma10 is the fast relaxation rate 1 → 0.
	Gamma10 float64

	TStart float64
	TEnd   float64
	Dt     float64
}

// DefaultParams returns a resonant weak-coupling configuration evolved
// over 50 cavity lifetimes.
func DefaultParams() Params {
	const kappa = 0.05
	return Params{
		DimAtom:   NumLevels,
		DimCavity: 12,

		OmegaAtom:   1.0,
		OmegaCavity: 1.0,

		G: 0.1,

		Kappa:    kappa,
		PumpRate: 0.2,
		Gamma32:  1.0,
		Gamma21:  0.01,
		Gamma10:  1.0,

		TStart: 0,
		TEnd:   50 / kappa,
		Dt:     0.01,
	}
}

// Validate checks that the parameters describe a buildable system.
func (p Params) Validate() error {
	if p.DimAtom != NumLevels {
		return errors.Errorf("dim_atom %d, expected %d", p.DimAtom, NumLevels)
	}
	if p.DimCavity < 2 {
		return errors.Errorf("dim_cavity %d", p.DimCavity)
	}
	if dim := p.DimAtom * p.DimCavity; dim > cmat.MaxDim {
		return errors.Wrap(cmat.ErrCapacityExceeded, fmt.Sprintf("joint dimension %d > %d", dim, cmat.MaxDim))
	}
	for _, r := range []float64{p.Kappa, p.PumpRate, p.Gamma32, p.Gamma21, p.Gamma10} {
		if r < 0 {
			return errors.Errorf("negative rate %f", r)
		}
	}
	if p.Dt <= 0 {
		return errors.Errorf("non-positive dt %f", p.Dt)
	}
	if p.TEnd <= p.TStart {
		return errors.Errorf("empty time span [%f, %f]", p.TStart, p.TEnd)
	}
	return nil
}

// cavityAnnihilation builds a on the bare cavity subspace: a|n⟩ = √n|n-1⟩.
func cavityAnnihilation(dimCavity int) (*cmat.Matrix, error) {
	a, err := cmat.New(dimCavity, dimCavity)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	for n := 1; n < dimCavity; n++ {
		a.Set(n-1, n, complex(math.Sqrt(float64(n)), 0))
	}
	return a, nil
}

// atomicProjector builds |i⟩⟨j| on the bare atomic subspace.
func atomicProjector(i, j, dimAtom int) (*cmat.Matrix, error) {
	if i < 0 || i >= dimAtom || j < 0 || j >= dimAtom {
		return nil, errors.Errorf("level (%d, %d) outside 0..%d", i, j, dimAtom-1)
	}
	sigma, err := cmat.New(dimAtom, dimAtom)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	sigma.Set(i, j, 1)
	return sigma, nil
}

// Annihilation lifts the cavity annihilation operator to the joint
// atom ⊗ cavity space: a = I_atom ⊗ a_cavity.
func Annihilation(dimAtom, dimCavity int) (*cmat.Matrix, error) {
	var iAtom cmat.Matrix
	if err := iAtom.Identity(dimAtom); err != nil {
		return nil, errors.Wrap(err, "")
	}
	aCavity, err := cavityAnnihilation(dimCavity)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	a := &cmat.Matrix{}
	if err := a.Kron(&iAtom, aCavity); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return a, nil
}

// Creation lifts a† to the joint space.
func Creation(dimAtom, dimCavity int) (*cmat.Matrix, error) {
	a, err := Annihilation(dimAtom, dimCavity)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	aDag := &cmat.Matrix{}
	if err := aDag.Dagger(a); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return aDag, nil
}

// Sigma lifts the atomic transition operator |i⟩⟨j| to the joint space:
// σ_ij = |i⟩⟨j| ⊗ I_cavity.
func Sigma(i, j, dimAtom, dimCavity int) (*cmat.Matrix, error) {
	proj, err := atomicProjector(i, j, dimAtom)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	var iCavity cmat.Matrix
	if err := iCavity.Identity(dimCavity); err != nil {
		return nil, errors.Wrap(err, "")
	}
	sigma := &cmat.Matrix{}
	if err := sigma.Kron(proj, &iCavity); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return sigma, nil
}

// Number builds the photon number operator N = a†a on the joint space.
func Number(dimAtom, dimCavity int) (*cmat.Matrix, error) {
	a, err := Annihilation(dimAtom, dimCavity)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	aDag, err := Creation(dimAtom, dimCavity)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	n := &cmat.Matrix{}
	if err := n.Mul(aDag, a); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return n, nil
}

// BuildSystem assembles the laser Lindblad system
//
//	H = ω_c a†a + ω_a σ_22 + g (a† σ_12 + a σ_21)
//
// with jump channels, in insertion order: cavity loss (a, κ), pump
// (σ_30, Γ_p), fast decay (σ_23, γ_32), spontaneous emission
// (σ_12, γ_21), fast decay (σ_01, γ_10). The returned initial state is
// the pure ground state |0,0⟩⟨0,0|.
func BuildSystem(p Params) (*lindblad.System, *cmat.Matrix, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	dimA, dimC := p.DimAtom, p.DimCavity
	dim := dimA * dimC

	sys, err := lindblad.NewSystem(dim)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}

	a, err := Annihilation(dimA, dimC)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	aDag, err := Creation(dimA, dimC)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	n, err := Number(dimA, dimC)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	sigma22, err := Sigma(2, 2, dimA, dimC)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	sigma12, err := Sigma(1, 2, dimA, dimC)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	sigma21, err := Sigma(2, 1, dimA, dimC)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}

	// H = ω_c N + ω_a σ_22 + g (a† σ_12 + a σ_21).
	var h, coupling, tmp cmat.Matrix
	if err := coupling.Mul(aDag, sigma12); err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	if err := tmp.Mul(a, sigma21); err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	if err := coupling.Add(&coupling, &tmp); err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	n.Scale(complex(p.OmegaCavity, 0))
	sigma22.Scale(complex(p.OmegaAtom, 0))
	if err := h.Add(n, sigma22); err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	if err := h.AddScaled(&h, &coupling, complex(p.G, 0)); err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	if err := sys.SetHamiltonian(&h); err != nil {
		return nil, nil, errors.Wrap(err, "")
	}

	// Jump channels.
	sigma30, err := Sigma(3, 0, dimA, dimC)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	sigma23, err := Sigma(2, 3, dimA, dimC)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	sigma01, err := Sigma(0, 1, dimA, dimC)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	channels := []struct {
		op   *cmat.Matrix
		rate float64
	}{
		{a, p.Kappa},
		{sigma30, p.PumpRate},
		{sigma23, p.Gamma32},
		{sigma12, p.Gamma21},
		{sigma01, p.Gamma10},
	}
	for _, c := range channels {
		if err := sys.AddJumpOperator(c.op, c.rate); err != nil {
			return nil, nil, errors.Wrap(err, "")
		}
	}

	rho0, err := cmat.New(dim, dim)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	rho0.Set(0, 0, 1)

	return sys, rho0, nil
}

// Threshold returns the pump rate at which optical gain balances cavity
// loss, Γ_th = κ γ_21 / (4 g²). It returns ThresholdInfinite when g² is
// numerically negligible.
func Threshold(p Params) float64 {
	g2 := p.G * p.G
	if g2 < degenerateCoupling {
		return ThresholdInfinite
	}
	return p.Kappa * p.Gamma21 / (4 * g2)
}

// State is a snapshot of the laser observables at one instant.
type State struct {
	// Photons is the mean photon number <a†a>.
	Photons float64
	// Population holds the level occupations P_0..P_3.
	Population [NumLevels]float64
	// Inversion is P_2 - P_1.
	Inversion float64
	// Coherence is |<σ_21>|.
	Coherence float64
	// Purity is Tr(ρ²).
	Purity float64
	// Entropy is the linear entropy 1 - Tr(ρ²), a mixedness proxy.
	Entropy float64
	// ThresholdRatio is pump_rate / pump_threshold; > 1 means above threshold.
	ThresholdRatio float64
}

// Observables computes the laser observables of rho. rho is not modified.
func Observables(p Params, rho *cmat.Matrix) (State, error) {
	if err := p.Validate(); err != nil {
		return State{}, errors.Wrap(err, "")
	}
	dimA, dimC := p.DimAtom, p.DimCavity
	var state State

	n, err := Number(dimA, dimC)
	if err != nil {
		return State{}, errors.Wrap(err, "")
	}
	nExp, err := lindblad.Expect(rho, n)
	if err != nil {
		return State{}, errors.Wrap(err, "")
	}
	// The imaginary part vanishes for a Hermitian state.
	state.Photons = real(nExp)

	for i := 0; i < NumLevels; i++ {
		sigmaII, err := Sigma(i, i, dimA, dimC)
		if err != nil {
			return State{}, errors.Wrap(err, "")
		}
		pop, err := lindblad.Expect(rho, sigmaII)
		if err != nil {
			return State{}, errors.Wrap(err, "")
		}
		state.Population[i] = real(pop)
	}
	state.Inversion = state.Population[2] - state.Population[1]

	sigma21, err := Sigma(2, 1, dimA, dimC)
	if err != nil {
		return State{}, errors.Wrap(err, "")
	}
	coh, err := lindblad.Expect(rho, sigma21)
	if err != nil {
		return State{}, errors.Wrap(err, "")
	}
	state.Coherence = math.Hypot(real(coh), imag(coh))

	var rho2 cmat.Matrix
	if err := rho2.Mul(rho, rho); err != nil {
		return State{}, errors.Wrap(err, "")
	}
	state.Purity = real(rho2.Trace())
	state.Entropy = 1 - state.Purity

	// A lossless cavity or a dark 2 → 1 transition has no threshold to
	// compare against; report 0 rather than dividing by it.
	if th := Threshold(p); th > 0 {
		state.ThresholdRatio = p.PumpRate / th
	}

	return state, nil
}

// Sample is one point of a sampled time evolution.
type Sample struct {
	Time      float64
	Photons   float64
	Inversion float64
	// G2 approximates the zero-delay second-order correlation:
	// 1 for coherent light, 2 for thermal light.
	G2 float64
}

// EvolveSampled integrates rho from TStart to TEnd in fixed Dt steps,
// recording numSamples observable snapshots at evenly spaced checkpoints.
// The sampling cadence is computed once from the span and is not
// renormalized if the integrator overshoots. Cancellation is checked
// between steps.
func EvolveSampled(ctx context.Context, p Params, sys *lindblad.System, rho *cmat.Matrix, numSamples int) ([]Sample, error) {
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if numSamples < 2 {
		return nil, errors.Errorf("num_samples %d", numSamples)
	}

	dtSample := (p.TEnd - p.TStart) / float64(numSamples-1)
	samples := make([]Sample, 0, numSamples)
	t := p.TStart
	nextSample := t
	for t < p.TEnd && len(samples) < numSamples {
		if err := ctx.Err(); err != nil {
			return samples, errors.Wrap(err, "")
		}

		if t >= nextSample {
			state, err := Observables(p, rho)
			if err != nil {
				return samples, errors.Wrap(err, "")
			}
			samples = append(samples, Sample{
				Time:      t,
				Photons:   state.Photons,
				Inversion: state.Inversion,
				G2:        1 + (1 - state.Purity),
			})
			nextSample += dtSample
		}

		if err := lindblad.Step(sys, rho, p.Dt); err != nil {
			return samples, errors.Wrap(err, "")
		}
		t += p.Dt
	}

	// The final checkpoint lands on TEnd itself, which the loop overshoots
	// rather than hits. Record the end state for the remaining slots.
	if len(samples) < numSamples {
		state, err := Observables(p, rho)
		if err != nil {
			return samples, errors.Wrap(err, "")
		}
		end := Sample{
			Time:      t,
			Photons:   state.Photons,
			Inversion: state.Inversion,
			G2:        1 + (1 - state.Purity),
		}
		for len(samples) < numSamples {
			samples = append(samples, end)
		}
	}
	return samples, nil
}
