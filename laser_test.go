package qlaser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qlaser/cmat"
	"qlaser/lindblad"
)

func TestDefaultParams(t *testing.T) {
	t.Parallel()
	p := DefaultParams()
	require.NoError(t, p.Validate())
	assert.Equal(t, NumLevels, p.DimAtom)
	assert.Equal(t, 12, p.DimCavity)
	assert.InDelta(t, 1000.0, p.TEnd, 1e-12)
}

func TestParamsValidate(t *testing.T) {
	t.Parallel()
	p := DefaultParams()
	p.DimCavity = 17
	err := p.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, cmat.ErrCapacityExceeded)

	p = DefaultParams()
	p.Dt = 0
	assert.Error(t, p.Validate())

	p = DefaultParams()
	p.Kappa = -0.1
	assert.Error(t, p.Validate())

	p = DefaultParams()
	p.DimAtom = 3
	assert.Error(t, p.Validate())
}

func TestThreshold(t *testing.T) {
	t.Parallel()
	p := DefaultParams()
	// κ γ21 / (4 g²) = 0.05 * 0.01 / 0.04.
	assert.InDelta(t, 0.0125, Threshold(p), 1e-12)

	p.G = 0
	assert.GreaterOrEqual(t, Threshold(p), 1e9)
}

func TestNumberOperator(t *testing.T) {
	t.Parallel()
	const dimA, dimC = 4, 12
	n, err := Number(dimA, dimC)
	require.NoError(t, err)
	require.Equal(t, dimA*dimC, n.Rows())
	require.Equal(t, dimA*dimC, n.Cols())

	// N is diagonal with the Fock index on the diagonal in every atomic sector.
	for i := 0; i < dimA; i++ {
		for f := 0; f < dimC; f++ {
			idx := i*dimC + f
			assert.InDelta(t, float64(f), real(n.At(idx, idx)), 1e-12)
		}
	}
}

func TestSigmaLift(t *testing.T) {
	t.Parallel()
	const dimA, dimC = 4, 12
	sigma, err := Sigma(2, 1, dimA, dimC)
	require.NoError(t, err)

	// σ_21 maps atomic sector 1 to sector 2, identity on the cavity.
	for f := 0; f < dimC; f++ {
		assert.InDelta(t, 1.0, real(sigma.At(2*dimC+f, 1*dimC+f)), 1e-12)
	}
	var sum complex128
	for i := 0; i < sigma.Rows(); i++ {
		for j := 0; j < sigma.Cols(); j++ {
			sum += sigma.At(i, j)
		}
	}
	assert.InDelta(t, float64(dimC), real(sum), 1e-12)

	_, err = Sigma(4, 0, dimA, dimC)
	assert.Error(t, err)
}

func TestBuildSystem(t *testing.T) {
	t.Parallel()
	p := DefaultParams()
	sys, rho0, err := BuildSystem(p)
	require.NoError(t, err)
	assert.Equal(t, p.DimAtom*p.DimCavity, sys.Dim())
	assert.Equal(t, 5, sys.NumJumpOps())
	assert.InDelta(t, 1.0, real(rho0.Trace()), 1e-12)
	assert.InDelta(t, 1.0, real(rho0.At(0, 0)), 1e-12)
}

func TestObservablesGroundState(t *testing.T) {
	t.Parallel()
	p := DefaultParams()
	_, rho0, err := BuildSystem(p)
	require.NoError(t, err)

	state, err := Observables(p, rho0)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, state.Photons, 1e-12)
	assert.InDelta(t, 1.0, state.Population[0], 1e-12)
	assert.InDelta(t, 0.0, state.Inversion, 1e-12)
	assert.InDelta(t, 1.0, state.Purity, 1e-12)
	assert.InDelta(t, 0.0, state.Entropy, 1e-12)
	assert.InDelta(t, 16.0, state.ThresholdRatio, 1e-9)
}

func TestObservablesZeroThreshold(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{name: "lossless cavity", modify: func(p *Params) { p.Kappa = 0 }},
		{name: "dark transition", modify: func(p *Params) { p.Gamma21 = 0 }},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			p := DefaultParams()
			test.modify(&p)
			require.NoError(t, p.Validate())
			_, rho0, err := BuildSystem(p)
			require.NoError(t, err)

			state, err := Observables(p, rho0)
			require.NoError(t, err)
			assert.InDelta(t, 0.0, Threshold(p), 1e-12)
			assert.InDelta(t, 0.0, state.ThresholdRatio, 1e-12)
		})
	}
}

func TestPurityBound(t *testing.T) {
	t.Parallel()
	p := DefaultParams()
	p.TEnd = 0.5
	sys, rho, err := BuildSystem(p)
	require.NoError(t, err)
	require.NoError(t, lindblad.Evolve(context.Background(), sys, rho, p.TEnd, p.Dt))

	state, err := Observables(p, rho)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, state.Purity, 0.0)
	assert.LessOrEqual(t, state.Purity, 1.0+1e-9)
}

func TestEvolveSampled(t *testing.T) {
	t.Parallel()
	p := DefaultParams()
	p.TEnd = 1.0
	sys, rho, err := BuildSystem(p)
	require.NoError(t, err)

	const numSamples = 10
	samples, err := EvolveSampled(context.Background(), p, sys, rho, numSamples)
	require.NoError(t, err)
	require.Len(t, samples, numSamples)

	for i, s := range samples {
		if i > 0 {
			assert.GreaterOrEqual(t, s.Time, samples[i-1].Time)
		}
		assert.GreaterOrEqual(t, s.Photons, -1e-9)
		assert.GreaterOrEqual(t, s.G2, 1.0-1e-9)
	}
	assert.InDelta(t, p.TStart, samples[0].Time, 1e-12)
	assert.InDelta(t, p.TEnd, samples[numSamples-1].Time, p.Dt+1e-9)
}

func TestEvolveSampledCancel(t *testing.T) {
	t.Parallel()
	p := DefaultParams()
	p.TEnd = 1.0
	sys, rho, err := BuildSystem(p)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = EvolveSampled(ctx, p, sys, rho, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvolveSampledTooFew(t *testing.T) {
	t.Parallel()
	p := DefaultParams()
	sys, rho, err := BuildSystem(p)
	require.NoError(t, err)
	_, err = EvolveSampled(context.Background(), p, sys, rho, 1)
	assert.Error(t, err)
}
