package bridge

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qlaser"
)

func TestAtomFrequency(t *testing.T) {
	t.Parallel()
	tests := []struct {
		wavelength string
		omega      float64
	}{
		{wavelength: "1550nm", omega: 0.8},
		{wavelength: "405nm", omega: 2.5},
		{wavelength: "632nm", omega: 1.0},
		{wavelength: "", omega: 1.0},
	}
	for _, test := range tests {
		test := test
		t.Run(test.wavelength, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, test.omega, atomFrequency(test.wavelength, 1.0), 1e-12)
		})
	}
}

func TestEmit(t *testing.T) {
	t.Parallel()
	pulse := Pulse{Wavelength: "1550nm", Duration: "10ns", Polarization: 'H'}
	samples, err := Emit(context.Background(), zerolog.Nop(), pulse)
	require.NoError(t, err)
	require.Len(t, samples, PulseSamples)
	for _, s := range samples {
		assert.GreaterOrEqual(t, s.Photons, -1e-9)
	}
}

func TestEmitWith(t *testing.T) {
	t.Parallel()
	p := qlaser.DefaultParams()
	p.TEnd = 0.5
	p.PumpRate = 0
	pulse := Pulse{Wavelength: "632nm", Polarization: 'V'}
	samples, err := EmitWith(context.Background(), zerolog.Nop(), pulse, p, 5)
	require.NoError(t, err)
	require.Len(t, samples, 5)

	// Without pumping the ground state stays dark.
	for _, s := range samples {
		assert.InDelta(t, 0.0, s.Photons, 1e-9)
		assert.InDelta(t, 0.0, s.Inversion, 1e-9)
	}
}

func TestEmitWithInvalid(t *testing.T) {
	t.Parallel()
	p := qlaser.DefaultParams()
	p.Dt = -1
	_, err := EmitWith(context.Background(), zerolog.Nop(), Pulse{}, p, 5)
	assert.Error(t, err)
}
