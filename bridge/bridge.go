// Package bridge exposes the laser simulation to the external
// command-script compiler. A pulse command selects physical parameters
// through coarse tokens and receives back a short sampled evolution.
package bridge

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"qlaser"
)

// PulseSamples is the reduced sample count used for pulse commands, kept
// small for command-loop responsiveness.
const PulseSamples = 10

// pulseSpan is the simulated evolution window of one pulse, in cavity
// time units.
const pulseSpan = 2.0

// Pulse is one emit command from a compiled script.
type Pulse struct {
	// Wavelength is a free-form token such as "1550nm"; known bands
	// override the atomic transition frequency.
	Wavelength string
	// Duration is carried for logging only; the evolution window is fixed.
	Duration string
	// Polarization is a single-letter token such as 'H' or 'V'.
	Polarization byte
}

// atomFrequency maps wavelength bands to atomic transition frequencies.
// Unknown bands keep the default.
func atomFrequency(wavelength string, fallback float64) float64 {
	switch {
	case strings.Contains(wavelength, "1550"):
		return 0.8
	case strings.Contains(wavelength, "405"):
		return 2.5
	default:
		return fallback
	}
}

// Emit simulates one pulse with the default laser configuration, the
// wavelength-derived frequency override, and the reduced sample count.
func Emit(ctx context.Context, logger zerolog.Logger, pulse Pulse) ([]qlaser.Sample, error) {
	p := qlaser.DefaultParams()
	p.OmegaAtom = atomFrequency(pulse.Wavelength, p.OmegaAtom)
	p.TEnd = p.TStart + pulseSpan
	return EmitWith(ctx, logger, pulse, p, PulseSamples)
}

// EmitWith simulates one pulse with caller-supplied parameters and
// sample count, returning that many observable samples.
func EmitWith(ctx context.Context, logger zerolog.Logger, pulse Pulse, p qlaser.Params, numSamples int) ([]qlaser.Sample, error) {
	logger.Info().
		Str("wavelength", pulse.Wavelength).
		Str("duration", pulse.Duration).
		Str("polarization", string(pulse.Polarization)).
		Float64("omega_atom", p.OmegaAtom).
		Msg("emitting pulse")

	sys, rho, err := qlaser.BuildSystem(p)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	samples, err := qlaser.EvolveSampled(ctx, p, sys, rho, numSamples)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	last := samples[len(samples)-1]
	logger.Info().
		Float64("t", last.Time).
		Float64("photons", last.Photons).
		Float64("g2", last.G2).
		Msg("pulse evolution stabilized")
	return samples, nil
}
