// Command run simulates a four-level laser, writing sampled observables
// to a CSV file and a sqlite store under the run directory.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"qlaser"
	"qlaser/spectral"
	"qlaser/store"
)

const (
	fnameSamples = "samples.csv"
	fnameDB      = "runs.db"
)

var (
	runDir     = flag.String("d", filepath.Join("runs", "qlaser"), "run directory")
	numSamples = flag.Int("samples", 100, "number of observable samples")
	tEnd       = flag.Float64("tend", 0, "end time override, 0 keeps the default")
	coupling   = flag.Float64("g", 0, "coupling strength override, 0 keeps the default")
	pumpRate   = flag.Float64("pump", 0, "pump rate override, 0 keeps the default")
)

func writeSamples(dir string, samples []qlaser.Sample) error {
	f, err := os.Create(filepath.Join(dir, fnameSamples))
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	if err1 := w.Write([]string{"t", "photons", "inversion", "g2"}); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	for _, s := range samples {
		row := []string{
			strconv.FormatFloat(s.Time, 'g', -1, 64),
			strconv.FormatFloat(s.Photons, 'g', -1, 64),
			strconv.FormatFloat(s.Inversion, 'g', -1, 64),
			strconv.FormatFloat(s.G2, 'g', -1, 64),
		}
		if err1 := w.Write(row); err1 != nil && err == nil {
			err = errors.Wrap(err1, "")
			break
		}
	}

	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

func main() {
	flag.Parse()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := mainWithErr(log); err != nil {
		log.Fatal().Msgf("%+v", err)
	}
}

func mainWithErr(log zerolog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := os.MkdirAll(*runDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	p := qlaser.DefaultParams()
	if *tEnd > 0 {
		p.TEnd = *tEnd
	}
	if *coupling > 0 {
		p.G = *coupling
	}
	if *pumpRate > 0 {
		p.PumpRate = *pumpRate
	}
	if err := p.Validate(); err != nil {
		return errors.Wrap(err, "")
	}

	threshold := qlaser.Threshold(p)
	log.Info().
		Float64("g", p.G).Float64("kappa", p.Kappa).Float64("pump", p.PumpRate).
		Float64("threshold", threshold).Float64("t_end", p.TEnd).
		Msg("building laser system")

	sys, rho, err := qlaser.BuildSystem(p)
	if err != nil {
		return errors.Wrap(err, "")
	}

	start := time.Now()
	samples, err := qlaser.EvolveSampled(ctx, p, sys, rho, *numSamples)
	if err != nil {
		return errors.Wrap(err, "")
	}
	log.Info().Int("samples", len(samples)).Dur("elapsed", time.Since(start)).Msg("evolution finished")

	if err := writeSamples(*runDir, samples); err != nil {
		return errors.Wrap(err, "")
	}
	st, err := store.Open(filepath.Join(*runDir, fnameDB))
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer st.Close()
	run := start.UTC().Format(time.RFC3339)
	if err := st.Append(ctx, run, samples); err != nil {
		return errors.Wrap(err, "")
	}

	state, err := qlaser.Observables(p, rho)
	if err != nil {
		return errors.Wrap(err, "")
	}
	entropy, err := spectral.VonNeumannEntropy(rho)
	if err != nil {
		return errors.Wrap(err, "")
	}
	minEig, err := spectral.MinEigenvalue(rho)
	if err != nil {
		return errors.Wrap(err, "")
	}

	log.Info().
		Str("run", run).
		Float64("photons", state.Photons).
		Float64("inversion", state.Inversion).
		Float64("coherence", state.Coherence).
		Float64("purity", state.Purity).
		Float64("entropy", entropy).
		Float64("min_eigenvalue", minEig).
		Float64("trace", real(rho.Trace())).
		Float64("threshold_ratio", state.ThresholdRatio).
		Msg("final state")
	fmt.Printf("p0,p1,p2,p3\n%f,%f,%f,%f\n", state.Population[0], state.Population[1], state.Population[2], state.Population[3])
	return nil
}
