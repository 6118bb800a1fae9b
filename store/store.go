// Package store persists sampled laser runs in sqlite, so that a run can
// be inspected after the driver exits.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"qlaser"
)

const (
	tableSamples = "samples"
)

// Store is a sqlite-backed collection of runs, each an ordered series of
// observable samples.
type Store struct {
	Path string

	db *sql.DB
}

// Open opens or creates the store at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	return &Store{Path: dbPath, db: db}, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (run TEXT, idx INTEGER, t REAL, photons REAL, inversion REAL, g2 REAL, PRIMARY KEY (run, idx)) STRICT`, tableSamples)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append adds samples to run, preserving order after any samples already
// stored for that run.
func (s *Store) Append(ctx context.Context, run string, samples []qlaser.Sample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer tx.Rollback()

	sqlStr := fmt.Sprintf(`SELECT COALESCE(MAX(idx)+1, 0) FROM %s WHERE run=?`, tableSamples)
	var next int
	if err := tx.QueryRowContext(ctx, sqlStr, run).Scan(&next); err != nil {
		return errors.Wrap(err, "")
	}

	sqlStr = fmt.Sprintf(`INSERT INTO %s (run, idx, t, photons, inversion, g2) VALUES (?, ?, ?, ?, ?, ?)`, tableSamples)
	for i, smpl := range samples {
		if _, err := tx.ExecContext(ctx, sqlStr, run, next+i, smpl.Time, smpl.Photons, smpl.Inversion, smpl.G2); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%s %d", run, next+i))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// List returns the samples of run in stored order.
func (s *Store) List(ctx context.Context, run string) ([]qlaser.Sample, error) {
	sqlStr := fmt.Sprintf(`SELECT t, photons, inversion, g2 FROM %s WHERE run=? ORDER BY idx`, tableSamples)
	rows, err := s.db.QueryContext(ctx, sqlStr, run)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	samples := make([]qlaser.Sample, 0)
	for rows.Next() {
		var smpl qlaser.Sample
		if err := rows.Scan(&smpl.Time, &smpl.Photons, &smpl.Inversion, &smpl.G2); err != nil {
			return nil, errors.Wrap(err, "")
		}
		samples = append(samples, smpl)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return samples, nil
}

// Runs returns the distinct run names in the store.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	sqlStr := fmt.Sprintf(`SELECT DISTINCT run FROM %s ORDER BY run`, tableSamples)
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	runs := make([]string, 0)
	for rows.Next() {
		var run string
		if err := rows.Scan(&run); err != nil {
			return nil, errors.Wrap(err, "")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return runs, nil
}
