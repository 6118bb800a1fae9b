package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qlaser"
)

func TestAppendList(t *testing.T) {
	t.Parallel()
	dir, err := os.MkdirTemp("", "")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	s, err := Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	first := []qlaser.Sample{
		{Time: 0, Photons: 0, Inversion: 0, G2: 1},
		{Time: 0.5, Photons: 0.02, Inversion: 0.1, G2: 1.3},
	}
	second := []qlaser.Sample{
		{Time: 1.0, Photons: 0.05, Inversion: 0.12, G2: 1.4},
	}
	require.NoError(t, s.Append(ctx, "run-a", first))
	require.NoError(t, s.Append(ctx, "run-a", second))
	require.NoError(t, s.Append(ctx, "run-b", first[:1]))

	got, err := s.List(ctx, "run-a")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, append(first, second...), got)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-a", "run-b"}, runs)
}

func TestListEmpty(t *testing.T) {
	t.Parallel()
	dir, err := os.MkdirTemp("", "")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	s, err := Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer s.Close()

	got, err := s.List(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenExisting(t *testing.T) {
	t.Parallel()
	dir, err := os.MkdirTemp("", "")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	dbPath := filepath.Join(dir, "runs.db")

	ctx := context.Background()
	s, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, "run-a", []qlaser.Sample{{Time: 0, G2: 1}}))
	require.NoError(t, s.Close())

	// Reopening must not drop stored runs.
	s, err = Open(dbPath)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.List(ctx, "run-a")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
