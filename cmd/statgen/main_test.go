package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statforge/internal/catalog"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\nseed: 7\nworkers: 2\n"), 0o644))
	t.Setenv("STATFORGE_CONFIG", path)

	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestRun_Stats(t *testing.T) {
	out, err := runCLI(t, "stats", "-n", "3", "-surplus", "50", "-json")
	require.NoError(t, err)

	var report statsReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Arrays, 3)
	for i, a := range report.Arrays {
		assert.Equal(t, int64(7+i), a.Seed)
		assert.NotEmpty(t, a.ID)
		assert.Len(t, a.Sorted, 6)
	}
	require.NotNil(t, report.MeanSurplus)
}

func TestRun_Variant(t *testing.T) {
	out, err := runCLI(t, "variant", "-n", "2", "-json", "Goblin")
	require.NoError(t, err)

	var results []variantResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "Goblin", r.Monster)
		assert.Equal(t, r.Target, r.Rating)
		assert.NotEqual(t, results[0].ID, results[1].ID)
	}
}

func TestRun_Rating(t *testing.T) {
	out, err := runCLI(t, "rating", "Goblin", "Orc")
	require.NoError(t, err)
	assert.Contains(t, out, "Goblin")
	assert.Contains(t, out, "CR 1/4")
	assert.Contains(t, out, "Orc")
}

func TestRun_Catalog(t *testing.T) {
	out, err := runCLI(t, "catalog", "monsters")
	require.NoError(t, err)
	assert.Contains(t, out, "Brown Bear (CR 1)")
	assert.NotContains(t, out, "weapons:")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		is   error
	}{
		{name: "no command", is: errUsage},
		{name: "unknown command", args: []string{"dance"}, is: errUsage},
		{name: "variant without name", args: []string{"variant"}, is: errUsage},
		{name: "unknown monster", args: []string{"rating", "Goblinn"}, is: catalog.ErrUnknownEntry},
		{name: "negative stats count", args: []string{"stats", "-n", "-1"}, is: errUsage},
		{name: "zero variant count", args: []string{"variant", "-n", "0", "Goblin"}, is: errUsage},
		{name: "unknown section", args: []string{"catalog", "spells"}, is: errUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			assert.ErrorIs(t, err, tt.is)
		})
	}
}
