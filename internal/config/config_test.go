package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, core.InMatch, cfg.MatchMode())
	assert.Positive(t, cfg.MaxDelta)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
mode: prematch
max_delta: 12
timeout: 30s
iteration_timeout: 1500ms
parallelism: 4
`))
	require.NoError(t, err)
	assert.Equal(t, core.PreMatch, cfg.MatchMode())
	assert.Equal(t, 12, cfg.MaxDelta)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.IterationTimeout)
	assert.Equal(t, Default().MaxCutoff, cfg.MaxCutoff, "unset fields keep defaults")

	opts := cfg.SolverOptions()
	assert.Equal(t, core.PreMatch, opts.Mode)
	assert.Equal(t, 4, opts.Parallelism)
	assert.Equal(t, cfg.MaxVariables, opts.Limits.MaxVariables)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown mode", "mode: greedy"},
		{"negative delta", "max_delta: -1"},
		{"negative timeout", "timeout: -5s"},
		{"not yaml", "mode: [inmatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: in-match\nmax_cutoff: 64\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, core.InMatch, cfg.MatchMode())
	assert.Equal(t, 64, cfg.MaxCutoff)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
