package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

const crossing = `name: crossing
grid:
  - "..."
  - "..."
  - "..."
agents:
  - {row: 0, col: 0, color: 0}
  - {row: 2, col: 2, color: 1}
goals:
  - {row: 0, col: 2, color: 0}
  - {row: 2, col: 0, color: 1}
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSolveCommand(t *testing.T) {
	path := writeScenario(t, crossing)
	dump := filepath.Join(t.TempDir(), "last.opb")

	out, err := execute(t, "solve", path, "--mode", "prematch", "--dump-opb", dump)
	require.NoError(t, err)
	assert.Contains(t, out, "Instance: crossing, 3x3 grid, 2 agents, 2 goals")
	assert.Contains(t, out, "SAT-MAPFM-Prematch: cost=4 makespan=2 horizon=2 delta=0")
	assert.Contains(t, out, "agent 0")

	data, err := os.ReadFile(dump)
	require.NoError(t, err)
	assert.Contains(t, string(data), ">=")
}

func TestValidateCommand(t *testing.T) {
	good := writeScenario(t, crossing)
	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "lower bound 4, horizon 2")

	bad := writeScenario(t, "grid: [\".@.\"]\nagents: [{row: 0, col: 0, color: 0}]\ngoals: [{row: 0, col: 2, color: 0}]\n")
	out, err = execute(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, out, "FAIL "+bad)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 3, exitCode(fmt.Errorf("run x: %w", core.ErrTimedOut)))
	assert.Equal(t, 2, exitCode(core.ErrInfeasibleTeam))
	assert.Equal(t, 2, exitCode(fmt.Errorf("wrapped: %w", core.ErrUnreachableGoal)))
	assert.Equal(t, 1, exitCode(core.ErrInvalidInstance))
}
