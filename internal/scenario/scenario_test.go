package scenario

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapfm-sat/internal/algo"
	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

const crossing = `
name: crossing
grid:
  - "...."
  - "...."
  - ".@@."
  - "...."
agents:
  - {row: 0, col: 0, color: 0}
  - {row: 0, col: 1, color: 1}
goals:
  - {row: 3, col: 1, color: 0}
  - {row: 3, col: 0, color: 1}
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(crossing))
	require.NoError(t, err)
	assert.Equal(t, "crossing", f.Name)
	assert.Len(t, f.Grid, 4)

	inst, err := f.ToInstance()
	require.NoError(t, err)
	assert.True(t, inst.Grid[2][1])
	assert.False(t, inst.Grid[2][0])
	assert.Equal(t, core.Marker{Coord: core.Coord{Row: 0, Col: 1}, Color: 1}, inst.Starts[1])
	assert.Len(t, inst.Goals, 2)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"no agents", "grid: [\"..\"]\ngoals: [{row: 0, col: 0}]", core.ErrInvalidInstance},
		{"bad cell", "grid: [\".x\"]\nagents: [{row: 0, col: 0}]\ngoals: [{row: 0, col: 0}]", core.ErrMalformedGrid},
		{"negative row", "grid: [\"..\"]\nagents: [{row: -1, col: 0}]\ngoals: [{row: 0, col: 0}]", core.ErrInvalidInstance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestToInstance_Rejects(t *testing.T) {
	ragged := &File{
		Grid:   []string{"...", ".."},
		Agents: []Point{{Row: 0, Col: 0}},
		Goals:  []Point{{Row: 0, Col: 1}},
	}
	_, err := ragged.ToInstance()
	assert.ErrorIs(t, err, core.ErrMalformedGrid)

	onWall := &File{
		Grid:   []string{".@"},
		Agents: []Point{{Row: 0, Col: 1}},
		Goals:  []Point{{Row: 0, Col: 0}},
	}
	_, err = onWall.ToInstance()
	assert.ErrorIs(t, err, core.ErrInvalidInstance)
}

func TestSaveLoad(t *testing.T) {
	f, err := Parse([]byte(crossing))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "crossing.yaml")
	require.NoError(t, Save(path, f))
	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(f, got); diff != "" {
		t.Errorf("Load(Save(f)) mismatch (-want +got):\n%s", diff)
	}
}

func TestFromInstance(t *testing.T) {
	f, err := Parse([]byte(crossing))
	require.NoError(t, err)
	inst, err := f.ToInstance()
	require.NoError(t, err)
	if diff := cmp.Diff(f, FromInstance(inst)); diff != "" {
		t.Errorf("FromInstance mismatch (-want +got):\n%s", diff)
	}
}

func TestRandom_Deterministic(t *testing.T) {
	p := RandomParams{Seed: 7, Rows: 8, Cols: 8, Density: 0.2, Teams: 2, AgentsPerTeam: 3}
	a, err := Random(p)
	require.NoError(t, err)
	b, err := Random(p)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed differs (-a +b):\n%s", diff)
	}
	assert.Len(t, a.Agents, 6)
	assert.Len(t, a.Goals, 6)
	assert.Equal(t, int64(7), a.Seed)

	_, err = a.ToInstance()
	require.NoError(t, err)
}

func TestRandom_TooDense(t *testing.T) {
	_, err := Random(RandomParams{Seed: 1, Rows: 2, Cols: 2, Density: 0.9, Teams: 2, AgentsPerTeam: 2})
	assert.Error(t, err)
}

func TestRandom_Solvable(t *testing.T) {
	for seed := int64(1); seed <= 3; seed++ {
		f, err := Random(RandomParams{Seed: seed, Rows: 6, Cols: 6, Density: 0.15, Teams: 2, AgentsPerTeam: 2})
		require.NoError(t, err)
		inst, err := f.ToInstance()
		require.NoError(t, err)

		// Every agent reaches every goal of its team
		g, err := inst.Validate()
		require.NoError(t, err)
		teams, _ := core.BuildTeams(g, inst)
		_, err = algo.BuildHeuristic(teams, algo.NewDistanceTable(g), algo.DefaultMaxCutoff)
		require.NoError(t, err, "seed %d", seed)

		sol, err := algo.NewSATSolver(algo.DefaultSATOptions()).Solve(context.Background(), inst)
		if err != nil {
			t.Logf("seed %d: %v", seed, err)
			continue
		}
		assert.True(t, sol.Feasible)
	}
}
