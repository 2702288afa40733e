package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGraphNeighborOrder(t *testing.T) {
	g, err := NewGraph([][]bool{
		{false, false, false},
		{false, false, false},
		{false, false, false},
	})
	require.NoError(t, err)

	// Center cell 4: up 1, left 3, down 7, right 5
	want := []VertexID{1, 3, 7, 5}
	if diff := cmp.Diff(want, g.Neighbors(4)); diff != "" {
		t.Errorf("Neighbors(4) mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 9, g.Len())
	assert.True(t, g.HasEdge(0, 1))
	assert.False(t, g.HasEdge(0, 4))
}

func TestNewGraphObstacles(t *testing.T) {
	g, err := NewGraph([][]bool{
		{false, true},
		{false, false},
	})
	require.NoError(t, err)

	assert.False(t, g.Contains(1))
	assert.Equal(t, []VertexID{0, 2, 3}, g.Vertices())
	assert.Equal(t, []VertexID{2}, g.Neighbors(0))

	_, ok := g.Vertex(Coord{Row: 0, Col: 1})
	assert.False(t, ok, "blocked cell must not map to a vertex")
	_, ok = g.Vertex(Coord{Row: 5, Col: 0})
	assert.False(t, ok, "out of range cell must not map to a vertex")

	v, ok := g.Vertex(Coord{Row: 1, Col: 1})
	require.True(t, ok)
	assert.Equal(t, VertexID(3), v)
	assert.Equal(t, Coord{Row: 1, Col: 1}, g.Coord(v))
}

func TestNewGraphMalformed(t *testing.T) {
	tests := []struct {
		name string
		grid [][]bool
	}{
		{"empty", nil},
		{"empty row", [][]bool{{}}},
		{"ragged", [][]bool{{false, false}, {false}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(tt.grid)
			if !errors.Is(err, ErrMalformedGrid) {
				t.Errorf("NewGraph() error = %v, want ErrMalformedGrid", err)
			}
		})
	}
}

func TestInstanceValidate(t *testing.T) {
	inst := NewInstance(3, 3)
	inst.Block(1, 1)
	inst.AddAgent(0, 0, 0)
	inst.AddGoal(2, 2, 0)
	_, err := inst.Validate()
	require.NoError(t, err)

	blocked := NewInstance(3, 3)
	blocked.Block(1, 1)
	blocked.AddAgent(1, 1, 0)
	_, err = blocked.Validate()
	assert.ErrorIs(t, err, ErrInvalidInstance)

	stacked := NewInstance(3, 3)
	stacked.AddAgent(0, 0, 0)
	stacked.AddAgent(0, 0, 1)
	_, err = stacked.Validate()
	assert.ErrorIs(t, err, ErrInvalidInstance)

	empty := NewInstance(2, 2)
	_, err = empty.Validate()
	assert.ErrorIs(t, err, ErrInvalidInstance)
}

func TestBuildTeams(t *testing.T) {
	inst := NewInstance(4, 4)
	inst.AddAgent(0, 0, 1)
	inst.AddAgent(0, 1, 0)
	inst.AddAgent(0, 2, 1)
	inst.AddGoal(3, 0, 1)
	inst.AddGoal(3, 1, 0)
	inst.AddGoal(3, 2, 1)
	g, err := inst.Validate()
	require.NoError(t, err)

	teams, agents := BuildTeams(g, inst)
	require.Len(t, teams, 2)
	require.Len(t, agents, 3)

	assert.Equal(t, Color(0), teams[0].Color)
	assert.Equal(t, []AgentID{1}, teams[0].Agents)
	assert.Equal(t, Color(1), teams[1].Color)
	assert.Equal(t, []AgentID{0, 2}, teams[1].Agents)
	assert.Equal(t, []VertexID{12, 14}, teams[1].Goals)

	for _, a := range agents {
		assert.False(t, a.HasGoal(), "%v should not have a committed goal", a)
	}
}

func TestPathCost(t *testing.T) {
	tests := []struct {
		path Path
		want int
	}{
		{Path{}, 0},
		{Path{3}, 0},
		{Path{3, 3, 3}, 0},
		{Path{0, 1, 2, 2}, 2},
		{Path{0, 1, 1, 2}, 3},
		{Path{0, 0, 1}, 2},
	}
	for _, tt := range tests {
		if got := tt.path.Cost(); got != tt.want {
			t.Errorf("Path%v.Cost() = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestSolutionMetrics(t *testing.T) {
	sol := NewSolution(2)
	sol.Paths[0] = Path{0, 4, 8, 12}
	sol.Paths[1] = Path{1, 5, 5, 5}
	assert.Equal(t, 4, sol.SumOfCosts())
	assert.Equal(t, 3, sol.Makespan())

	g, err := NewGraph([][]bool{
		{false, false, false, false},
		{false, false, false, false},
		{false, false, false, false},
		{false, false, false, false},
	})
	require.NoError(t, err)
	coords := sol.CoordPaths(g)
	assert.Equal(t, Coord{Row: 3, Col: 0}, coords[0][3])
	assert.Equal(t, Coord{Row: 1, Col: 1}, coords[1][1])
}

func TestParseMatchMode(t *testing.T) {
	m, err := ParseMatchMode("pre-match")
	require.NoError(t, err)
	assert.Equal(t, PreMatch, m)
	assert.Equal(t, "prematch", m.String())

	m, err = ParseMatchMode("")
	require.NoError(t, err)
	assert.Equal(t, InMatch, m)

	_, err = ParseMatchMode("greedy")
	assert.Error(t, err)
}
