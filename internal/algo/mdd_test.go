package algo

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

func layers(m *MDD) [][]core.VertexID {
	out := make([][]core.VertexID, m.Horizon()+1)
	for t := range out {
		out[t] = m.Layer(t)
	}
	return out
}

func TestBuildMDD_ShortestHorizon(t *testing.T) {
	g := mustGraph(t, createGrid(4))
	m := BuildMDD(g, 0, 0, []core.VertexID{12, 13}, 3, nil)

	require.True(t, m.Feasible())
	want := [][]core.VertexID{{0}, {4}, {8}, {12}}
	if diff := cmp.Diff(want, layers(m)); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, m.Size())
	assert.Equal(t, []core.VertexID{4}, m.Next(0, 0))
	assert.Nil(t, m.Next(12, 3), "final layer has no successors")
}

func TestBuildMDD_TooShort(t *testing.T) {
	g := mustGraph(t, createGrid(4))
	m := BuildMDD(g, 0, 0, []core.VertexID{15}, 5, nil)
	assert.False(t, m.Feasible(), "goal at distance 6 cannot be reached in 5 steps")
	assert.Empty(t, m.Layer(5))
}

func TestBuildMDD_WaitingAllowed(t *testing.T) {
	g := mustGraph(t, createGrid(4))
	m := BuildMDD(g, 0, 0, []core.VertexID{12}, 5, nil)
	require.True(t, m.Feasible())

	assert.True(t, m.Contains(0, 1), "agent may wait at its start")
	assert.True(t, m.Contains(12, 4), "agent may arrive early and wait at its goal")
	assert.Contains(t, m.Next(12, 4), core.VertexID(12))
	assert.False(t, m.Contains(3, 2), "vertex 3 is 3 steps away at t=2")
}

func TestBuildMDD_Pruned(t *testing.T) {
	g := mustGraph(t, createGrid(5))
	m := BuildMDD(g, 0, 0, []core.VertexID{24, 20}, 9, nil)
	require.True(t, m.Feasible())

	h := m.Horizon()
	for t2 := 0; t2 < h; t2++ {
		for _, v := range m.Layer(t2) {
			succ := m.Next(v, t2)
			if len(succ) == 0 {
				t.Errorf("(%d,%d) is a dead end", v, t2)
			}
			for _, w := range succ {
				if !m.Contains(w, t2+1) {
					t.Errorf("(%d,%d) -> %d leaves the diagram", v, t2, w)
				}
				if w != v && !g.HasEdge(v, w) {
					t.Errorf("(%d,%d) -> %d is not a move", v, t2, w)
				}
			}
		}
	}
	for t2 := 1; t2 <= h; t2++ {
		for _, w := range m.Layer(t2) {
			reached := false
			for _, v := range m.Layer(t2 - 1) {
				for _, x := range m.Next(v, t2-1) {
					if x == w {
						reached = true
					}
				}
			}
			if !reached {
				t.Errorf("(%d,%d) has no predecessor", w, t2)
			}
		}
	}
	for _, v := range m.Layer(h) {
		assert.True(t, m.IsGoal(v))
	}
}

func TestBuildMDD_SeededEqualsFresh(t *testing.T) {
	g := mustGraph(t, parseGrid(
		".....",
		".@@@.",
		".....",
	))
	goals := []core.VertexID{14, 10}
	small := BuildMDD(g, 0, 0, goals, 6, nil)
	require.True(t, small.Feasible())

	seeded := BuildMDD(g, 0, 0, goals, 9, small)
	fresh := BuildMDD(g, 0, 0, goals, 9, nil)
	if diff := cmp.Diff(layers(fresh), layers(seeded)); diff != "" {
		t.Errorf("seeded diagram differs (-fresh +seeded):\n%s", diff)
	}
	assert.Equal(t, fresh.Size(), seeded.Size())

	// The seed is left untouched
	assert.Equal(t, 6, small.Horizon())
	assert.Equal(t, []core.VertexID{10, 14}, small.Layer(6))
}

func TestBuildMDDs(t *testing.T) {
	g := mustGraph(t, createGrid(4))
	reqs := []MDDRequest{
		{Agent: 0, Start: 0, Goals: []core.VertexID{12, 13}},
		{Agent: 1, Start: 1, Goals: []core.VertexID{12, 13}},
		{Agent: 2, Start: 3, Goals: []core.VertexID{15}},
	}
	mdds, err := BuildMDDs(context.Background(), g, reqs, 3, nil, 2)
	require.NoError(t, err)
	require.Len(t, mdds, 3)
	assert.True(t, AllFeasible(mdds))
	for i, m := range mdds {
		assert.Equal(t, reqs[i].Agent, m.Agent())
		assert.Equal(t, reqs[i].Start, m.Start())
		assert.Equal(t, reqs[i].Goals, m.Goals())
		want := BuildMDD(g, reqs[i].Agent, reqs[i].Start, reqs[i].Goals, 3, nil)
		if diff := cmp.Diff(layers(want), layers(m)); diff != "" {
			t.Errorf("agent %d mismatch (-want +got):\n%s", i, diff)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = BuildMDDs(ctx, g, reqs, 3, nil, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
