package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// corridor is a 1x3 grid with one agent walking from the left to the right end.
func corridor(t *testing.T) *State {
	t.Helper()
	inst := core.NewInstance(1, 3)
	inst.AddAgent(0, 0, 0)
	inst.AddGoal(0, 2, 0)
	sol := core.NewSolution(1)
	sol.Paths[0] = core.Path{0, 1, 2}
	sol.Horizon = 2
	sol.Cost = 2
	st, err := NewState(inst, sol)
	require.NoError(t, err)
	return st
}

func TestCellCenter(t *testing.T) {
	assert.Equal(t, Pos{X: 25, Y: 75}, CellCenter(core.Coord{Row: 1, Col: 0}))

	c, ok := CellAt(60, 110)
	require.True(t, ok)
	assert.Equal(t, core.Coord{Row: 2, Col: 1}, c)

	_, ok = CellAt(-1, 10)
	assert.False(t, ok)
}

func TestNewState_Errors(t *testing.T) {
	inst := &core.Instance{Grid: [][]bool{{false, false}, {false}}}
	_, err := NewState(inst, nil)
	require.ErrorIs(t, err, core.ErrMalformedGrid)

	inst = core.NewInstance(1, 3)
	inst.AddAgent(0, 0, 0)
	_, err = NewState(inst, core.NewSolution(2))
	require.Error(t, err)
}

func TestCurrentPositions(t *testing.T) {
	st := corridor(t)
	assert.Equal(t, 2.0, st.Playback.MaxTime)

	assert.Equal(t, []Pos{{X: 25, Y: 25}}, st.CurrentPositions())

	st.Playback.SetTime(0.5)
	assert.Equal(t, []Pos{{X: 50, Y: 25}}, st.CurrentPositions())

	st.Playback.SetTime(5)
	assert.Equal(t, 2.0, st.Playback.CurrentTime, "clamped to makespan")
	assert.Equal(t, []Pos{{X: 125, Y: 25}}, st.CurrentPositions())
}

func TestPathHistoryAndFuture(t *testing.T) {
	st := corridor(t)
	st.Playback.SetTime(1.5)

	assert.Equal(t, []Pos{{X: 25, Y: 25}, {X: 75, Y: 25}, {X: 100, Y: 25}}, st.PathHistory(0))
	assert.Equal(t, []Pos{{X: 100, Y: 25}, {X: 125, Y: 25}}, st.FuturePath(0))
}

func TestStaleSolutionHidesPlan(t *testing.T) {
	st := corridor(t)
	st.Playback.SetTime(1)

	st.Edit.Execute(&MoveStartAction{Agent: 0, From: core.Coord{}, To: core.Coord{Col: 1}}, st.Instance)
	require.NoError(t, st.Rebuild())

	assert.True(t, st.Stale)
	assert.Nil(t, st.PathHistory(0))
	assert.Nil(t, st.FuturePath(0))
	assert.Equal(t, []Pos{{X: 75, Y: 25}}, st.CurrentPositions(), "agents drawn at their starts")
}

func TestActiveConflicts(t *testing.T) {
	inst := core.NewInstance(1, 3)
	inst.AddAgent(0, 0, 0)
	inst.AddAgent(0, 2, 1)
	sol := core.NewSolution(2)
	sol.Paths[0] = core.Path{0, 1}
	sol.Paths[1] = core.Path{2, 1}

	st, err := NewState(inst, sol)
	require.NoError(t, err)
	require.Len(t, st.Conflicts, 1)

	assert.Empty(t, st.ActiveConflicts())
	st.Playback.SetTime(1)
	require.Len(t, st.ActiveConflicts(), 1)
	assert.Equal(t, core.VertexID(1), st.ActiveConflicts()[0].Vertex)
}

func TestPlaybackStepping(t *testing.T) {
	p := NewPlaybackState(3)
	p.SetTime(0.5)
	p.StepForward()
	assert.Equal(t, 1.0, p.CurrentTime)
	p.StepForward()
	assert.Equal(t, 2, p.Step())
	p.StepBack()
	assert.Equal(t, 1.0, p.CurrentTime)

	p.SetTime(0.5)
	p.StepBack()
	assert.Equal(t, 0.0, p.CurrentTime)
	p.StepBack()
	assert.Equal(t, 0.0, p.CurrentTime)
}

func TestPlaybackAdvance(t *testing.T) {
	p := NewPlaybackState(3)
	p.SetSpeed(2)
	p.Play()
	p.advanceBy(time.Second)
	assert.Equal(t, 2.0, p.CurrentTime)
	assert.True(t, p.Playing)

	p.advanceBy(time.Second)
	assert.Equal(t, 3.0, p.CurrentTime)
	assert.False(t, p.Playing, "stops at the end")
	assert.Equal(t, 1.0, p.Progress())

	p.TogglePlay()
	assert.True(t, p.Playing)
	assert.Equal(t, 0.0, p.CurrentTime, "restarts from the beginning")
}

func TestPlaybackSpeedClamp(t *testing.T) {
	p := NewPlaybackState(1)
	p.SetSpeed(100)
	assert.Equal(t, 20.0, p.Speed)
	p.SetSpeed(0)
	assert.Equal(t, 0.25, p.Speed)
}

func TestEditUndoRedo(t *testing.T) {
	inst := core.NewInstance(2, 2)
	inst.AddAgent(0, 0, 0)
	inst.AddGoal(1, 1, 0)
	e := NewEditState()

	assert.True(t, Occupied(inst, core.Coord{Row: 1, Col: 1}))
	assert.False(t, Occupied(inst, core.Coord{Row: 0, Col: 1}))

	e.Execute(&ToggleObstacleAction{Cell: core.Coord{Row: 0, Col: 1}}, inst)
	assert.True(t, inst.Grid[0][1])
	assert.True(t, e.CanUndo())

	action := e.Undo()
	require.NotNil(t, action)
	action.Undo(inst)
	assert.False(t, inst.Grid[0][1])
	assert.True(t, e.CanRedo())

	action = e.Redo()
	require.NotNil(t, action)
	action.Do(inst)
	assert.True(t, inst.Grid[0][1])

	e.Execute(&MoveStartAction{Agent: 0, From: core.Coord{}, To: core.Coord{Row: 1}}, inst)
	assert.False(t, e.CanRedo(), "new action clears redo")
	assert.Equal(t, core.Coord{Row: 1}, inst.Starts[0].Coord)
	e.Undo().Undo(inst)
	assert.Equal(t, core.Coord{}, inst.Starts[0].Coord)
}

func TestSelection(t *testing.T) {
	e := NewEditState()
	e.SelectAgent(1, false)
	e.SelectAgent(2, true)
	assert.Len(t, e.SelectedAgents, 2)
	e.SelectAgent(2, true)
	assert.Equal(t, map[core.AgentID]bool{1: true}, e.SelectedAgents)
	e.SelectAgent(3, false)
	assert.Equal(t, map[core.AgentID]bool{3: true}, e.SelectedAgents)
}
