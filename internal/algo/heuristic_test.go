package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

func teamsOf(t *testing.T, inst *core.Instance) (*core.Graph, []*core.Team, []core.Agent) {
	t.Helper()
	g, err := inst.Validate()
	require.NoError(t, err)
	teams, agents := core.BuildTeams(g, inst)
	return g, teams, agents
}

func TestMinimalHorizon_OpenGrid(t *testing.T) {
	inst := &core.Instance{Grid: createGrid(4)}
	inst.AddAgent(0, 0, 0)
	inst.AddAgent(0, 1, 0)
	inst.AddGoal(3, 0, 0)
	inst.AddGoal(3, 1, 0)
	g, teams, _ := teamsOf(t, inst)

	th, err := MinimalHorizon(teams[0], NewDistanceTable(g), DefaultMaxCutoff)
	require.NoError(t, err)
	assert.Equal(t, 6, th.Cost)
	assert.Equal(t, 3, th.Horizon)
	assert.Equal(t, []core.VertexID{12, 13}, th.Assignment)
	assert.Equal(t, []int{3, 3}, th.AgentDist)
}

func TestMinimalHorizon_PrefersBalancedOptimum(t *testing.T) {
	// Both matchings cost 4; only one keeps every distance at 2
	inst := &core.Instance{Grid: parseGrid(".....")}
	inst.AddAgent(0, 0, 0)
	inst.AddAgent(0, 1, 0)
	inst.AddGoal(0, 2, 0)
	inst.AddGoal(0, 3, 0)
	g, teams, _ := teamsOf(t, inst)

	th, err := MinimalHorizon(teams[0], NewDistanceTable(g), DefaultMaxCutoff)
	require.NoError(t, err)
	assert.Equal(t, 4, th.Cost)
	assert.Equal(t, 2, th.Horizon)
	assert.Equal(t, []core.VertexID{2, 3}, th.Assignment)
}

func TestMinimalHorizon_MoreAgentsThanGoals(t *testing.T) {
	inst := &core.Instance{Grid: createGrid(4)}
	inst.AddAgent(0, 0, 0)
	inst.AddAgent(0, 1, 0)
	inst.AddAgent(0, 2, 0)
	inst.AddGoal(3, 0, 0)
	inst.AddGoal(3, 1, 0)
	g, teams, _ := teamsOf(t, inst)

	_, err := MinimalHorizon(teams[0], NewDistanceTable(g), DefaultMaxCutoff)
	assert.ErrorIs(t, err, core.ErrInfeasibleTeam)
}

func TestMinimalHorizon_UnmatchableGoals(t *testing.T) {
	// Both agents can only reach the left goal
	inst := &core.Instance{Grid: parseGrid(
		"..@.",
		"..@.",
	)}
	inst.AddAgent(0, 0, 0)
	inst.AddAgent(1, 0, 0)
	inst.AddGoal(0, 1, 0)
	inst.AddGoal(0, 3, 0)
	g, teams, _ := teamsOf(t, inst)

	_, err := MinimalHorizon(teams[0], NewDistanceTable(g), DefaultMaxCutoff)
	assert.ErrorIs(t, err, core.ErrInfeasibleTeam)
}

func TestMinimalHorizon_NoReachableGoal(t *testing.T) {
	inst := &core.Instance{Grid: parseGrid(
		".@.",
		".@.",
	)}
	inst.AddAgent(0, 0, 0)
	inst.AddGoal(1, 2, 0)
	g, teams, _ := teamsOf(t, inst)

	_, err := MinimalHorizon(teams[0], NewDistanceTable(g), DefaultMaxCutoff)
	assert.ErrorIs(t, err, core.ErrUnreachableGoal)
}

func TestMinimalHorizon_CutoffCeiling(t *testing.T) {
	inst := &core.Instance{Grid: createGrid(4)}
	inst.AddAgent(0, 0, 0)
	inst.AddGoal(3, 3, 0)
	g, teams, _ := teamsOf(t, inst)

	_, err := MinimalHorizon(teams[0], NewDistanceTable(g), 3)
	assert.ErrorIs(t, err, core.ErrUnreachableGoal)

	th, err := MinimalHorizon(teams[0], NewDistanceTable(g), 7)
	require.NoError(t, err)
	assert.Equal(t, 6, th.Horizon)
}

func TestMinimalHorizon_MonotoneInObstacles(t *testing.T) {
	grids := [][]string{
		{".....", ".....", ".....", ".....", "....."},
		{".....", ".....", "@....", ".....", "....."},
		{".....", ".....", "@@...", ".....", "....."},
		{".....", ".....", "@@@@.", ".....", "....."},
	}
	prev := -1
	for i, rows := range grids {
		inst := &core.Instance{Grid: parseGrid(rows...)}
		inst.AddAgent(0, 0, 0)
		inst.AddAgent(0, 1, 0)
		inst.AddGoal(4, 0, 0)
		inst.AddGoal(4, 1, 0)
		g, teams, _ := teamsOf(t, inst)

		th, err := MinimalHorizon(teams[0], NewDistanceTable(g), DefaultMaxCutoff)
		require.NoError(t, err)
		if th.Horizon < prev {
			t.Errorf("grid %d: horizon %d decreased from %d", i, th.Horizon, prev)
		}
		prev = th.Horizon
	}
	assert.Equal(t, 11, prev)
}

func TestBuildHeuristic(t *testing.T) {
	inst := &core.Instance{Grid: createGrid(4)}
	inst.AddAgent(0, 0, 0)
	inst.AddAgent(0, 1, 1)
	inst.AddGoal(3, 1, 0)
	inst.AddGoal(3, 0, 1)
	g, teams, _ := teamsOf(t, inst)

	h, err := BuildHeuristic(teams, NewDistanceTable(g), DefaultMaxCutoff)
	require.NoError(t, err)
	assert.Equal(t, 8, h.Sum)
	assert.Equal(t, 4, h.Horizon)
	assert.Len(t, h.Teams, 2)
	assert.Equal(t, core.VertexID(13), h.Goal(0))
	assert.Equal(t, core.VertexID(12), h.Goal(1))
	assert.Equal(t, []int{4, 4}, h.AgentDists())
}
