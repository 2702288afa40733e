package algo

import (
	"strings"
	"testing"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// createGrid creates an open n x n grid.
func createGrid(n int) [][]bool {
	grid := make([][]bool, n)
	for i := range grid {
		grid[i] = make([]bool, n)
	}
	return grid
}

// parseGrid reads rows of '.' (free) and '@' (blocked).
func parseGrid(rows ...string) [][]bool {
	grid := make([][]bool, len(rows))
	for i, row := range rows {
		grid[i] = make([]bool, len(row))
		for j, c := range row {
			grid[i][j] = c == '@'
		}
	}
	return grid
}

func mustGraph(t *testing.T, grid [][]bool) *core.Graph {
	t.Helper()
	g, err := core.NewGraph(grid)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g
}

func TestFindFirstConflict_NoConflict(t *testing.T) {
	paths := []core.Path{
		{0, 1, 2},
		{10, 11, 12},
	}
	if c := FindFirstConflict(paths); c != nil {
		t.Errorf("Expected no conflict, got: %v", c)
	}
}

func TestFindFirstConflict_VertexConflict(t *testing.T) {
	paths := []core.Path{
		{0, 1, 2},
		{3, 2, 2},
	}
	c := FindFirstConflict(paths)
	if c == nil {
		t.Fatal("Expected vertex conflict")
	}
	if c.IsEdge || c.Vertex != 2 || c.Time != 2 {
		t.Errorf("Expected vertex conflict at V=2 T=2, got %v", c)
	}
}

func TestFindFirstConflict_SwapConflict(t *testing.T) {
	paths := []core.Path{
		{0, 1, 2},
		{2, 2, 1},
	}
	c := FindFirstConflict(paths)
	if c == nil {
		t.Fatal("Expected swap conflict")
	}
	if !c.IsEdge || c.Time != 1 || c.EdgeFrom != 1 || c.EdgeTo != 2 {
		t.Errorf("Expected swap on 1-2 at T=1, got %v", c)
	}
}

func TestFindFirstConflict_StaysAtGoal(t *testing.T) {
	// Agent 0 ends at 2 early; agent 1 arrives there later
	paths := []core.Path{
		{1, 2},
		{5, 4, 3, 2},
	}
	c := FindFirstConflict(paths)
	if c == nil || c.Time != 3 {
		t.Errorf("Expected conflict at T=3 after agent 0 finished, got %v", c)
	}
}

func TestFindFirstConflict_FollowingIsAllowed(t *testing.T) {
	paths := []core.Path{
		{1, 2, 3},
		{0, 1, 2},
	}
	if c := FindFirstConflict(paths); c != nil {
		t.Errorf("Following another agent is not a conflict, got %v", c)
	}
}

func TestFindAllConflicts(t *testing.T) {
	paths := []core.Path{
		{0, 1, 2},
		{2, 1, 0},
		{1, 1, 1},
	}
	conflicts := FindAllConflicts(paths)
	if len(conflicts) != 3 {
		t.Fatalf("Expected 3 conflicts, got %d", len(conflicts))
	}
	for _, c := range conflicts {
		if c.IsEdge || c.Time != 1 || c.Vertex != 1 {
			t.Errorf("Expected vertex conflict at V=1 T=1, got %v", c)
		}
	}
}

func TestValidateSolution(t *testing.T) {
	inst := &core.Instance{Grid: parseGrid(
		"...",
		".@.",
		"...",
	)}
	inst.AddAgent(0, 0, 0)
	inst.AddGoal(2, 0, 0)
	g, err := inst.Validate()
	if err != nil {
		t.Fatal(err)
	}
	teams, agents := core.BuildTeams(g, inst)

	good := &core.Solution{Horizon: 2, Paths: []core.Path{{0, 3, 6}}}
	if err := ValidateSolution(g, agents, teams, good); err != nil {
		t.Errorf("ValidateSolution(good) = %v", err)
	}

	tests := []struct {
		name string
		path core.Path
	}{
		{"wrong length", core.Path{0, 3, 6, 6}},
		{"wrong start", core.Path{1, 0, 3}},
		{"jump", core.Path{0, 6, 6}},
		{"through obstacle", core.Path{0, 1, 4}},
		{"not a goal", core.Path{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol := &core.Solution{Horizon: 2, Paths: []core.Path{tt.path}}
			if err := ValidateSolution(g, agents, teams, sol); err == nil {
				t.Errorf("ValidateSolution(%v) = nil, want error", tt.path)
			}
		})
	}
}

func TestValidateSolution_SharedGoal(t *testing.T) {
	inst := &core.Instance{Grid: createGrid(3)}
	inst.AddAgent(0, 0, 0)
	inst.AddAgent(0, 2, 0)
	inst.AddGoal(2, 1, 0)
	inst.AddGoal(2, 2, 0)
	g, err := inst.Validate()
	if err != nil {
		t.Fatal(err)
	}
	teams, agents := core.BuildTeams(g, inst)

	sol := &core.Solution{Horizon: 3, Paths: []core.Path{{0, 3, 6, 7}, {2, 5, 8, 7}}}
	err = ValidateSolution(g, agents, teams, sol)
	if err == nil || !strings.Contains(err.Error(), "share goal") {
		t.Errorf("Expected shared goal error, got %v", err)
	}
}
