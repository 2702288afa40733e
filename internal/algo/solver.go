// Package algo implements the SAT-based colored MAPF planner.
package algo

import (
	"context"
	"fmt"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// Solver is the interface for colored MAPF algorithms.
type Solver interface {
	// Solve returns an optimal solution or an error wrapping one of the
	// core sentinel errors.
	Solve(ctx context.Context, inst *core.Instance) (*core.Solution, error)

	// Name returns the algorithm name.
	Name() string
}

// Conflict represents a collision between two agents.
type Conflict struct {
	Agent1, Agent2 core.AgentID
	Vertex         core.VertexID
	Time           int  // Timestep of the conflict; for swaps, the step start
	IsEdge         bool // Swap conflict vs vertex conflict
	// For swap conflicts: the edge traversed by Agent1
	EdgeFrom, EdgeTo core.VertexID
}

func (c *Conflict) String() string {
	if c.IsEdge {
		return fmt.Sprintf("swap of agents %d and %d on %d-%d at t=%d", c.Agent1, c.Agent2, c.EdgeFrom, c.EdgeTo, c.Time)
	}
	return fmt.Sprintf("agents %d and %d at vertex %d at t=%d", c.Agent1, c.Agent2, c.Vertex, c.Time)
}

// positionAt returns the agent position at t. Agents stay at their last vertex.
func positionAt(path core.Path, t int) (core.VertexID, bool) {
	if len(path) == 0 {
		return core.NoVertex, false
	}
	if t >= len(path) {
		return path[len(path)-1], true
	}
	return path[t], true
}

func longest(paths []core.Path) int {
	n := 0
	for _, p := range paths {
		n = max(n, len(p))
	}
	return n
}

// conflictsAt appends the conflicts of timestep t (vertex) and of the step
// t -> t+1 (swap).
func conflictsAt(paths []core.Path, t int, out []*Conflict, firstOnly bool) []*Conflict {
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			pos1, ok1 := positionAt(paths[i], t)
			pos2, ok2 := positionAt(paths[j], t)
			if ok1 && ok2 && pos1 == pos2 {
				out = append(out, &Conflict{
					Agent1: core.AgentID(i),
					Agent2: core.AgentID(j),
					Vertex: pos1,
					Time:   t,
				})
				if firstOnly {
					return out
				}
			}
		}
	}

	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			from1, _ := positionAt(paths[i], t)
			to1, ok1 := positionAt(paths[i], t+1)
			from2, _ := positionAt(paths[j], t)
			to2, ok2 := positionAt(paths[j], t+1)
			if !ok1 || !ok2 || from1 == to1 {
				continue
			}
			if from1 == to2 && to1 == from2 {
				out = append(out, &Conflict{
					Agent1:   core.AgentID(i),
					Agent2:   core.AgentID(j),
					Vertex:   from1,
					Time:     t,
					IsEdge:   true,
					EdgeFrom: from1,
					EdgeTo:   to1,
				})
				if firstOnly {
					return out
				}
			}
		}
	}
	return out
}

// FindFirstConflict detects the earliest conflict in paths indexed by agent.
// At equal times vertex conflicts come before swaps.
func FindFirstConflict(paths []core.Path) *Conflict {
	for t := 0; t < longest(paths); t++ {
		if found := conflictsAt(paths, t, nil, true); len(found) > 0 {
			return found[0]
		}
	}
	return nil
}

// FindAllConflicts detects all conflicts in paths indexed by agent.
func FindAllConflicts(paths []core.Path) []*Conflict {
	var conflicts []*Conflict
	for t := 0; t < longest(paths); t++ {
		conflicts = conflictsAt(paths, t, conflicts, false)
	}
	return conflicts
}

// ValidateSolution checks that sol is a complete colored MAPF plan for agents.
func ValidateSolution(g *core.Graph, agents []core.Agent, teams []*core.Team, sol *core.Solution) error {
	if sol == nil {
		return fmt.Errorf("nil solution")
	}
	if len(sol.Paths) != len(agents) {
		return fmt.Errorf("%d paths for %d agents", len(sol.Paths), len(agents))
	}

	goals := make(map[core.Color]map[core.VertexID]bool, len(teams))
	for _, t := range teams {
		goals[t.Color] = t.GoalSet()
	}

	final := make(map[core.VertexID]core.AgentID, len(agents))
	for _, a := range agents {
		path := sol.Paths[a.ID]
		if len(path) != sol.Horizon+1 {
			return fmt.Errorf("agent %d: path length %d, want %d", a.ID, len(path), sol.Horizon+1)
		}
		if path[0] != a.Start {
			return fmt.Errorf("agent %d: starts at %d, want %d", a.ID, path[0], a.Start)
		}
		for t := 1; t < len(path); t++ {
			if path[t] != path[t-1] && !g.HasEdge(path[t-1], path[t]) {
				return fmt.Errorf("agent %d: illegal move %d -> %d at t=%d", a.ID, path[t-1], path[t], t-1)
			}
		}
		end := path[len(path)-1]
		if !goals[a.Color][end] {
			return fmt.Errorf("agent %d: ends at %d, not a goal of %v", a.ID, end, a.Color)
		}
		if a.HasGoal() && end != a.Goal {
			return fmt.Errorf("agent %d: ends at %d, committed to %d", a.ID, end, a.Goal)
		}
		if other, ok := final[end]; ok {
			return fmt.Errorf("agents %d and %d share goal %d", other, a.ID, end)
		}
		final[end] = a.ID
	}

	if c := FindFirstConflict(sol.Paths); c != nil {
		return fmt.Errorf("conflict: %v", c)
	}
	return nil
}
