// Package state manages the visualization state.
package state

import (
	"fmt"

	"github.com/elektrokombinacija/mapfm-sat/internal/algo"
	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// CellSize is the side of one grid cell in world units.
const CellSize = 50.0

// Pos is a point in world coordinates.
type Pos struct {
	X, Y float64
}

// CellCenter returns the world position of the center of a cell.
func CellCenter(c core.Coord) Pos {
	return Pos{X: (float64(c.Col) + 0.5) * CellSize, Y: (float64(c.Row) + 0.5) * CellSize}
}

// CellAt returns the cell under a world position.
func CellAt(x, y float64) (core.Coord, bool) {
	if x < 0 || y < 0 {
		return core.Coord{}, false
	}
	return core.Coord{Row: int(y / CellSize), Col: int(x / CellSize)}, true
}

// State holds all visualization state.
type State struct {
	Instance  *core.Instance
	Graph     *core.Graph
	Solution  *core.Solution
	Conflicts []*algo.Conflict
	Stale     bool // Instance edited since Solution was computed

	Playback *PlaybackState
	Edit     *EditState
	Solve    *SolveState
}

// NewState creates a new visualization state. sol may be nil.
func NewState(inst *core.Instance, sol *core.Solution) (*State, error) {
	s := &State{
		Instance: inst,
		Playback: NewPlaybackState(0),
		Edit:     NewEditState(),
		Solve:    NewSolveState(),
	}
	if err := s.Rebuild(); err != nil {
		return nil, err
	}
	if sol != nil {
		if err := s.SetSolution(sol); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Rebuild recomputes the graph after the instance changed. The solution
// is kept for display but marked stale.
func (s *State) Rebuild() error {
	g, err := core.NewGraph(s.Instance.Grid)
	if err != nil {
		return err
	}
	s.Graph = g
	if s.Solution != nil {
		s.Stale = true
	}
	return nil
}

// SetSolution installs a solution and resets playback.
func (s *State) SetSolution(sol *core.Solution) error {
	if sol != nil && len(sol.Paths) != len(s.Instance.Starts) {
		return fmt.Errorf("solution has %d paths for %d agents", len(sol.Paths), len(s.Instance.Starts))
	}
	s.Solution = sol
	s.Stale = false
	s.Conflicts = nil
	maxTime := 0.0
	if sol != nil {
		s.Conflicts = algo.FindAllConflicts(sol.Paths)
		maxTime = float64(sol.Makespan())
	}
	s.Playback = NewPlaybackState(maxTime)
	return nil
}

// vertexPos returns the world position of a vertex.
func (s *State) vertexPos(v core.VertexID) Pos {
	return CellCenter(s.Graph.Coord(v))
}

// CurrentPositions returns interpolated agent positions at the current
// playback time, indexed by agent id.
func (s *State) CurrentPositions() []Pos {
	positions := make([]Pos, len(s.Instance.Starts))
	for a, m := range s.Instance.Starts {
		positions[a] = CellCenter(m.Coord)
		if s.Solution == nil || s.Stale {
			continue
		}
		if path := s.Solution.Paths[a]; len(path) > 0 {
			positions[a] = s.interpolatePosition(path, s.Playback.CurrentTime)
		}
	}
	return positions
}

// interpolatePosition computes position along path at time t. Step i of
// the path is reached at time i.
func (s *State) interpolatePosition(path core.Path, t float64) Pos {
	if t <= 0 {
		return s.vertexPos(path[0])
	}
	last := len(path) - 1
	if t >= float64(last) {
		return s.vertexPos(path[last])
	}
	i := int(t)
	alpha := t - float64(i)
	p1, p2 := s.vertexPos(path[i]), s.vertexPos(path[i+1])
	return Pos{
		X: p1.X + alpha*(p2.X-p1.X),
		Y: p1.Y + alpha*(p2.Y-p1.Y),
	}
}

// PathHistory returns the path of an agent up to the current time, ending
// at its interpolated position.
func (s *State) PathHistory(a core.AgentID) []Pos {
	if s.Solution == nil || s.Stale {
		return nil
	}
	path := s.Solution.Paths[a]
	if len(path) == 0 {
		return nil
	}

	var history []Pos
	for t, v := range path {
		if float64(t) > s.Playback.CurrentTime {
			break
		}
		history = append(history, s.vertexPos(v))
	}
	history = append(history, s.interpolatePosition(path, s.Playback.CurrentTime))
	return history
}

// FuturePath returns the positions an agent has still to visit.
func (s *State) FuturePath(a core.AgentID) []Pos {
	if s.Solution == nil || s.Stale {
		return nil
	}
	path := s.Solution.Paths[a]
	if len(path) == 0 {
		return nil
	}
	future := []Pos{s.interpolatePosition(path, s.Playback.CurrentTime)}
	for t := int(s.Playback.CurrentTime) + 1; t < len(path); t++ {
		future = append(future, s.vertexPos(path[t]))
	}
	return future
}

// ActiveConflicts returns the conflicts happening at the current step.
func (s *State) ActiveConflicts() []*algo.Conflict {
	if s.Stale {
		return nil
	}
	var out []*algo.Conflict
	step := int(s.Playback.CurrentTime)
	for _, c := range s.Conflicts {
		if c.Time == step {
			out = append(out, c)
		}
	}
	return out
}

// VertexPos returns the world position of a graph vertex.
func (s *State) VertexPos(v core.VertexID) Pos {
	return s.vertexPos(v)
}
