package core

import "fmt"

// Instance represents a colored MAPF problem instance.
// Grid cells set to true are blocked.
type Instance struct {
	Name   string
	Grid   [][]bool
	Starts []Marker // One per agent; agent ids follow this order
	Goals  []Marker
}

// NewInstance creates an instance over an open rows x cols grid.
func NewInstance(rows, cols int) *Instance {
	grid := make([][]bool, rows)
	for i := range grid {
		grid[i] = make([]bool, cols)
	}
	return &Instance{Grid: grid}
}

// AddAgent appends an agent start and returns its id.
func (inst *Instance) AddAgent(row, col int, color Color) AgentID {
	inst.Starts = append(inst.Starts, Marker{Coord: Coord{Row: row, Col: col}, Color: color})
	return AgentID(len(inst.Starts) - 1)
}

// AddGoal appends a goal for a team.
func (inst *Instance) AddGoal(row, col int, color Color) {
	inst.Goals = append(inst.Goals, Marker{Coord: Coord{Row: row, Col: col}, Color: color})
}

// Block marks a cell as an obstacle.
func (inst *Instance) Block(row, col int) {
	inst.Grid[row][col] = true
}

// Validate checks instance consistency and returns its graph.
func (inst *Instance) Validate() (*Graph, error) {
	g, err := NewGraph(inst.Grid)
	if err != nil {
		return nil, err
	}
	if len(inst.Starts) == 0 {
		return nil, fmt.Errorf("%w: no agents", ErrInvalidInstance)
	}
	check := func(kind string, markers []Marker) error {
		seen := make(map[VertexID]bool, len(markers))
		for i, m := range markers {
			if m.Color < 0 {
				return fmt.Errorf("%w: %s %d has negative color %d", ErrInvalidInstance, kind, i, m.Color)
			}
			v, ok := g.Vertex(m.Coord)
			if !ok {
				return fmt.Errorf("%w: %s %d at %v is blocked or outside the grid", ErrInvalidInstance, kind, i, m.Coord)
			}
			if seen[v] {
				return fmt.Errorf("%w: two %ss at %v", ErrInvalidInstance, kind, m.Coord)
			}
			seen[v] = true
		}
		return nil
	}
	if err := check("start", inst.Starts); err != nil {
		return nil, err
	}
	if err := check("goal", inst.Goals); err != nil {
		return nil, err
	}
	return g, nil
}
