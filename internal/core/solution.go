package core

// Path is the sequence of vertices occupied by one agent at t = 0..horizon.
type Path []VertexID

// Cost returns the arrival time: the smallest t such that the agent
// stays at its final vertex from t to the end of the path.
func (p Path) Cost() int {
	if len(p) == 0 {
		return 0
	}
	last := p[len(p)-1]
	t := len(p) - 1
	for t > 0 && p[t-1] == last {
		t--
	}
	return t
}

// Solution represents a complete colored MAPF solution.
type Solution struct {
	Paths    []Path // Indexed by AgentID, all of length Horizon+1
	Horizon  int
	Delta    int // Cost slack at which the solution was found
	Cost     int // Sum of arrival times
	Feasible bool
}

// NewSolution creates an empty solution for n agents.
func NewSolution(n int) *Solution {
	return &Solution{
		Paths:    make([]Path, n),
		Horizon:  0,
		Delta:    0,
		Cost:     0,
		Feasible: false,
	}
}

// SumOfCosts sums the arrival times of all agents.
func (s *Solution) SumOfCosts() int {
	total := 0
	for _, p := range s.Paths {
		total += p.Cost()
	}
	return total
}

// Makespan returns the latest arrival time over all agents.
func (s *Solution) Makespan() int {
	maxC := 0
	for _, p := range s.Paths {
		if c := p.Cost(); c > maxC {
			maxC = c
		}
	}
	return maxC
}

// CoordPaths converts the paths back to grid cells.
func (s *Solution) CoordPaths(g *Graph) [][]Coord {
	res := make([][]Coord, len(s.Paths))
	for i, p := range s.Paths {
		res[i] = make([]Coord, len(p))
		for t, v := range p {
			res[i][t] = g.Coord(v)
		}
	}
	return res
}
