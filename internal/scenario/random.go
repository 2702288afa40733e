package scenario

import (
	"cmp"
	"fmt"
	"math/rand"
	"slices"

	"github.com/elektrokombinacija/mapfm-sat/internal/algo"
	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// RandomParams configures Random.
type RandomParams struct {
	Seed          int64   `yaml:"seed"`
	Rows          int     `yaml:"rows" validate:"gte=1"`
	Cols          int     `yaml:"cols" validate:"gte=1"`
	Density       float64 `yaml:"density" validate:"gte=0,lt=1"` // Fraction of blocked cells
	Teams         int     `yaml:"teams" validate:"gte=1"`
	AgentsPerTeam int     `yaml:"agents_per_team" validate:"gte=1"`
	GoalsPerTeam  int     `yaml:"goals_per_team" validate:"gte=0"` // 0 = AgentsPerTeam
}

// maxAttempts bounds obstacle layouts tried by Random.
const maxAttempts = 100

// Random generates a deterministic scenario. Starts and goals are placed in
// the largest connected region, so every agent can reach every goal.
func Random(p RandomParams) (*File, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("random scenario: %w", err)
	}
	goalsPerTeam := p.GoalsPerTeam
	if goalsPerTeam == 0 {
		goalsPerTeam = p.AgentsPerTeam
	}
	need := p.Teams * max(p.AgentsPerTeam, goalsPerTeam)
	rng := rand.New(rand.NewSource(p.Seed))

	for attempt := 0; attempt < maxAttempts; attempt++ {
		grid := make([][]bool, p.Rows)
		for i := range grid {
			grid[i] = make([]bool, p.Cols)
			for j := range grid[i] {
				grid[i][j] = rng.Float64() < p.Density
			}
		}
		region := largestRegion(grid)
		if len(region) < need {
			continue
		}

		inst := &core.Instance{
			Name: fmt.Sprintf("colored_%dx%d_t%d_a%d_%d", p.Rows, p.Cols, p.Teams, p.AgentsPerTeam, p.Seed),
			Grid: grid,
		}
		starts := pick(rng, region, p.Teams*p.AgentsPerTeam)
		goals := pick(rng, region, p.Teams*goalsPerTeam)
		for team := 0; team < p.Teams; team++ {
			for k := 0; k < p.AgentsPerTeam; k++ {
				c := starts[team*p.AgentsPerTeam+k]
				inst.AddAgent(c.Row, c.Col, core.Color(team))
			}
			for k := 0; k < goalsPerTeam; k++ {
				c := goals[team*goalsPerTeam+k]
				inst.AddGoal(c.Row, c.Col, core.Color(team))
			}
		}
		f := FromInstance(inst)
		f.Seed = p.Seed
		return f, nil
	}
	return nil, fmt.Errorf("random scenario: no region of %d free cells after %d layouts", need, maxAttempts)
}

// largestRegion returns the cells of the largest connected free region.
func largestRegion(grid [][]bool) []core.Coord {
	g, err := core.NewGraph(grid)
	if err != nil {
		return nil
	}
	seen := make(map[core.VertexID]bool, g.Len())
	var best []core.Coord
	for _, v := range g.Vertices() {
		if seen[v] {
			continue
		}
		var region []core.Coord
		for u := range algo.DistancesFrom(g, v) {
			seen[u] = true
			region = append(region, g.Coord(u))
		}
		if len(region) > len(best) {
			best = region
		}
	}
	// Map order is random; sort for a deterministic pick
	slices.SortFunc(best, func(a, b core.Coord) int {
		if a.Row != b.Row {
			return cmp.Compare(a.Row, b.Row)
		}
		return cmp.Compare(a.Col, b.Col)
	})
	return best
}

// pick draws n distinct cells.
func pick(rng *rand.Rand, cells []core.Coord, n int) []core.Coord {
	perm := rng.Perm(len(cells))
	out := make([]core.Coord, n)
	for i := 0; i < n; i++ {
		out[i] = cells[perm[i]]
	}
	return out
}
