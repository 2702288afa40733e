package algo

import (
	"fmt"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// DefaultMaxCutoff bounds the cutoff scan of MinimalHorizon.
const DefaultMaxCutoff = 1024

// TeamHeuristic is the matching lower bound of one team.
type TeamHeuristic struct {
	Color      core.Color
	Cost       int             // Optimal matching cost (sum of distances)
	Horizon    int             // Smallest horizon realizing Cost
	Assignment []core.VertexID // Goal matched to each team agent
	AgentDist  []int           // Distance of each team agent to its matched goal
}

// Heuristic aggregates the team bounds of an instance.
type Heuristic struct {
	Sum     int // Sum of team costs
	Horizon int // Max of team horizons
	Teams   []TeamHeuristic

	goal []core.VertexID // By AgentID
	dist []int           // By AgentID
}

// Goal returns the goal matched to an agent.
func (h *Heuristic) Goal(a core.AgentID) core.VertexID { return h.goal[a] }

// Dist returns the distance from an agent's start to its matched goal.
func (h *Heuristic) Dist(a core.AgentID) int { return h.dist[a] }

// AgentDists returns per-agent distances indexed by AgentID.
func (h *Heuristic) AgentDists() []int { return h.dist }

// MinimalHorizon computes the optimal matching cost of a team and the
// smallest per-edge cutoff at which that cost is still achievable.
func MinimalHorizon(team *core.Team, dt *DistanceTable, maxCutoff int) (TeamHeuristic, error) {
	th := TeamHeuristic{Color: team.Color}
	n := len(team.Agents)
	if n == 0 {
		return th, nil
	}
	if n > len(team.Goals) {
		return th, fmt.Errorf("%w: %v has %d agents but %d goals",
			core.ErrInfeasibleTeam, team.Color, n, len(team.Goals))
	}

	// dist[i][j]: agent i to goal j, -1 if unreachable
	dist := make([][]int, n)
	for i, start := range team.Starts {
		dist[i] = make([]int, len(team.Goals))
		reachable := false
		for j, goal := range team.Goals {
			d, ok := dt.Dist(goal, start)
			if !ok {
				dist[i][j] = -1
				continue
			}
			dist[i][j] = d
			reachable = true
		}
		if !reachable {
			return th, fmt.Errorf("%w: agent %d of %v reaches no goal",
				core.ErrUnreachableGoal, team.Agents[i], team.Color)
		}
	}

	costMatrix := func(cutoff int) [][]float64 {
		m := make([][]float64, n)
		for i := range dist {
			m[i] = make([]float64, len(team.Goals))
			for j, d := range dist[i] {
				if d < 0 || (cutoff > 0 && d >= cutoff) {
					m[i][j] = Forbidden
				} else {
					m[i][j] = float64(d)
				}
			}
		}
		return m
	}

	opt := MinCostMatching(costMatrix(0))
	if !opt.Complete() {
		return th, fmt.Errorf("%w: %v matches only %d of %d agents to reachable goals",
			core.ErrInfeasibleTeam, team.Color, opt.Matched(), n)
	}

	for c := 1; c <= maxCutoff; c++ {
		m := MinCostMatching(costMatrix(c))
		if !m.Complete() || m.Cost != opt.Cost {
			continue
		}
		th.Cost = int(m.Cost)
		th.Assignment = make([]core.VertexID, n)
		th.AgentDist = make([]int, n)
		for i, j := range m.RowToCol {
			th.Assignment[i] = team.Goals[j]
			th.AgentDist[i] = dist[i][j]
			th.Horizon = max(th.Horizon, dist[i][j])
		}
		return th, nil
	}
	return th, fmt.Errorf("%w: %v needs a cutoff above %d", core.ErrUnreachableGoal, team.Color, maxCutoff)
}

// BuildHeuristic computes the bound of every team.
func BuildHeuristic(teams []*core.Team, dt *DistanceTable, maxCutoff int) (*Heuristic, error) {
	n := 0
	for _, t := range teams {
		for _, a := range t.Agents {
			n = max(n, int(a)+1)
		}
	}
	h := &Heuristic{
		goal: make([]core.VertexID, n),
		dist: make([]int, n),
	}
	for i := range h.goal {
		h.goal[i] = core.NoVertex
	}

	for _, t := range teams {
		th, err := MinimalHorizon(t, dt, maxCutoff)
		if err != nil {
			return nil, err
		}
		h.Teams = append(h.Teams, th)
		h.Sum += th.Cost
		h.Horizon = max(h.Horizon, th.Horizon)
		for i, a := range t.Agents {
			h.goal[a] = th.Assignment[i]
			h.dist[a] = th.AgentDist[i]
		}
	}
	return h, nil
}
