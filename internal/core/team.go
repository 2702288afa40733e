package core

import "sort"

// Team groups the agents and goals sharing a color.
type Team struct {
	Color  Color
	Agents []AgentID  // In declaration order
	Starts []VertexID // Starts[i] belongs to Agents[i]
	Goals  []VertexID // In declaration order
}

// BuildTeams resolves markers to vertices and groups them by color.
// Teams are returned in ascending color order, agents in instance order.
// The instance must already be validated against g.
func BuildTeams(g *Graph, inst *Instance) ([]*Team, []Agent) {
	byColor := make(map[Color]*Team)
	team := func(c Color) *Team {
		t, ok := byColor[c]
		if !ok {
			t = &Team{Color: c}
			byColor[c] = t
		}
		return t
	}

	agents := make([]Agent, len(inst.Starts))
	for i, m := range inst.Starts {
		v, _ := g.Vertex(m.Coord)
		agents[i] = Agent{ID: AgentID(i), Color: m.Color, Start: v, Goal: NoVertex}
		t := team(m.Color)
		t.Agents = append(t.Agents, AgentID(i))
		t.Starts = append(t.Starts, v)
	}
	for _, m := range inst.Goals {
		v, _ := g.Vertex(m.Coord)
		t := team(m.Color)
		t.Goals = append(t.Goals, v)
	}

	teams := make([]*Team, 0, len(byColor))
	for _, t := range byColor {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].Color < teams[j].Color
	})
	return teams, agents
}

// GoalSet returns the team's goals as a set.
func (t *Team) GoalSet() map[VertexID]bool {
	set := make(map[VertexID]bool, len(t.Goals))
	for _, g := range t.Goals {
		set[g] = true
	}
	return set
}
