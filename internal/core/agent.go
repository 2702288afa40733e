package core

import "fmt"

// AgentID is an agent index in 0..n-1.
type AgentID int

// Agent is a single mobile unit.
type Agent struct {
	ID    AgentID
	Color Color
	Start VertexID
	Goal  VertexID // Committed goal in pre-match mode; NoVertex otherwise
}

func (a Agent) String() string {
	return fmt.Sprintf("agent%d/%v", a.ID, a.Color)
}

// HasGoal reports whether the agent has a committed goal.
func (a Agent) HasGoal() bool {
	return a.Goal != NoVertex
}
