package algo

import (
	"context"
	"fmt"
	"slices"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// MDD is a bounded multi-valued decision diagram: the (vertex, t) nodes an
// agent can occupy on some path from its start to one of its goals within
// the horizon. Waiting is allowed at every vertex. An MDD is never mutated
// after BuildMDD returns.
type MDD struct {
	agent    core.AgentID
	start    core.VertexID
	goals    []core.VertexID // Sorted
	horizon  int
	reach    [][]core.VertexID // Forward layers before pruning, sorted
	layers   [][]core.VertexID // Pruned layers, sorted
	next     []map[core.VertexID][]core.VertexID
	size     int
	feasible bool
}

// BuildMDD builds the diagram of one agent. When prev belongs to the same
// start and has a horizon no larger than horizon, its forward layers seed
// the forward pass.
func BuildMDD(g *core.Graph, agent core.AgentID, start core.VertexID, goals []core.VertexID, horizon int, prev *MDD) *MDD {
	horizon = max(horizon, 0)
	m := &MDD{
		agent:   agent,
		start:   start,
		goals:   slices.Sorted(slices.Values(goals)),
		horizon: horizon,
		reach:   make([][]core.VertexID, horizon+1),
		layers:  make([][]core.VertexID, horizon+1),
		next:    make([]map[core.VertexID][]core.VertexID, horizon),
	}
	if !g.Contains(start) {
		return m
	}

	// Forward pass
	from := 0
	if prev != nil && prev.start == start && prev.horizon <= horizon && len(prev.reach) > 0 {
		copy(m.reach, prev.reach)
		from = prev.horizon
	} else {
		m.reach[0] = []core.VertexID{start}
	}
	for t := from; t < horizon; t++ {
		seen := make(map[core.VertexID]bool, len(m.reach[t])*2)
		for _, v := range m.reach[t] {
			seen[v] = true
			for _, w := range g.Neighbors(v) {
				seen[w] = true
			}
		}
		layer := make([]core.VertexID, 0, len(seen))
		for v := range seen {
			layer = append(layer, v)
		}
		slices.Sort(layer)
		m.reach[t+1] = layer
	}

	// Backward pass
	alive := make(map[core.VertexID]bool, len(m.goals))
	for _, v := range m.reach[horizon] {
		if _, ok := slices.BinarySearch(m.goals, v); ok {
			m.layers[horizon] = append(m.layers[horizon], v)
			alive[v] = true
		}
	}
	for t := horizon - 1; t >= 0; t-- {
		m.next[t] = make(map[core.VertexID][]core.VertexID)
		prevAlive := make(map[core.VertexID]bool)
		for _, v := range m.reach[t] {
			var succ []core.VertexID
			if alive[v] {
				succ = append(succ, v)
			}
			for _, w := range g.Neighbors(v) {
				if alive[w] {
					succ = append(succ, w)
				}
			}
			if len(succ) == 0 {
				continue
			}
			m.next[t][v] = succ
			m.layers[t] = append(m.layers[t], v)
			prevAlive[v] = true
		}
		alive = prevAlive
	}

	m.feasible = true
	for _, layer := range m.layers {
		m.size += len(layer)
		if len(layer) == 0 {
			m.feasible = false
		}
	}
	return m
}

// Agent returns the owning agent.
func (m *MDD) Agent() core.AgentID { return m.agent }

// Start returns the start vertex.
func (m *MDD) Start() core.VertexID { return m.start }

// Goals returns the goal set. The slice must not be modified.
func (m *MDD) Goals() []core.VertexID { return m.goals }

// Horizon returns the last timestep of the diagram.
func (m *MDD) Horizon() int { return m.horizon }

// Feasible reports whether every layer is non-empty.
func (m *MDD) Feasible() bool { return m.feasible }

// Size returns the number of (vertex, t) nodes.
func (m *MDD) Size() int { return m.size }

// Layer returns the vertices of timestep t in ascending order.
func (m *MDD) Layer(t int) []core.VertexID {
	if t < 0 || t > m.horizon {
		return nil
	}
	return m.layers[t]
}

// Next returns the successors of (v, t) at t+1. A wait appears as v itself.
func (m *MDD) Next(v core.VertexID, t int) []core.VertexID {
	if t < 0 || t >= m.horizon {
		return nil
	}
	return m.next[t][v]
}

// Contains reports whether (v, t) is a node of the diagram.
func (m *MDD) Contains(v core.VertexID, t int) bool {
	_, ok := slices.BinarySearch(m.Layer(t), v)
	return ok
}

// IsGoal reports whether v is in the goal set.
func (m *MDD) IsGoal(v core.VertexID) bool {
	_, ok := slices.BinarySearch(m.goals, v)
	return ok
}

// MDDRequest describes the diagram of one agent.
type MDDRequest struct {
	Agent core.AgentID
	Start core.VertexID
	Goals []core.VertexID
}

// BuildMDDs builds the diagrams of all agents in parallel. prev may be nil
// or hold the previous diagrams indexed like reqs.
func BuildMDDs(ctx context.Context, g *core.Graph, reqs []MDDRequest, horizon int, prev []*MDD, parallelism int) ([]*MDD, error) {
	out := make([]*MDD, len(reqs))
	eg, egCtx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		eg.SetLimit(parallelism)
	}
	for i, req := range reqs {
		var seed *MDD
		if i < len(prev) {
			seed = prev[i]
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			m := BuildMDD(g, req.Agent, req.Start, req.Goals, horizon, seed)
			if glog.V(2) {
				glog.Infof("mdd agent=%d start=%d goals=%d horizon=%d nodes=%d feasible=%v",
					m.Agent(), m.Start(), len(m.Goals()), m.Horizon(), m.Size(), m.Feasible())
			}
			out[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("build mdds at horizon %d: %w", horizon, err)
	}
	return out, nil
}

// AllFeasible reports whether every diagram has a path.
func AllFeasible(mdds []*MDD) bool {
	for _, m := range mdds {
		if m == nil || !m.Feasible() {
			return false
		}
	}
	return true
}
