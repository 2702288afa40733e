package algo

import (
	"bufio"
	"fmt"
	"io"
	"slices"

	"github.com/crillab/gophersat/solver"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// Limits caps the size of one encoding. Zero means unlimited.
type Limits struct {
	MaxVariables   int
	MaxConstraints int
}

// EncodeParams are the inputs of one encoding.
type EncodeParams struct {
	Agents         []core.Agent
	MDDs           []*MDD // Indexed like Agents, all built for Horizon
	Horizon        int
	HeuristicSum   int   // Sum of team matching costs
	AgentHeuristic []int // Distance to the matched goal, by AgentID
	Delta          int
	Mode           core.MatchMode
	Limits         Limits
}

// Encoding is a pseudo-Boolean formula over the motion of all agents
// together with the meaning of its variables.
type Encoding struct {
	Constraints []solver.PBConstr
	Index       *VarIndex
	Horizon     int
	Delta       int
	Mode        core.MatchMode
	Agents      int
}

// Problem converts the constraints into a gophersat problem.
func (e *Encoding) Problem() *solver.Problem {
	return solver.ParsePBConstrs(e.Constraints)
}

// WriteOPB writes the formula in OPB syntax, readable by solver.ParseOPB.
func (e *Encoding) WriteOPB(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "* #variable= %d #constraint= %d\n", e.Index.Len(), len(e.Constraints))
	fmt.Fprintf(bw, "* horizon=%d delta=%d mode=%v agents=%d\n", e.Horizon, e.Delta, e.Mode, e.Agents)
	for _, c := range e.Constraints {
		for i, lit := range c.Lits {
			weight := 1
			if c.Weights != nil {
				weight = c.Weights[i]
			}
			if lit < 0 {
				fmt.Fprintf(bw, "%d ~x%d ", weight, -lit)
			} else {
				fmt.Fprintf(bw, "%d x%d ", weight, lit)
			}
		}
		fmt.Fprintf(bw, ">= %d ;\n", c.AtLeast)
	}
	return bw.Flush()
}

// encoder accumulates constraints for one Encode call.
type encoder struct {
	p   EncodeParams
	idx *VarIndex
	out []solver.PBConstr
}

func (enc *encoder) add(c solver.PBConstr) {
	enc.out = append(enc.out, c)
}

// clause adds the disjunction of lits.
func (enc *encoder) clause(lits ...int) {
	enc.add(solver.PropClause(lits...))
}

// atMostOne adds a cardinality constraint, or nothing for fewer than two lits.
func (enc *encoder) atMostOne(lits []int) {
	switch len(lits) {
	case 0, 1:
	case 2:
		enc.clause(-lits[0], -lits[1])
	default:
		enc.add(solver.AtMost(slices.Clone(lits), 1))
	}
}

func (enc *encoder) overflow() error {
	l := enc.p.Limits
	if l.MaxVariables > 0 && enc.idx.Len() > l.MaxVariables {
		return fmt.Errorf("%w: %d variables exceed limit %d", core.ErrEncodingOverflow, enc.idx.Len(), l.MaxVariables)
	}
	if l.MaxConstraints > 0 && len(enc.out) > l.MaxConstraints {
		return fmt.Errorf("%w: %d constraints exceed limit %d", core.ErrEncodingOverflow, len(enc.out), l.MaxConstraints)
	}
	return nil
}

// Encode builds the formula for one (horizon, delta) pair.
func Encode(p EncodeParams) (*Encoding, error) {
	h := p.Horizon
	if len(p.MDDs) != len(p.Agents) {
		return nil, fmt.Errorf("encode: %d diagrams for %d agents", len(p.MDDs), len(p.Agents))
	}
	for i, m := range p.MDDs {
		if p.Agents[i].ID != core.AgentID(i) {
			return nil, fmt.Errorf("encode: agent at index %d has id %d", i, p.Agents[i].ID)
		}
		if p.Mode == core.PreMatch && !p.Agents[i].HasGoal() {
			return nil, fmt.Errorf("encode: pre-match agent %d has no committed goal", i)
		}
		if m == nil || m.Horizon() != h {
			return nil, fmt.Errorf("encode: agent %d diagram does not match horizon %d", i, h)
		}
		if !m.Feasible() {
			return nil, fmt.Errorf("encode: agent %d has no path within horizon %d", i, h)
		}
	}
	if p.Mode == core.PreMatch && len(p.AgentHeuristic) < len(p.Agents) {
		return nil, fmt.Errorf("encode: pre-match needs a distance for each of %d agents", len(p.Agents))
	}

	enc := &encoder{p: p, idx: NewVarIndex()}
	for i := range p.Agents {
		enc.agent(i)
		if err := enc.overflow(); err != nil {
			return nil, err
		}
	}
	enc.vertexCollisions()
	enc.swapCollisions()
	enc.costBound()
	if err := enc.overflow(); err != nil {
		return nil, err
	}

	return &Encoding{
		Constraints: enc.out,
		Index:       enc.idx,
		Horizon:     h,
		Delta:       p.Delta,
		Mode:        p.Mode,
		Agents:      len(p.Agents),
	}, nil
}

// agent adds the single-agent motion constraints of agent i.
func (enc *encoder) agent(i int) {
	p := enc.p
	a := p.Agents[i]
	m := p.MDDs[i]
	h := p.Horizon

	// Allocate occupancy first so ids follow (agent, t, v)
	for t := 0; t <= h; t++ {
		for _, v := range m.Layer(t) {
			enc.idx.ID(Occupy(t, v, a.ID))
		}
	}

	enc.clause(enc.idx.ID(Occupy(0, a.Start, a.ID)))

	// Goal
	if p.Mode == core.PreMatch {
		enc.clause(enc.idx.ID(Occupy(h, a.Goal, a.ID)))
	} else {
		final := make([]int, 0, len(m.Layer(h)))
		for _, v := range m.Layer(h) {
			final = append(final, enc.idx.ID(Occupy(h, v, a.ID)))
		}
		enc.clause(final...)
	}

	for t := 0; t <= h; t++ {
		layer := m.Layer(t)
		occ := make([]int, len(layer))
		for j, v := range layer {
			occ[j] = enc.idx.ID(Occupy(t, v, a.ID))
		}
		enc.atMostOne(occ)
		if t == h {
			break
		}

		for j, v := range layer {
			succ := m.Next(v, t)
			flow := make([]int, 0, len(succ)+1)
			flow = append(flow, -occ[j])
			for _, w := range succ {
				x := enc.idx.ID(Traverse(t, v, w, a.ID))
				flow = append(flow, x)
				enc.clause(-x, occ[j])
				enc.clause(-x, enc.idx.ID(Occupy(t+1, w, a.ID)))

				if v == w && p.Mode == core.InMatch && m.IsGoal(v) {
					enc.wait(t, v, a.ID, x)
				}
			}
			enc.clause(flow...)
		}
	}

	if p.Mode == core.PreMatch {
		enc.unsettled(i)
	}
}

// wait defines Wait(t, g, a): the agent takes the self-loop at g and stays
// there until the horizon.
func (enc *encoder) wait(t int, g core.VertexID, a core.AgentID, loop int) {
	w := enc.idx.ID(Wait(t, g, a))
	enc.clause(-w, loop)
	for t2 := t; t2 <= enc.p.Horizon; t2++ {
		occ, ok := enc.idx.Lookup(Occupy(t2, g, a))
		if !ok {
			enc.clause(-w)
			return
		}
		enc.clause(-w, occ)
	}
}

// unsettled charges every step at or after the agent's distance bound that
// is not a rest at its goal. The chain makes the charged steps contiguous,
// so their count is exactly the agent's cost above the bound.
func (enc *encoder) unsettled(i int) {
	p := enc.p
	a := p.Agents[i]
	m := p.MDDs[i]
	from := p.AgentHeuristic[a.ID]

	for t := from; t < p.Horizon; t++ {
		u := enc.idx.ID(Unsettled(t, a.ID))
		for _, v := range m.Layer(t) {
			for _, w := range m.Next(v, t) {
				if v == w && v == a.Goal {
					continue
				}
				x, _ := enc.idx.Lookup(Traverse(t, v, w, a.ID))
				enc.clause(-x, u)
			}
		}
		if t > from {
			prev, _ := enc.idx.Lookup(Unsettled(t-1, a.ID))
			enc.clause(-u, prev)
		}
	}
}

// vertexCollisions forbids two agents at one vertex at any timestep.
func (enc *encoder) vertexCollisions() {
	for t := 0; t <= enc.p.Horizon; t++ {
		shared := make(map[core.VertexID][]int)
		for i, m := range enc.p.MDDs {
			a := enc.p.Agents[i].ID
			for _, v := range m.Layer(t) {
				id, _ := enc.idx.Lookup(Occupy(t, v, a))
				shared[v] = append(shared[v], id)
			}
		}
		for _, v := range sortedVertices(shared) {
			enc.atMostOne(shared[v])
		}
	}
}

type arc struct{ from, to core.VertexID }

type arcUse struct {
	agent core.AgentID
	id    int
}

// swapCollisions forbids two agents traversing one edge in opposite directions.
func (enc *encoder) swapCollisions() {
	for t := 0; t < enc.p.Horizon; t++ {
		uses := make(map[arc][]arcUse)
		var arcs []arc
		for i, m := range enc.p.MDDs {
			a := enc.p.Agents[i].ID
			for _, v := range m.Layer(t) {
				for _, w := range m.Next(v, t) {
					if v == w {
						continue
					}
					key := arc{v, w}
					if _, ok := uses[key]; !ok {
						arcs = append(arcs, key)
					}
					id, _ := enc.idx.Lookup(Traverse(t, v, w, a))
					uses[key] = append(uses[key], arcUse{agent: a, id: id})
				}
			}
		}
		for _, e := range arcs {
			if e.from > e.to {
				continue
			}
			for _, x := range uses[e] {
				for _, y := range uses[arc{e.to, e.from}] {
					if x.agent != y.agent {
						enc.clause(-x.id, -y.id)
					}
				}
			}
		}
	}
}

// costBound limits the sum of arrival times to HeuristicSum + Delta.
func (enc *encoder) costBound() {
	p := enc.p
	switch p.Mode {
	case core.InMatch:
		// Each agent has at most Horizon - cost true waits
		need := len(p.Agents)*p.Horizon - (p.HeuristicSum + p.Delta)
		if need <= 0 {
			return
		}
		waits := enc.kind(KindWait)
		enc.add(solver.AtLeast(waits, need))
	case core.PreMatch:
		unsettled := enc.kind(KindUnsettled)
		if len(unsettled) <= p.Delta {
			return
		}
		enc.add(solver.AtMost(unsettled, p.Delta))
	}
}

// kind returns the ids of all variables of a kind in allocation order.
func (enc *encoder) kind(k VarKind) []int {
	var ids []int
	for id := 1; id <= enc.idx.Len(); id++ {
		if key, _ := enc.idx.Key(id); key.Kind == k {
			ids = append(ids, id)
		}
	}
	return ids
}

func sortedVertices[T any](m map[core.VertexID]T) []core.VertexID {
	vs := make([]core.VertexID, 0, len(m))
	for v := range m {
		vs = append(vs, v)
	}
	slices.Sort(vs)
	return vs
}

// Decode extracts agent paths from a satisfying model.
// model[i] is the value of variable i+1; missing entries are false.
func Decode(e *Encoding, model []bool) ([]core.Path, error) {
	paths := make([]core.Path, e.Agents)
	for a := range paths {
		paths[a] = make(core.Path, e.Horizon+1)
		for t := range paths[a] {
			paths[a][t] = core.NoVertex
		}
	}

	for id := 1; id <= e.Index.Len() && id <= len(model); id++ {
		if !model[id-1] {
			continue
		}
		key, _ := e.Index.Key(id)
		if key.Kind != KindOccupy {
			continue
		}
		if int(key.Agent) >= len(paths) || key.T > e.Horizon {
			return nil, fmt.Errorf("decode: %v outside %d agents, horizon %d", key, len(paths), e.Horizon)
		}
		if prev := paths[key.Agent][key.T]; prev != core.NoVertex {
			return nil, fmt.Errorf("decode: agent %d at both %d and %d at t=%d", key.Agent, prev, key.V, key.T)
		}
		paths[key.Agent][key.T] = key.V
	}

	for a, p := range paths {
		for t, v := range p {
			if v == core.NoVertex {
				return nil, fmt.Errorf("decode: agent %d has no position at t=%d", a, t)
			}
		}
	}
	return paths, nil
}

// RealizedCost sums the arrival times of all paths.
func RealizedCost(paths []core.Path) int {
	total := 0
	for _, p := range paths {
		total += p.Cost()
	}
	return total
}
