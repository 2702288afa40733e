package algo

import (
	"fmt"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// VarKind tags the meaning of a Boolean variable.
type VarKind uint8

const (
	KindOccupy    VarKind = iota // Agent at V at T
	KindTraverse                 // Agent moves V -> W between T and T+1
	KindWait                     // Agent stays at goal V from T to the horizon
	KindUnsettled                // Agent not yet resting at its goal at T
)

func (k VarKind) String() string {
	return [...]string{"occupy", "traverse", "wait", "unsettled"}[k]
}

// VarKey identifies a variable by its meaning. Unused fields are NoVertex.
type VarKey struct {
	Kind  VarKind
	T     int
	V, W  core.VertexID
	Agent core.AgentID
}

func (k VarKey) String() string {
	switch k.Kind {
	case KindTraverse:
		return fmt.Sprintf("%v(t=%d,%d->%d,a=%d)", k.Kind, k.T, k.V, k.W, k.Agent)
	case KindUnsettled:
		return fmt.Sprintf("%v(t=%d,a=%d)", k.Kind, k.T, k.Agent)
	default:
		return fmt.Sprintf("%v(t=%d,v=%d,a=%d)", k.Kind, k.T, k.V, k.Agent)
	}
}

// Occupy is the key of "agent a is at v at time t".
func Occupy(t int, v core.VertexID, a core.AgentID) VarKey {
	return VarKey{Kind: KindOccupy, T: t, V: v, W: core.NoVertex, Agent: a}
}

// Traverse is the key of "agent a moves from v to w between t and t+1".
func Traverse(t int, v, w core.VertexID, a core.AgentID) VarKey {
	return VarKey{Kind: KindTraverse, T: t, V: v, W: w, Agent: a}
}

// Wait is the key of "agent a rests at goal v from t on".
func Wait(t int, v core.VertexID, a core.AgentID) VarKey {
	return VarKey{Kind: KindWait, T: t, V: v, W: core.NoVertex, Agent: a}
}

// Unsettled is the key of "agent a still pays cost at time t".
func Unsettled(t int, a core.AgentID) VarKey {
	return VarKey{Kind: KindUnsettled, T: t, V: core.NoVertex, W: core.NoVertex, Agent: a}
}

// VarIndex is a bijection between keys and dense variable ids starting at 1.
type VarIndex struct {
	ids  map[VarKey]int
	keys []VarKey // keys[id-1]
}

// NewVarIndex creates an empty index.
func NewVarIndex() *VarIndex {
	return &VarIndex{ids: make(map[VarKey]int)}
}

// ID returns the id of key, allocating one on first use.
func (x *VarIndex) ID(key VarKey) int {
	if id, ok := x.ids[key]; ok {
		return id
	}
	x.keys = append(x.keys, key)
	id := len(x.keys)
	x.ids[key] = id
	return id
}

// Lookup returns the id of key without allocating.
func (x *VarIndex) Lookup(key VarKey) (int, bool) {
	id, ok := x.ids[key]
	return id, ok
}

// Key returns the key of id.
func (x *VarIndex) Key(id int) (VarKey, bool) {
	if id < 1 || id > len(x.keys) {
		return VarKey{}, false
	}
	return x.keys[id-1], true
}

// Len returns the number of allocated variables.
func (x *VarIndex) Len() int { return len(x.keys) }

// Count returns the number of variables of a kind.
func (x *VarIndex) Count(kind VarKind) int {
	n := 0
	for _, k := range x.keys {
		if k.Kind == kind {
			n++
		}
	}
	return n
}
