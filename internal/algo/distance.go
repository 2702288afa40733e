package algo

import (
	"container/heap"
	"sync"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// distNode for the shortest-path priority queue.
type distNode struct {
	v     core.VertexID
	d     int
	seq   int // Insertion order, breaks ties deterministically
	index int // heap index
}

// distHeap implements heap.Interface.
type distHeap []*distNode

func (h distHeap) Len() int { return len(h) }
func (h distHeap) Less(i, j int) bool {
	if h[i].d != h[j].d {
		return h[i].d < h[j].d
	}
	return h[i].seq < h[j].seq
}
func (h distHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *distHeap) Push(x any) {
	n := x.(*distNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *distHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// edgeWeight is the cost of one move. Grid moves are uniform.
func edgeWeight(_, _ core.VertexID) int { return 1 }

// DistancesFrom returns the hop distance from source to every reachable vertex.
// Unreachable vertices are absent from the result.
func DistancesFrom(g *core.Graph, source core.VertexID) map[core.VertexID]int {
	dist := make(map[core.VertexID]int)
	if !g.Contains(source) {
		return dist
	}

	seen := map[core.VertexID]int{source: 0}
	seq := 0
	open := &distHeap{}
	heap.Init(open)
	heap.Push(open, &distNode{v: source, d: 0, seq: seq})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*distNode)
		if _, done := dist[cur.v]; done {
			continue
		}
		dist[cur.v] = cur.d

		for _, next := range g.Neighbors(cur.v) {
			nd := cur.d + edgeWeight(cur.v, next)
			if old, ok := seen[next]; ok && old <= nd {
				continue
			}
			seen[next] = nd
			seq++
			heap.Push(open, &distNode{v: next, d: nd, seq: seq})
		}
	}
	return dist
}

// DistanceTable caches single-source distance maps.
// The graph is undirected, so a table built from goals answers start-to-goal queries.
type DistanceTable struct {
	g    *core.Graph
	mu   sync.Mutex
	from map[core.VertexID]map[core.VertexID]int
}

// NewDistanceTable creates an empty table over g.
func NewDistanceTable(g *core.Graph) *DistanceTable {
	return &DistanceTable{
		g:    g,
		from: make(map[core.VertexID]map[core.VertexID]int),
	}
}

// From returns the distance map of src, computing it on first use.
func (dt *DistanceTable) From(src core.VertexID) map[core.VertexID]int {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	if d, ok := dt.from[src]; ok {
		return d
	}
	d := DistancesFrom(dt.g, src)
	dt.from[src] = d
	return d
}

// Dist returns the distance between src and dst, or false if dst is unreachable.
func (dt *DistanceTable) Dist(src, dst core.VertexID) (int, bool) {
	d, ok := dt.From(src)[dst]
	return d, ok
}

// Sources returns the number of cached sources.
func (dt *DistanceTable) Sources() int {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	return len(dt.from)
}
