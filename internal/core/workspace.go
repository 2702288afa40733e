package core

import "fmt"

// VertexID is a unique vertex identifier: width*row + col of a free cell.
type VertexID int

// NoVertex marks an unset vertex.
const NoVertex VertexID = -1

// Graph is the 4-connected adjacency graph over the free cells of a grid.
// It is immutable after construction.
type Graph struct {
	rows, cols int
	adj        map[VertexID][]VertexID
	vertices   []VertexID // Sorted
}

// NewGraph builds the graph of a grid where true marks a blocked cell.
func NewGraph(grid [][]bool) (*Graph, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrMalformedGrid)
	}
	height, width := len(grid), len(grid[0])
	for i, row := range grid {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformedGrid, i, len(row), width)
		}
	}

	g := &Graph{
		rows: height,
		cols: width,
		adj:  make(map[VertexID][]VertexID),
	}
	free := func(i, j int) bool {
		return i >= 0 && i < height && j >= 0 && j < width && !grid[i][j]
	}
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			if grid[i][j] {
				continue
			}
			id := VertexID(width*i + j)
			neighbors := make([]VertexID, 0, 4)
			// Up, left, down, right
			if free(i-1, j) {
				neighbors = append(neighbors, VertexID(width*(i-1)+j))
			}
			if free(i, j-1) {
				neighbors = append(neighbors, VertexID(width*i+j-1))
			}
			if free(i+1, j) {
				neighbors = append(neighbors, VertexID(width*(i+1)+j))
			}
			if free(i, j+1) {
				neighbors = append(neighbors, VertexID(width*i+j+1))
			}
			g.adj[id] = neighbors
			g.vertices = append(g.vertices, id)
		}
	}
	return g, nil
}

// Rows returns the grid height.
func (g *Graph) Rows() int { return g.rows }

// Cols returns the grid width.
func (g *Graph) Cols() int { return g.cols }

// Len returns the number of free cells.
func (g *Graph) Len() int { return len(g.vertices) }

// Vertices returns all vertex ids in ascending order. The slice must not be modified.
func (g *Graph) Vertices() []VertexID { return g.vertices }

// Neighbors returns adjacent vertices. The slice must not be modified.
func (g *Graph) Neighbors(v VertexID) []VertexID {
	return g.adj[v]
}

// Contains reports whether v is a free cell of the graph.
func (g *Graph) Contains(v VertexID) bool {
	_, ok := g.adj[v]
	return ok
}

// HasEdge reports whether u and v are orthogonal free neighbors.
func (g *Graph) HasEdge(u, v VertexID) bool {
	for _, n := range g.adj[u] {
		if n == v {
			return true
		}
	}
	return false
}

// Coord converts a vertex back to its grid cell.
func (g *Graph) Coord(v VertexID) Coord {
	return Coord{Row: int(v) / g.cols, Col: int(v) % g.cols}
}

// Vertex returns the vertex of a grid cell, or false if the cell is blocked or outside the grid.
func (g *Graph) Vertex(c Coord) (VertexID, bool) {
	if c.Row < 0 || c.Row >= g.rows || c.Col < 0 || c.Col >= g.cols {
		return NoVertex, false
	}
	id := VertexID(c.Row*g.cols + c.Col)
	if !g.Contains(id) {
		return NoVertex, false
	}
	return id, true
}
