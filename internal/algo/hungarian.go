package algo

import "math"

// Forbidden marks a cost matrix entry that must never be matched.
const Forbidden = 1e9

// Matching is a minimum-cost assignment of rows to columns.
type Matching struct {
	RowToCol []int   // Column matched to each row, -1 if unmatched
	Cost     float64 // Sum over matched (non-forbidden) pairs
}

// Matched returns the number of rows with a column.
func (m Matching) Matched() int {
	n := 0
	for _, c := range m.RowToCol {
		if c >= 0 {
			n++
		}
	}
	return n
}

// Complete reports whether every row is matched.
func (m Matching) Complete() bool {
	return m.Matched() == len(m.RowToCol)
}

// MinCostMatching solves the rectangular assignment problem with the
// Kuhn-Munkres algorithm (Jonker-Volgenant potentials) in O(n^3).
// At most min(rows, cols) pairs are returned. Entries >= Forbidden are
// never reported as matched.
func MinCostMatching(cost [][]float64) Matching {
	n := len(cost)
	if n == 0 {
		return Matching{}
	}
	m := len(cost[0])
	res := Matching{RowToCol: make([]int, n)}
	for i := range res.RowToCol {
		res.RowToCol[i] = -1
	}
	if m == 0 {
		return res
	}

	// Pad to a square matrix
	dim := max(n, m)
	c := make([][]float64, dim)
	for i := 0; i < dim; i++ {
		c[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			if i < n && j < m && cost[i][j] < Forbidden {
				c[i][j] = cost[i][j]
			} else {
				c[i][j] = Forbidden
			}
		}
	}

	// 1-indexed; column 0 is virtual
	const inf = math.MaxFloat64 / 2
	u := make([]float64, dim+1) // Row potentials
	v := make([]float64, dim+1) // Column potentials
	p := make([]int, dim+1)     // p[j] = row assigned to column j
	way := make([]int, dim+1)   // Previous column on the augmenting path
	minv := make([]float64, dim+1)
	used := make([]bool, dim+1)

	for i := 1; i <= dim; i++ {
		p[0] = i
		j0 := 0
		for j := 1; j <= dim; j++ {
			minv[j] = inf
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1
			for j := 1; j <= dim; j++ {
				if used[j] {
					continue
				}
				cur := c[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			if j1 < 0 {
				break
			}
			for j := 0; j <= dim; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			p[j0] = p[way[j0]]
			j0 = way[j0]
		}
	}

	for j := 1; j <= dim; j++ {
		row, col := p[j]-1, j-1
		if row < 0 || row >= n || col >= m || cost[row][col] >= Forbidden {
			continue
		}
		res.RowToCol[row] = col
		res.Cost += cost[row][col]
	}
	return res
}
