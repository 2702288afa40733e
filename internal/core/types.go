// Package core defines domain models for colored MAPF.
package core

import "fmt"

// Color identifies a team. Agents may only finish on goals of their own color.
type Color int

func (c Color) String() string {
	return fmt.Sprintf("team%d", int(c))
}

// Coord is a grid cell position.
type Coord struct {
	Row, Col int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Marker is a colored grid cell: an agent start or a goal.
type Marker struct {
	Coord
	Color Color
}

// MatchMode selects how agents are matched to goals within a team.
type MatchMode int

const (
	InMatch  MatchMode = iota // Goal chosen by the planner jointly with the paths
	PreMatch                  // Goal fixed by an optimal assignment before planning
)

func (m MatchMode) String() string {
	return [...]string{"inmatch", "prematch"}[m]
}

// ParseMatchMode converts a mode name to a MatchMode.
func ParseMatchMode(s string) (MatchMode, error) {
	switch s {
	case "inmatch", "in-match", "":
		return InMatch, nil
	case "prematch", "pre-match":
		return PreMatch, nil
	default:
		return InMatch, fmt.Errorf("unknown match mode %q", s)
	}
}
