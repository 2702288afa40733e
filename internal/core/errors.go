package core

import "errors"

var (
	// ErrMalformedGrid reports an empty or non-rectangular grid.
	ErrMalformedGrid = errors.New("malformed grid")

	// ErrInvalidInstance reports markers outside the grid, on blocked cells or stacked.
	ErrInvalidInstance = errors.New("invalid instance")

	// ErrInfeasibleTeam reports a team whose agents cannot all be matched to distinct goals.
	ErrInfeasibleTeam = errors.New("infeasible team")

	// ErrUnreachableGoal reports an agent that cannot reach any goal of its team
	// within the search ceiling.
	ErrUnreachableGoal = errors.New("unreachable goal")

	// ErrEncodingOverflow reports a formula larger than the configured limits.
	ErrEncodingOverflow = errors.New("encoding overflow")

	// ErrTimedOut reports that the oracle call or the deepening loop ran out of time.
	ErrTimedOut = errors.New("timed out")
)
