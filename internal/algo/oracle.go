package algo

import (
	"context"
	"fmt"

	"github.com/crillab/gophersat/solver"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// Result is the answer of a SAT oracle.
type Result struct {
	Sat   bool
	Model []bool // Model[i] is the value of variable i+1
}

// Oracle decides satisfiability of a pseudo-Boolean problem.
type Oracle interface {
	Solve(ctx context.Context, pb *solver.Problem) (Result, error)
}

// GopherSAT is an Oracle backed by the gophersat CDCL solver.
//
// gophersat cannot be interrupted, so the search runs on its own goroutine.
// When ctx ends first the call returns ErrTimedOut and the goroutine is left
// to finish in the background; it owns the problem and shares nothing else.
type GopherSAT struct {
	Verbose bool
}

// Solve implements Oracle.
func (o GopherSAT) Solve(ctx context.Context, pb *solver.Problem) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", core.ErrTimedOut, err)
	}

	done := make(chan Result, 1)
	go func() {
		s := solver.New(pb)
		s.Verbose = o.Verbose
		if s.Solve() != solver.Sat {
			done <- Result{}
			return
		}
		done <- Result{Sat: true, Model: s.Model()}
	}()

	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		return Result{}, fmt.Errorf("%w: %w", core.ErrTimedOut, ctx.Err())
	}
}
