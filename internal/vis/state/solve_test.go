package state

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/crillab/gophersat/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapfm-sat/internal/algo"
	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// runSolve starts a solve and waits for it to finish.
func runSolve(t *testing.T, s *SolveState, inst *core.Instance) {
	t.Helper()
	done := make(chan struct{})
	s.Start(inst, func() { close(done) })
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("solve did not finish")
	}
}

func crossing() *core.Instance {
	inst := core.NewInstance(3, 3)
	inst.AddAgent(0, 0, 0)
	inst.AddAgent(2, 2, 1)
	inst.AddGoal(0, 2, 0)
	inst.AddGoal(2, 0, 1)
	return inst
}

// lingeringOracle blocks until cancelled and then takes a while to return,
// like a SAT call that only notices cancellation late.
type lingeringOracle struct {
	entered  chan struct{}
	returned chan struct{}
}

func newLingeringOracle() *lingeringOracle {
	return &lingeringOracle{entered: make(chan struct{}, 1), returned: make(chan struct{})}
}

func (o *lingeringOracle) Solve(ctx context.Context, _ *solver.Problem) (algo.Result, error) {
	o.entered <- struct{}{}
	<-ctx.Done()
	time.Sleep(30 * time.Millisecond)
	defer close(o.returned)
	return algo.Result{}, fmt.Errorf("%w: %w", core.ErrTimedOut, ctx.Err())
}

// gatedOracle holds every call until release is closed.
type gatedOracle struct {
	entered chan struct{}
	release chan struct{}
}

func (o *gatedOracle) Solve(ctx context.Context, pb *solver.Problem) (algo.Result, error) {
	select {
	case o.entered <- struct{}{}:
	default:
	}
	<-o.release
	return algo.GopherSAT{}.Solve(ctx, pb)
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(10 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestSolveState_Solves(t *testing.T) {
	inst := crossing()

	s := NewSolveState()
	runSolve(t, s, inst)

	assert.False(t, s.Running())
	require.NoError(t, s.Err())
	iters := s.Iterations()
	require.NotEmpty(t, iters)
	assert.Equal(t, 2, iters[0].Horizon)
	assert.Positive(t, iters[0].Variables)

	sol := s.TakeResult()
	require.NotNil(t, sol)
	assert.Equal(t, 4, sol.Cost)
	assert.Nil(t, s.TakeResult(), "result is handed out once")

	stats, elapsed := s.Stats()
	assert.Equal(t, len(iters), stats.OracleCalls)
	assert.Positive(t, elapsed)
}

func TestSolveState_Error(t *testing.T) {
	inst := core.NewInstance(1, 3)
	inst.Block(0, 1)
	inst.AddAgent(0, 0, 0)
	inst.AddGoal(0, 2, 0)

	s := NewSolveState()
	runSolve(t, s, inst)
	require.Error(t, s.Err())
	assert.Nil(t, s.TakeResult())
}

func TestSolveState_ToggleMode(t *testing.T) {
	s := NewSolveState()
	assert.Equal(t, core.InMatch, s.Mode)
	s.ToggleMode()
	assert.Equal(t, core.PreMatch, s.Mode)
	s.ToggleMode()
	assert.Equal(t, core.InMatch, s.Mode)
}

func TestCloneInstance(t *testing.T) {
	inst := core.NewInstance(2, 2)
	inst.AddAgent(0, 0, 0)
	c := cloneInstance(inst)
	c.Grid[0][1] = true
	c.Starts[0].Coord.Row = 1
	assert.False(t, inst.Grid[0][1])
	assert.Equal(t, 0, inst.Starts[0].Coord.Row)
}

func TestSolveState_RestartDiscardsStaleRuns(t *testing.T) {
	inst := crossing()
	s := NewSolveState()
	stale := make(chan struct{}, 2)

	first := newLingeringOracle()
	s.Options.Oracle = first
	s.Start(inst, func() { stale <- struct{}{} })
	waitFor(t, first.entered, "first oracle call")

	second := newLingeringOracle()
	s.Options.Oracle = second
	s.Start(inst, func() { stale <- struct{}{} })
	waitFor(t, second.entered, "second oracle call")

	final := &gatedOracle{entered: make(chan struct{}, 1), release: make(chan struct{})}
	s.Options.Oracle = final
	done := make(chan struct{})
	s.Start(inst, func() { close(done) })
	waitFor(t, final.entered, "final oracle call")

	// Both cancelled runs have returned; let their goroutines finish.
	waitFor(t, first.returned, "first oracle return")
	waitFor(t, second.returned, "second oracle return")
	time.Sleep(50 * time.Millisecond)

	assert.True(t, s.Running(), "cancelled runs must not end the current one")
	assert.NoError(t, s.Err())
	assert.Nil(t, s.TakeResult())
	iters := s.Iterations()
	require.Len(t, iters, 1)
	assert.Equal(t, 2, iters[0].Horizon)

	close(final.release)
	waitFor(t, done, "final solve")
	assert.False(t, s.Running())
	require.NoError(t, s.Err())
	sol := s.TakeResult()
	require.NotNil(t, sol)
	assert.Equal(t, 4, sol.Cost)
	assert.Empty(t, stale, "done is only called for the latest run")
}

func TestSolveState_StopRecordsOutcome(t *testing.T) {
	s := NewSolveState()
	o := newLingeringOracle()
	s.Options.Oracle = o
	done := make(chan struct{})
	s.Start(crossing(), func() { close(done) })
	waitFor(t, o.entered, "oracle call")

	s.Stop()
	waitFor(t, done, "stopped solve")
	assert.False(t, s.Running())
	assert.ErrorIs(t, s.Err(), core.ErrTimedOut)
	assert.Nil(t, s.TakeResult())
}
