package state

import (
	"context"
	"sync"
	"time"

	"github.com/elektrokombinacija/mapfm-sat/internal/algo"
	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// IterationInfo describes one encoding handed to the SAT oracle.
type IterationInfo struct {
	Horizon     int
	Delta       int
	Variables   int
	Constraints int
}

// SolveState runs the SAT planner in the background and collects its
// progress for display.
type SolveState struct {
	mu sync.Mutex

	Mode    core.MatchMode
	Options algo.SATOptions

	gen        uint64 // Bumped by every Start; older runs drop their writes
	running    bool
	cancel     context.CancelFunc
	started    time.Time
	elapsed    time.Duration
	iterations []IterationInfo
	stats      algo.Stats
	err        error
	result     *core.Solution
}

// NewSolveState creates a solve state with default options.
func NewSolveState() *SolveState {
	opts := algo.DefaultSATOptions()
	return &SolveState{Mode: opts.Mode, Options: opts}
}

// ToggleMode switches between in-match and pre-match solving.
func (s *SolveState) ToggleMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Mode == core.InMatch {
		s.Mode = core.PreMatch
	} else {
		s.Mode = core.InMatch
	}
}

// Start solves a copy of inst in a new goroutine. A solve already running
// is cancelled first and its late results are discarded. done, if non-nil,
// is called when this solve ends and no newer one has been started.
func (s *SolveState) Start(inst *core.Instance, done func()) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(context.Background())
	opts := s.Options
	opts.Mode = s.Mode
	opts.OnEncode = func(e *algo.Encoding) { s.recordIteration(gen, e) }
	s.running = true
	s.cancel = cancel
	s.started = time.Now()
	s.elapsed = 0
	s.stats = algo.Stats{}
	s.iterations = nil
	s.err = nil
	s.result = nil
	s.mu.Unlock()

	snapshot := cloneInstance(inst)
	go func() {
		defer cancel()
		solver := algo.NewSATSolver(opts)
		sol, err := solver.Solve(ctx, snapshot)

		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.running = false
		s.cancel = nil
		s.elapsed = time.Since(s.started)
		s.stats = solver.Stats()
		s.err = err
		s.result = sol
		s.mu.Unlock()
		if done != nil {
			done()
		}
	}()
}

// Stop cancels a running solve. Its outcome is still recorded.
func (s *SolveState) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *SolveState) recordIteration(gen uint64, e *algo.Encoding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.iterations = append(s.iterations, IterationInfo{
		Horizon:     e.Horizon,
		Delta:       e.Delta,
		Variables:   e.Index.Len(),
		Constraints: len(e.Constraints),
	})
}

// Running reports whether a solve is in progress.
func (s *SolveState) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// TakeResult returns the finished solution once and clears it.
func (s *SolveState) TakeResult() *core.Solution {
	s.mu.Lock()
	defer s.mu.Unlock()
	sol := s.result
	s.result = nil
	return sol
}

// Err returns the error of the last solve.
func (s *SolveState) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Iterations returns a copy of the iteration log of the last solve.
func (s *SolveState) Iterations() []IterationInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]IterationInfo, len(s.iterations))
	copy(out, s.iterations)
	return out
}

// Stats returns the solver counters and wall time of the last finished solve.
func (s *SolveState) Stats() (algo.Stats, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return s.stats, time.Since(s.started)
	}
	return s.stats, s.elapsed
}

func cloneInstance(inst *core.Instance) *core.Instance {
	out := &core.Instance{
		Name:   inst.Name,
		Grid:   make([][]bool, len(inst.Grid)),
		Starts: append([]core.Marker(nil), inst.Starts...),
		Goals:  append([]core.Marker(nil), inst.Goals...),
	}
	for i, row := range inst.Grid {
		out.Grid[i] = append([]bool(nil), row...)
	}
	return out
}
