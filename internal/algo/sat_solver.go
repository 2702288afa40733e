package algo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// DefaultMaxDelta bounds the cost slack explored before giving up.
const DefaultMaxDelta = 64

// SATOptions configures SATSolver.
type SATOptions struct {
	Mode             core.MatchMode
	MaxDelta         int           // Largest slack tried
	MaxCutoff        int           // Ceiling of the heuristic cutoff scan
	Timeout          time.Duration // Whole solve, 0 = none
	IterationTimeout time.Duration // One encode + oracle call, 0 = none
	Limits           Limits
	Parallelism      int    // MDD builders, 0 = unlimited
	Oracle           Oracle // Defaults to GopherSAT

	// OnEncode, if set, is called with every encoding before it is solved.
	OnEncode func(*Encoding)
}

// DefaultSATOptions returns the options used when none are given.
func DefaultSATOptions() SATOptions {
	return SATOptions{
		Mode:      core.InMatch,
		MaxDelta:  DefaultMaxDelta,
		MaxCutoff: DefaultMaxCutoff,
	}
}

// Stats counts the work of the last Solve call.
type Stats struct {
	Iterations      int
	OracleCalls     int
	LastVars        int
	LastConstraints int
}

// SATSolver solves colored MAPF by iterative deepening over SAT encodings.
// A SATSolver must not run Solve concurrently.
type SATSolver struct {
	opts  SATOptions
	stats Stats
}

// NewSATSolver creates a solver. Zero limits take their defaults.
func NewSATSolver(opts SATOptions) *SATSolver {
	if opts.MaxDelta <= 0 {
		opts.MaxDelta = DefaultMaxDelta
	}
	if opts.MaxCutoff <= 0 {
		opts.MaxCutoff = DefaultMaxCutoff
	}
	if opts.Oracle == nil {
		opts.Oracle = GopherSAT{}
	}
	return &SATSolver{opts: opts}
}

// Name implements Solver.
func (s *SATSolver) Name() string {
	if s.opts.Mode == core.PreMatch {
		return "SAT-MAPFM-Prematch"
	}
	return "SAT-MAPFM-Inmatch"
}

// Stats returns counters of the last Solve call.
func (s *SATSolver) Stats() Stats { return s.stats }

// SearchState is one point of the deepening loop. It is a value: advancing
// produces a new state and leaves the old one untouched.
type SearchState struct {
	Graph     *core.Graph
	Agents    []core.Agent
	Requests  []MDDRequest
	Heuristic *Heuristic
	MDDs      []*MDD
	Base      int // Horizon at delta 0
	Horizon   int
	Delta     int
}

// Bound returns the sum-of-costs bound of the state.
func (st SearchState) Bound() int {
	return st.Heuristic.Sum + st.Delta
}

// next grows delta by one. The horizon is always Base + Delta, so every
// step rebuilds the diagrams, seeded by the current ones.
func (st SearchState) next(ctx context.Context, parallelism int) (SearchState, error) {
	nxt := st
	nxt.Delta = st.Delta + 1
	nxt.Horizon = st.Base + nxt.Delta
	mdds, err := BuildMDDs(ctx, st.Graph, st.Requests, nxt.Horizon, st.MDDs, parallelism)
	if err != nil {
		return st, err
	}
	nxt.MDDs = mdds
	return nxt, nil
}

// Solve implements Solver.
func (s *SATSolver) Solve(ctx context.Context, inst *core.Instance) (*core.Solution, error) {
	s.stats = Stats{}
	mode := s.opts.Mode.String()

	ctx, span := tracer.Start(ctx, "sat.Solve",
		trace.WithAttributes(
			attribute.String("mode", mode),
			attribute.Int("agents", len(inst.Starts)),
		),
	)
	defer span.End()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	sol, err := s.solve(ctx, inst)
	outcome := "solved"
	switch {
	case errors.Is(err, core.ErrTimedOut):
		outcome = "timeout"
	case err != nil:
		outcome = "failed"
	}
	solveDuration.WithLabelValues(mode, outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	solveDelta.WithLabelValues(mode).Observe(float64(sol.Delta))
	span.SetAttributes(
		attribute.Int("horizon", sol.Horizon),
		attribute.Int("delta", sol.Delta),
		attribute.Int("cost", sol.Cost),
	)
	return sol, nil
}

func (s *SATSolver) solve(ctx context.Context, inst *core.Instance) (*core.Solution, error) {
	st, err := s.initState(ctx, inst)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, core.ErrTimedOut) {
			return nil, fmt.Errorf("%w: %w", core.ErrTimedOut, err)
		}
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: at horizon %d delta %d: %w", core.ErrTimedOut, st.Horizon, st.Delta, err)
		}
		s.stats.Iterations++

		if !AllFeasible(st.MDDs) {
			glog.V(1).Infof("%s horizon=%d delta=%d: diagrams infeasible", s.Name(), st.Horizon, st.Delta)
		} else {
			paths, err := s.iterate(ctx, st)
			if err != nil {
				return nil, err
			}
			if paths != nil {
				return s.solution(st, paths), nil
			}
		}

		if st.Delta >= s.opts.MaxDelta {
			return nil, fmt.Errorf("%w: no plan within delta %d (horizon %d)", core.ErrUnreachableGoal, s.opts.MaxDelta, st.Horizon)
		}
		st, err = st.next(ctx, s.opts.Parallelism)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", core.ErrTimedOut, err)
			}
			return nil, err
		}
	}
}

// initState computes the heuristic and the first diagrams.
func (s *SATSolver) initState(ctx context.Context, inst *core.Instance) (SearchState, error) {
	g, err := inst.Validate()
	if err != nil {
		return SearchState{}, err
	}
	teams, agents := core.BuildTeams(g, inst)

	h, err := BuildHeuristic(teams, NewDistanceTable(g), s.opts.MaxCutoff)
	if err != nil {
		return SearchState{}, err
	}

	teamGoals := make(map[core.Color][]core.VertexID, len(teams))
	for _, t := range teams {
		teamGoals[t.Color] = t.Goals
	}
	reqs := make([]MDDRequest, len(agents))
	for i := range agents {
		req := MDDRequest{Agent: agents[i].ID, Start: agents[i].Start, Goals: teamGoals[agents[i].Color]}
		if s.opts.Mode == core.PreMatch {
			agents[i].Goal = h.Goal(agents[i].ID)
			req.Goals = []core.VertexID{agents[i].Goal}
		}
		reqs[i] = req
	}

	mdds, err := BuildMDDs(ctx, g, reqs, h.Horizon, nil, s.opts.Parallelism)
	if err != nil {
		return SearchState{}, err
	}
	glog.V(1).Infof("%s: %d agents, %d teams, heuristic cost %d, base horizon %d",
		s.Name(), len(agents), len(teams), h.Sum, h.Horizon)

	return SearchState{
		Graph:     g,
		Agents:    agents,
		Requests:  reqs,
		Heuristic: h,
		MDDs:      mdds,
		Base:      h.Horizon,
		Horizon:   h.Horizon,
		Delta:     0,
	}, nil
}

// iterate encodes st and calls the oracle. It returns nil paths on UNSAT.
func (s *SATSolver) iterate(ctx context.Context, st SearchState) ([]core.Path, error) {
	ctx, span := tracer.Start(ctx, "sat.Iteration",
		trace.WithAttributes(
			attribute.Int("horizon", st.Horizon),
			attribute.Int("delta", st.Delta),
		),
	)
	defer span.End()

	if s.opts.IterationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.IterationTimeout)
		defer cancel()
	}
	started := time.Now()

	_, encSpan := tracer.Start(ctx, "sat.Encode")
	enc, err := Encode(EncodeParams{
		Agents:         st.Agents,
		MDDs:           st.MDDs,
		Horizon:        st.Horizon,
		HeuristicSum:   st.Heuristic.Sum,
		AgentHeuristic: st.Heuristic.AgentDists(),
		Delta:          st.Delta,
		Mode:           s.opts.Mode,
		Limits:         s.opts.Limits,
	})
	encSpan.End()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.stats.LastVars = enc.Index.Len()
	s.stats.LastConstraints = len(enc.Constraints)
	encodingVariables.Observe(float64(s.stats.LastVars))
	encodingConstraints.Observe(float64(s.stats.LastConstraints))
	if s.opts.OnEncode != nil {
		s.opts.OnEncode(enc)
	}

	mode := s.opts.Mode.String()
	oracleCtx, oracleSpan := tracer.Start(ctx, "sat.Oracle")
	oracleStart := time.Now()
	s.stats.OracleCalls++
	res, err := s.opts.Oracle.Solve(oracleCtx, enc.Problem())
	oracleDuration.WithLabelValues(mode).Observe(time.Since(oracleStart).Seconds())
	oracleSpan.End()
	if err != nil {
		oracleCalls.WithLabelValues(mode, "timeout").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("horizon %d delta %d: %w", st.Horizon, st.Delta, err)
	}

	result := "unsat"
	if res.Sat {
		result = "sat"
	}
	oracleCalls.WithLabelValues(mode, result).Inc()
	glog.V(1).Infof("%s horizon=%d delta=%d vars=%d constraints=%d %s in %v",
		s.Name(), st.Horizon, st.Delta, s.stats.LastVars, s.stats.LastConstraints, result, time.Since(started))

	if !res.Sat {
		return nil, nil
	}
	paths, err := Decode(enc, res.Model)
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *SATSolver) solution(st SearchState, paths []core.Path) *core.Solution {
	sol := core.NewSolution(len(paths))
	copy(sol.Paths, paths)
	sol.Horizon = st.Horizon
	sol.Delta = st.Delta
	sol.Cost = RealizedCost(paths)
	sol.Feasible = true

	if sol.Cost > st.Bound() {
		glog.Warningf("%s: realized cost %d exceeds bound %d at horizon %d", s.Name(), sol.Cost, st.Bound(), st.Horizon)
	} else if glog.V(1) {
		glog.Infof("%s: cost %d (bound %d), horizon %d, delta %d", s.Name(), sol.Cost, st.Bound(), st.Horizon, st.Delta)
	}
	return sol
}
