// Package sweep runs a preset many times while varying the probability of
// one of its rules, and averages the final populations.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"ca-modeler/internal/core"
	"ca-modeler/internal/presets"
	"ca-modeler/internal/session"
	"ca-modeler/internal/sims/rulebased"
	"ca-modeler/pkg/rng"
)

// ErrEmptyPlan is returned when there is nothing to run.
var ErrEmptyPlan = errors.New("sweep: no probabilities or seeds")

// Plan describes a sweep.
type Plan struct {
	Preset        string
	Rule          int
	Probabilities []float32
	Seeds         int
	Steps         int
	Width         int
	Height        int
	Neighborhood  core.Neighborhood
	Workers       int
}

func (p Plan) String() string {
	return fmt.Sprintf("preset=%s rule=%d probs=%d seeds=%d steps=%d grid=%dx%d",
		p.Preset, p.Rule, len(p.Probabilities), p.Seeds, p.Steps, p.Width, p.Height)
}

// Jobs reports how many scenarios the plan runs.
func (p Plan) Jobs() int { return len(p.Probabilities) * p.Seeds }

// Result is the mean final population per state for one probability.
type Result struct {
	Probability float32
	Runs        int
	Mean        map[string]float64
}

type job struct {
	prob float32
	seed int64
}

type scenarioResult struct {
	prob       float32
	population map[string]int
}

// Run executes the plan on a pool of workers. progress, when non-nil, is
// called once per finished scenario from the collecting goroutine. Results
// are ordered by probability.
func Run(ctx context.Context, plan Plan, progress func()) ([]Result, error) {
	m, ok := presets.Lookup(plan.Preset)
	if !ok {
		return nil, fmt.Errorf("%w: %q", session.ErrUnknownPreset, plan.Preset)
	}
	if plan.Rule < 0 || plan.Rule >= len(m.Rules) {
		return nil, fmt.Errorf("sweep: rule %d out of range (preset has %d)", plan.Rule, len(m.Rules))
	}
	if plan.Jobs() == 0 {
		return nil, ErrEmptyPlan
	}
	for _, p := range plan.Probabilities {
		r := m.Rules[plan.Rule]
		r.Probability = p
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("sweep: %w", err)
		}
	}
	workers := plan.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobs := make(chan job)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := runScenario(plan, j)
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, p := range plan.Probabilities {
			for s := 0; s < plan.Seeds; s++ {
				select {
				case jobs <- job{prob: p, seed: int64(s + 1)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	sums := map[float32]map[string]int{}
	runs := map[float32]int{}
	for res := range results {
		if sums[res.prob] == nil {
			sums[res.prob] = map[string]int{}
		}
		for name, n := range res.population {
			sums[res.prob][name] += n
		}
		runs[res.prob]++
		if progress != nil {
			progress()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(sums))
	for p, total := range sums {
		mean := make(map[string]float64, len(total))
		for name, n := range total {
			mean[name] = float64(n) / float64(runs[p])
		}
		out = append(out, Result{Probability: p, Runs: runs[p], Mean: mean})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Probability < out[j].Probability })
	return out, nil
}

func runScenario(plan Plan, j job) scenarioResult {
	// Lookup hands out a private copy, so each scenario can edit its rules.
	m, _ := presets.Lookup(plan.Preset)
	m.Rules[plan.Rule].Probability = j.prob
	reg := m.Registry()
	rules := m.Ruleset()

	r := rng.NewRNG(j.seed)
	g := core.NewRandomGrid(plan.Width, plan.Height, plan.Neighborhood, reg.Weights(), r)
	stepper := rulebased.New(rulebased.Options{ParallelThreshold: -1})
	for i := 0; i < plan.Steps; i++ {
		stepper.Step(g, rules, r)
	}

	pop := make(map[string]int, reg.Len())
	for _, st := range reg.States() {
		pop[st.Name] = 0
	}
	for id, n := range g.Census() {
		pop[reg.NameOf(id)] += n
	}
	return scenarioResult{prob: j.prob, population: pop}
}
