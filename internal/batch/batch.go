// Package batch runs a session headlessly for a bounded number of
// generations, optionally stopping early and recording census history.
package batch

import (
	"context"
	"errors"

	"ca-modeler/internal/core"
	"ca-modeler/internal/persistence"
	"ca-modeler/internal/session"
	"ca-modeler/internal/stopcond"
)

// Reasons a run ends.
const (
	StoppedSteps     = "steps"
	StoppedCondition = "condition"
	StoppedCancelled = "cancelled"
)

// ErrNoSteps is returned when Steps is not positive.
var ErrNoSteps = errors.New("steps must be positive")

// Options controls a batch run.
type Options struct {
	Steps int
	Until *stopcond.Condition

	// History, when set, receives the census every RecordEvery generations
	// (and at the first and last generation). RecordEvery <= 0 means 1.
	History     *persistence.History
	RecordEvery int
	Seed        int64

	OnStep func(generation int)
}

// Result summarises a finished run.
type Result struct {
	RunID       string
	Generations int
	StoppedBy   string
	Population  map[string]int
}

// Run advances sess until Steps generations have run, Until holds or ctx is
// cancelled. The condition is checked before every generation, so a
// condition that already holds runs zero steps.
func Run(ctx context.Context, sess *session.Session, opts Options) (Result, error) {
	if opts.Steps <= 0 {
		return Result{}, ErrNoSteps
	}
	every := opts.RecordEvery
	if every <= 0 {
		every = 1
	}

	var res Result
	if opts.History != nil {
		size := sess.Size()
		id, err := opts.History.BeginRun(ctx, persistence.Run{
			Model:        sess.Name(),
			Width:        size.W,
			Height:       size.H,
			Neighborhood: sess.Grid().Neighborhood.String(),
			Seed:         opts.Seed,
		})
		if err != nil {
			return res, err
		}
		res.RunID = id
		if err := opts.History.RecordCensus(ctx, id, sess.Generation(), sess.Population()); err != nil {
			return res, err
		}
	}

	start := sess.Generation()
	res.StoppedBy = StoppedSteps
	for i := 0; i < opts.Steps; i++ {
		if err := ctx.Err(); err != nil {
			res.StoppedBy = StoppedCancelled
			break
		}
		if opts.Until != nil {
			met, err := opts.Until.Met(snapshot(sess))
			if err != nil {
				return res, err
			}
			if met {
				res.StoppedBy = StoppedCondition
				break
			}
		}
		sess.Step()
		gen := sess.Generation()
		if opts.History != nil && (gen-start)%every == 0 {
			if err := opts.History.RecordCensus(ctx, res.RunID, gen, sess.Population()); err != nil {
				return res, err
			}
		}
		if opts.OnStep != nil {
			opts.OnStep(gen)
		}
	}
	res.Generations = sess.Generation() - start
	res.Population = sess.Population()

	if opts.History != nil {
		// Context may already be cancelled; the closing rows still belong
		// to the run.
		fin := context.WithoutCancel(ctx)
		if res.Generations%every != 0 {
			if err := opts.History.RecordCensus(fin, res.RunID, sess.Generation(), res.Population); err != nil {
				return res, err
			}
		}
		if err := opts.History.FinishRun(fin, res.RunID, res.Generations); err != nil {
			return res, err
		}
	}
	core.Logger().Info("batch run finished",
		"model", sess.Name(), "generations", res.Generations, "stopped_by", res.StoppedBy)
	return res, nil
}

func snapshot(sess *session.Session) stopcond.Snapshot {
	size := sess.Size()
	return stopcond.Snapshot{
		Generation: sess.Generation(),
		Cells:      size.W * size.H,
		Changed:    sess.LastChanged(),
		Population: sess.Population(),
	}
}
