package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ca-modeler/internal/core"
	"ca-modeler/internal/sweep"
)

var sweepOpts struct {
	rule  int
	probs []float32
	seeds int
	steps int
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a preset repeatedly while varying one rule's probability",
	Example: `  ruleca sweep --preset forestfire --rule 0 --probs 0.1,0.3,0.5 --seeds 8 --steps 200`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		nb, err := core.ParseNeighborhood(cfg.Grid.Neighborhood)
		if err != nil {
			return err
		}
		plan := sweep.Plan{
			Preset:        cfg.Simulation.Preset,
			Rule:          sweepOpts.rule,
			Probabilities: sweepOpts.probs,
			Seeds:         sweepOpts.seeds,
			Steps:         sweepOpts.steps,
			Width:         cfg.Grid.Width,
			Height:        cfg.Grid.Height,
			Neighborhood:  nb,
			Workers:       cfg.Simulation.Workers,
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Sweeping %s\n", plan)
		bar := progressbar.Default(int64(plan.Jobs()), "scenarios")
		start := time.Now()
		results, err := sweep.Run(ctx, plan, func() { _ = bar.Add(1) })
		_ = bar.Finish()
		if err != nil {
			return err
		}
		printSweep(cmd, results, time.Since(start))
		return nil
	},
}

func printSweep(cmd *cobra.Command, results []sweep.Result, elapsed time.Duration) {
	names := map[string]bool{}
	for _, r := range results {
		for name := range r.Mean {
			names[name] = true
		}
	}
	cols := make([]string, 0, len(names))
	for name := range names {
		cols = append(cols, name)
	}
	sort.Strings(cols)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "PROB\tRUNS\t%s\t\n", strings.Join(cols, "\t"))
	for _, r := range results {
		fmt.Fprintf(tw, "%.3f\t%d", r.Probability, r.Runs)
		for _, name := range cols {
			fmt.Fprintf(tw, "\t%.1f", r.Mean[name])
		}
		fmt.Fprintln(tw, "\t")
	}
	_ = tw.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "\nelapsed %s\n", elapsed.Round(time.Millisecond))
}

func init() {
	f := sweepCmd.Flags()
	f.IntVar(&sweepOpts.rule, "rule", 0, "index of the rule whose probability varies")
	f.Float32SliceVar(&sweepOpts.probs, "probs", []float32{0, 0.25, 0.5, 0.75, 1}, "probabilities to try")
	f.IntVar(&sweepOpts.seeds, "seeds", 4, "runs per probability")
	f.IntVar(&sweepOpts.steps, "steps", 100, "generations per run")
	rootCmd.AddCommand(sweepCmd)
}
