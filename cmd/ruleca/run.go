package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ca-modeler/internal/batch"
	"ca-modeler/internal/persistence"
	"ca-modeler/internal/stopcond"
)

var runOpts struct {
	steps       int
	until       string
	gridIn      string
	gridOut     string
	png         string
	recordEvery int
	quiet       bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a model headlessly and report the final census",
	Example: `  ruleca run --preset forestfire --steps 500 --until 'population["Burning"] == 0'
  ruleca run --rules my.rules --steps 100 --grid-out end.json.zst --png end.png`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		sess, err := openSession()
		if err != nil {
			return err
		}
		if err := loadGrid(sess, runOpts.gridIn); err != nil {
			return err
		}

		opts := batch.Options{
			Steps:       runOpts.steps,
			RecordEvery: runOpts.recordEvery,
			Seed:        cfg.Simulation.Seed,
		}
		if runOpts.until != "" {
			cond, err := stopcond.Compile(runOpts.until)
			if err != nil {
				return err
			}
			opts.Until = cond
		}
		if cfg.History.DB != "" {
			h, err := persistence.OpenHistory(cfg.History.DB)
			if err != nil {
				return err
			}
			defer h.Close()
			opts.History = h
		}
		if !runOpts.quiet {
			bar := progressbar.Default(int64(runOpts.steps), "generations")
			opts.OnStep = func(int) { _ = bar.Add(1) }
			defer bar.Finish()
		}

		res, err := batch.Run(ctx, sess, opts)
		if err != nil {
			return err
		}

		if runOpts.gridOut != "" {
			if err := persistence.SaveGrid(runOpts.gridOut, sess.Grid()); err != nil {
				return err
			}
		}
		if runOpts.png != "" {
			if err := writePNGFile(runOpts.png, sess, cfg.Render.Scale); err != nil {
				return err
			}
		}
		printResult(cmd, sess.Name(), res)
		return nil
	},
}

func printResult(cmd *cobra.Command, model string, res batch.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d generations (stopped by %s)\n", model, res.Generations, res.StoppedBy)
	if res.RunID != "" {
		fmt.Fprintf(out, "run id: %s\n", res.RunID)
	}
	names := make([]string, 0, len(res.Population))
	for name := range res.Population {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-16s %d\n", name, res.Population[name])
	}
}

func init() {
	f := runCmd.Flags()
	f.IntVar(&runOpts.steps, "steps", 100, "maximum generations to run")
	f.StringVar(&runOpts.until, "until", "", "CEL stop condition over generation, cells, changed, population and share")
	f.StringVar(&runOpts.gridIn, "grid-in", "", "start from this grid file instead of a random fill")
	f.StringVar(&runOpts.gridOut, "grid-out", "", "write the final grid (.json or .json.zst)")
	f.StringVar(&runOpts.png, "png", "", "render the final grid to a PNG")
	f.IntVar(&runOpts.recordEvery, "record-every", 1, "census sampling period in generations")
	f.BoolVar(&runOpts.quiet, "quiet", false, "hide the progress bar")
	rootCmd.AddCommand(runCmd)
}
