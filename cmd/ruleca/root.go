package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ca-modeler/internal/config"
	"ca-modeler/internal/core"
	"ca-modeler/internal/persistence"
	"ca-modeler/internal/session"
)

var (
	cfgFile string
	v       = config.NewViper()
	cfg     = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "ruleca",
	Short: "Rule-based cellular automaton modeler",
	Long: `ruleca builds cellular automata from named states and IF/THEN
transition rules, runs them headlessly or interactively, and exports the
models as plain text rule files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.Int("width", cfg.Grid.Width, "grid width")
	pf.Int("height", cfg.Grid.Height, "grid height")
	pf.String("neighborhood", cfg.Grid.Neighborhood, "VonNeumann, Moore or ExtendedMoore")
	pf.String("preset", cfg.Simulation.Preset, "built-in model")
	pf.String("rules", "", "rules file to import instead of a preset")
	pf.Int64("seed", 0, "random seed (0 picks one)")
	pf.Int("workers", 0, "parallel stepping workers (0 uses all CPUs)")
	pf.Int("parallel-threshold", cfg.Simulation.ParallelThreshold, "cell count above which stepping runs in parallel; negative disables")
	pf.String("history", "", "SQLite database of recorded runs")
	pf.Int("scale", cfg.Render.Scale, "PNG pixels per cell")
	pf.String("log-level", cfg.Log.Level, "debug, info, warn or error")
	pf.String("log-format", cfg.Log.Format, "text or json")

	bind := map[string]string{
		"grid.width":                    "width",
		"grid.height":                   "height",
		"grid.neighborhood":             "neighborhood",
		"simulation.preset":             "preset",
		"simulation.rules":              "rules",
		"simulation.seed":               "seed",
		"simulation.workers":            "workers",
		"simulation.parallel_threshold": "parallel-threshold",
		"history.db":                    "history",
		"render.scale":                  "scale",
		"log.level":                     "log-level",
		"log.format":                    "log-format",
	}
	for key, flag := range bind {
		cobra.CheckErr(v.BindPFlag(key, pf.Lookup(flag)))
	}
}

func initConfig() error {
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.Apply(v); err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	core.SetLogger(logger)
	return nil
}

// openSession builds the session described by the merged configuration,
// importing the rules file when one is configured.
func openSession() (*session.Session, error) {
	sess, err := session.New(cfg.SessionConfig())
	if err != nil {
		return nil, err
	}
	if path := cfg.Simulation.Rules; path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		dropped, err := sess.Import(f)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
		for _, d := range dropped {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, d)
		}
	}
	return sess, nil
}

// loadGrid replaces the session grid with the contents of path.
func loadGrid(sess *session.Session, path string) error {
	if path == "" {
		return nil
	}
	g, err := persistence.LoadGrid(path)
	if err != nil {
		return err
	}
	sess.ReplaceGrid(g)
	return nil
}
