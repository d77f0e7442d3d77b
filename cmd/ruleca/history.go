package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ca-modeler/internal/persistence"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [RUN_ID]",
	Short: "List recorded runs, or print the census of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.History.DB == "" {
			return errors.New("no history database configured (use --history or history.db)")
		}
		h, err := persistence.OpenHistory(cfg.History.DB)
		if err != nil {
			return err
		}
		defer h.Close()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer tw.Flush()
		if len(args) == 1 {
			rows, err := h.Census(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "GENERATION\tSTATE\tCELLS")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%d\n", r.Generation, r.State, r.Cells)
			}
			return nil
		}

		runs, err := h.Runs(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tMODEL\tGRID\tNEIGHBORHOOD\tSEED\tSTARTED\tGENERATIONS")
		for _, r := range runs {
			gens := "running"
			if !r.FinishedAt.IsZero() {
				gens = fmt.Sprint(r.Generations)
			}
			fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\t%d\t%s\t%s\n",
				r.ID, r.Model, r.Width, r.Height, r.Neighborhood, r.Seed,
				r.StartedAt.Local().Format(time.DateTime), gens)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "runs to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
