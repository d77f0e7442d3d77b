package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ca-modeler/internal/grammar"
	"ca-modeler/internal/presets"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List and export the built-in models",
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tTITLE\tSTATES\tRULES")
		for _, m := range presets.All() {
			marker := ""
			if m.Name == presets.Default {
				marker = " (default)"
			}
			fmt.Fprintf(tw, "%s%s\t%s\t%d\t%d\n", m.Name, marker, m.Title, len(m.States), len(m.Rules))
		}
		return tw.Flush()
	},
}

var presetsExportOut string

var presetsExportCmd = &cobra.Command{
	Use:   "export NAME",
	Short: "Write a built-in model as a rules file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, ok := presets.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown preset %q (have %v)", args[0], presets.Names())
		}
		w := cmd.OutOrStdout()
		if presetsExportOut != "" {
			f, err := os.Create(presetsExportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return grammar.Export(w, cfg.Grid.Width, cfg.Grid.Height, m.Registry(), m.Ruleset())
	},
}

func init() {
	presetsExportCmd.Flags().StringVarP(&presetsExportOut, "output", "o", "", "write to this file instead of stdout")
	presetsCmd.AddCommand(presetsListCmd, presetsExportCmd)
	rootCmd.AddCommand(presetsCmd)
}
