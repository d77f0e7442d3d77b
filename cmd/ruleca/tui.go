package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ca-modeler/internal/tui"
)

var tuiGridIn string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Watch and paint a model in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		if err := loadGrid(sess, tuiGridIn); err != nil {
			return err
		}
		return tui.Run(sess, cfg.Simulation.Seed, tea.WithAltScreen())
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiGridIn, "grid-in", "", "start from this grid file")
	rootCmd.AddCommand(tuiCmd)
}
