package main

import (
	"os"

	"github.com/spf13/cobra"

	"ca-modeler/internal/render"
	"ca-modeler/internal/session"
)

var renderOpts struct {
	gridIn string
	steps  int
}

var renderCmd = &cobra.Command{
	Use:   "render OUT.png",
	Short: "Render a grid to a PNG using the model's state colours",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		if err := loadGrid(sess, renderOpts.gridIn); err != nil {
			return err
		}
		for i := 0; i < renderOpts.steps; i++ {
			sess.Step()
		}
		return writePNGFile(args[0], sess, cfg.Render.Scale)
	},
}

func writePNGFile(path string, sess *session.Session, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.WritePNG(f, sess.Grid(), render.NewPalette(sess.States()), scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	renderCmd.Flags().StringVar(&renderOpts.gridIn, "grid-in", "", "grid file to render instead of a random fill")
	renderCmd.Flags().IntVar(&renderOpts.steps, "steps", 0, "generations to run before rendering")
	rootCmd.AddCommand(renderCmd)
}
