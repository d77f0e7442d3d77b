package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ca-modeler/internal/grammar"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and normalize rule files",
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Report lines that fail to parse",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bad := 0
		for _, path := range args {
			doc, err := importFile(path)
			if err != nil {
				return err
			}
			for _, d := range doc.Dropped {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%v\n", path, d)
			}
			bad += len(doc.Dropped)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d states, %d rules, %d problems\n",
				path, doc.Registry.Len(), doc.Rules.Len(), len(doc.Dropped))
		}
		if bad > 0 {
			return fmt.Errorf("%d problems", bad)
		}
		return nil
	},
}

var rulesFmtWrite bool

var rulesFmtCmd = &cobra.Command{
	Use:   "fmt FILE",
	Short: "Rewrite a rule file in canonical form",
	Long: `fmt parses FILE and prints it back in canonical form: normalized
combiners, explicit probabilities and one state per line. Lines that fail
to parse are dropped and reported on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		doc, err := importFile(path)
		if err != nil {
			return err
		}
		for _, d := range doc.Dropped {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s:%v\n", path, d)
		}
		w, h := doc.Width, doc.Height
		if !doc.HasSize {
			w, h = cfg.Grid.Width, cfg.Grid.Height
		}
		if !rulesFmtWrite {
			return grammar.Export(cmd.OutOrStdout(), w, h, doc.Registry, doc.Rules)
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := grammar.Export(f, w, h, doc.Registry, doc.Rules); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

func importFile(path string) (*grammar.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return grammar.Import(f)
}

func init() {
	rulesFmtCmd.Flags().BoolVarP(&rulesFmtWrite, "write", "w", false, "rewrite the file in place")
	rulesCmd.AddCommand(rulesCheckCmd, rulesFmtCmd)
	rootCmd.AddCommand(rulesCmd)
}
