// Command ruleca runs, inspects and serves rule-based cellular automata.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
