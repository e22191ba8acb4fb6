// Command twolevel is a CLI for two-level morphological analysis: it
// recognizes surface forms, generates surface forms from lexical forms,
// and runs batch test suites against a grammar.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
