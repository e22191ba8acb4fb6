package main

import (
	"github.com/spf13/cobra"

	twolevel "github.com/cours-de-latin/twolevel"
)

var (
	grammarPath string
	stepBudget  int
)

var rootCmd = &cobra.Command{
	Use:           "twolevel",
	Short:         "Two-level morphological analyzer and generator",
	Long:          "twolevel recognizes and generates word forms with a two-level grammar:\na set of parallel phonological rule automata plus a morpheme lexicon.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&grammarPath, "grammar", "g", "grammar.yaml", "path to the YAML grammar file")
	rootCmd.PersistentFlags().IntVar(&stepBudget, "budget", twolevel.DefaultStepBudget, "search step budget per query")

	rootCmd.AddCommand(recognizeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(batchCmd)
}

// loadEngine builds an engine from the persistent flags.
func loadEngine() (*twolevel.Engine, error) {
	return twolevel.New(grammarPath, twolevel.WithStepBudget(stepBudget))
}
