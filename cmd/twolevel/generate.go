package main

import (
	"fmt"

	"github.com/spf13/cobra"

	twolevel "github.com/cours-de-latin/twolevel"
)

var generateCmd = &cobra.Command{
	Use:   "generate <lexical>...",
	Short: "Realize lexical forms as surface forms",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		for _, lexical := range args {
			surfaces, err := eng.Generate(cmd.Context(), twolevel.Symbols(lexical))
			if err != nil {
				return fmt.Errorf("generate %q: %w", lexical, err)
			}
			if len(surfaces) == 0 {
				fmt.Printf("%s\t*no realization*\n", lexical)
				continue
			}
			for _, s := range surfaces {
				fmt.Printf("%s\t%s\n", lexical, s)
			}
		}
		return nil
	},
}
