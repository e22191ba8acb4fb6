package main

import (
	"fmt"

	"github.com/spf13/cobra"

	twolevel "github.com/cours-de-latin/twolevel"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <surface>...",
	Short: "Analyze surface forms into lexical forms",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		for _, surface := range args {
			analyses, err := eng.Recognize(cmd.Context(), twolevel.Symbols(surface))
			if err != nil {
				return fmt.Errorf("recognize %q: %w", surface, err)
			}
			if len(analyses) == 0 {
				fmt.Printf("%s\t*no analysis*\n", surface)
				continue
			}
			for _, a := range analyses {
				fmt.Printf("%s\t%s\t%s\n", surface, a.Lexical, a.Annotation)
			}
		}
		return nil
	},
}
