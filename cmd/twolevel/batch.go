package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	twolevel "github.com/cours-de-latin/twolevel"
)

// Batch files hold one expectation per line:
//
//	lexicals => surfaces     generating each lexical yields exactly surfaces
//	lexicals <= surfaces     recognizing each surface yields exactly lexicals
//	lexicals <=> surfaces    both directions
//
// Either side is a comma-separated list; the word None stands for the
// empty set. Text after ';' is a comment.
var batchCmd = &cobra.Command{
	Use:   "batch <testfile>...",
	Short: "Run batch test suites against the grammar",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		failures := 0
		for _, path := range args {
			n, err := runBatchFile(cmd, eng, path)
			if err != nil {
				return err
			}
			failures += n
		}
		if failures > 0 {
			return fmt.Errorf("%d batch expectation(s) failed", failures)
		}
		return nil
	},
}

func runBatchFile(cmd *cobra.Command, eng *twolevel.Engine, path string) (failures int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lexicals, surfaces, op, err := splitExpectation(line)
		if err != nil {
			return failures, fmt.Errorf("%s:%d: %w", path, lineno, err)
		}

		if op == "=>" || op == "<=>" {
			for _, lex := range lexicals {
				got, err := eng.Generate(cmd.Context(), twolevel.Symbols(lex))
				if err != nil {
					return failures, fmt.Errorf("%s:%d: generate %q: %w", path, lineno, lex, err)
				}
				if !sameSet(got, surfaces) {
					failures++
					fmt.Printf("FAIL %s:%d: %s => %s, got %s\n",
						path, lineno, lex, renderSet(surfaces), renderSet(got))
				}
			}
		}
		if op == "<=" || op == "<=>" {
			for _, surf := range surfaces {
				analyses, err := eng.Recognize(cmd.Context(), twolevel.Symbols(surf))
				if err != nil {
					return failures, fmt.Errorf("%s:%d: recognize %q: %w", path, lineno, surf, err)
				}
				got := make([]string, 0, len(analyses))
				for _, a := range analyses {
					got = append(got, a.Lexical)
				}
				if !sameSet(got, lexicals) {
					failures++
					fmt.Printf("FAIL %s:%d: %s <= %s, got %s\n",
						path, lineno, renderSet(lexicals), surf, renderSet(got))
				}
			}
		}
	}
	return failures, sc.Err()
}

// splitExpectation breaks a batch line into its lexical side, surface side
// and operator. Longest operator first, so "<=>" is not read as "<=".
func splitExpectation(line string) (lexicals, surfaces []string, op string, err error) {
	for _, cand := range []string{"<=>", "=>", "<="} {
		if l, r, found := strings.Cut(line, cand); found {
			return splitForms(l), splitForms(r), cand, nil
		}
	}
	return nil, nil, "", fmt.Errorf("no operator in %q (want =>, <= or <=>)", line)
}

// splitForms parses a comma-separated list of forms; "None" is the empty
// set.
func splitForms(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return nil
	}
	var forms []string
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			forms = append(forms, tok)
		}
	}
	return forms
}

func sameSet(a, b []string) bool {
	a, b = append([]string(nil), a...), append([]string(nil), b...)
	sort.Strings(a)
	sort.Strings(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func renderSet(forms []string) string {
	if len(forms) == 0 {
		return "None"
	}
	return strings.Join(forms, ", ")
}
