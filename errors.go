package twolevel

import (
	"errors"
	"fmt"
)

// ErrUndefinedSubset reports a rule or default referring to a subset name
// that was never declared.
var ErrUndefinedSubset = errors.New("undefined subset")

// ErrNoLexicon reports a recognition request against a grammar compiled
// without lexicon states.
var ErrNoLexicon = errors.New("grammar has no lexicon")

// ErrSearchBudget reports that a search ran out of its step budget before
// the candidate space was exhausted. The caller may retry with a larger
// budget; partial results are discarded.
var ErrSearchBudget = errors.New("search budget exceeded")

// CompileError reports a malformed rule or lexicon definition. Compile
// errors are fatal at load time and are never produced during a search.
type CompileError struct {
	// Component is the part of the grammar that failed, e.g. "rule",
	// "lexicon" or "defaults".
	Component string
	// Name is the rule name or lexicon state the error refers to
	// (may be empty for grammar-wide problems).
	Name string
	Err  error
}

func (e *CompileError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("compile %s: %v", e.Component, e.Err)
	}
	return fmt.Sprintf("compile %s %q: %v", e.Component, e.Name, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// compileErrf builds a CompileError with a formatted cause. %w works.
func compileErrf(component, name, format string, args ...any) error {
	return &CompileError{Component: component, Name: name, Err: fmt.Errorf(format, args...)}
}
