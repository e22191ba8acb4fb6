// Package twolevel implements a two-level morphological analysis and
// generation engine: a lexicon automaton of valid morpheme sequences run in
// lock-step with a set of phonological rule automata, each constraining the
// correspondence between an underlying (lexical) and a realized (surface)
// symbol stream. The engine is alphabet- and rule-set agnostic; grammars
// are compiled from declarative specs or loaded from YAML files.
package twolevel

import (
	"fmt"
	"sort"
)

// GrammarSpec is the declarative input to Compile: subsets and default
// correspondences, one RuleSpec per phonological rule, and the lexicon's
// states and entries. It can be built programmatically or loaded from a
// YAML grammar file with LoadGrammar.
type GrammarSpec struct {
	Name string
	// Null is the null symbol; DefaultNull when empty.
	Null Symbol
	// Subsets maps subset names to their member symbols.
	Subsets map[string][]Symbol
	// Defaults lists concrete pairs allowed without any rule mentioning
	// them, typically the identity correspondences of the alphabet.
	Defaults []Pair
	Rules    []RuleSpec
	// LexiconStart names the initial lexicon state. A grammar without
	// lexicon states supports generation only.
	LexiconStart  string
	LexiconStates []LexiconStateSpec
	Entries       []LexicalEntrySpec
}

// Grammar is an immutable compiled grammar: the subset table, the rule
// automata, the lexicon automaton and the feasible pair alphabet. It may
// be shared without synchronization by any number of concurrent searches.
type Grammar struct {
	name    string
	null    Symbol
	subsets *SubsetTable
	rules   []*Rule
	// lexicon is nil when the spec declared no lexicon states.
	lexicon *Lexicon
	// pairs is the feasible pair alphabet in sorted order: the declared
	// defaults plus every concrete literal pair some rule mentions.
	// Insertions and deletions are only ever attempted from this set.
	pairs []Pair
}

// Compile validates spec and builds the immutable Grammar bundle.
// All failures are CompileErrors; a compiled grammar never fails at
// search time.
func Compile(spec *GrammarSpec) (*Grammar, error) {
	g := &Grammar{name: spec.Name, null: spec.Null, subsets: NewSubsetTable()}
	if g.null == "" {
		g.null = DefaultNull
	}

	names := make([]string, 0, len(spec.Subsets))
	for name := range spec.Subsets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := g.subsets.Define(name, spec.Subsets[name]); err != nil {
			return nil, compileErrf("subsets", name, "%w", err)
		}
	}

	pairSet := make(map[Pair]bool)
	for _, p := range spec.Defaults {
		if g.subsets.Has(string(p.Lex)) || g.subsets.Has(string(p.Surf)) {
			return nil, compileErrf("defaults", "", "default %s contains a subset", p)
		}
		if p.Lex == g.null && p.Surf == g.null {
			return nil, compileErrf("defaults", "", "default %s is zero-width", p)
		}
		pairSet[p] = true
	}

	for _, rs := range spec.Rules {
		rule, err := CompileRule(rs, g.subsets)
		if err != nil {
			return nil, err
		}
		g.rules = append(g.rules, rule)
		for _, st := range rule.states {
			for _, tr := range st.trans {
				p := tr.pattern
				if p.lex.kind != matchLiteral || p.surf.kind != matchLiteral {
					continue
				}
				pr := Pair{Lex: p.lex.lit, Surf: p.surf.lit}
				if pr.Lex == g.null && pr.Surf == g.null {
					continue
				}
				pairSet[pr] = true
			}
		}
	}

	g.pairs = make([]Pair, 0, len(pairSet))
	for p := range pairSet {
		g.pairs = append(g.pairs, p)
	}
	sort.Slice(g.pairs, func(i, j int) bool {
		if g.pairs[i].Lex != g.pairs[j].Lex {
			return g.pairs[i].Lex < g.pairs[j].Lex
		}
		return g.pairs[i].Surf < g.pairs[j].Surf
	})

	if len(spec.LexiconStates) > 0 {
		start := spec.LexiconStart
		if start == "" {
			return nil, compileErrf("lexicon", "", "lexicon states declared but no start state named")
		}
		lx, err := CompileLexicon(start, spec.LexiconStates, spec.Entries)
		if err != nil {
			return nil, err
		}
		g.lexicon = lx
	} else if len(spec.Entries) > 0 {
		return nil, compileErrf("lexicon", "", "entries declared without lexicon states")
	}

	return g, nil
}

// Name returns the grammar's declared name.
func (g *Grammar) Name() string { return g.name }

// Null returns the grammar's null symbol.
func (g *Grammar) Null() Symbol { return g.null }

// Subsets returns the grammar's read-only subset table.
func (g *Grammar) Subsets() *SubsetTable { return g.subsets }

// RuleNames returns the rule names in compilation order.
func (g *Grammar) RuleNames() []string {
	names := make([]string, len(g.rules))
	for i, r := range g.rules {
		names[i] = r.Name()
	}
	return names
}

// Pairs returns a copy of the feasible pair alphabet.
func (g *Grammar) Pairs() []Pair {
	out := make([]Pair, len(g.pairs))
	copy(out, g.pairs)
	return out
}

// HasLexicon reports whether the grammar carries a lexicon automaton and
// therefore supports recognition.
func (g *Grammar) HasLexicon() bool { return g.lexicon != nil }

// initialRuleStates returns a fresh state vector positioned at every
// rule's initial state.
func (g *Grammar) initialRuleStates() []int {
	states := make([]int, len(g.rules))
	for i, r := range g.rules {
		states[i] = r.Start()
	}
	return states
}

// stepAll is the pure lock-step advance: it applies pr to every rule
// automaton independently and reports the next state vector, or reject
// when any rule has no viable continuation.
func (g *Grammar) stepAll(states []int, pr Pair) ([]int, bool) {
	next := make([]int, len(states))
	for i, r := range g.rules {
		n := r.step(states[i], pr, g.null)
		if n == rejectSink {
			return nil, false
		}
		next[i] = n
	}
	return next, true
}

// rulesFinal reports whether every rule could legally terminate here.
func (g *Grammar) rulesFinal(states []int) bool {
	for i, r := range g.rules {
		if !r.Final(states[i]) {
			return false
		}
	}
	return true
}

// New loads a YAML grammar file from path, compiles it, and returns a
// ready-to-use Engine.
func New(path string, opts ...Option) (*Engine, error) {
	spec, err := LoadGrammar(path)
	if err != nil {
		return nil, err
	}
	g, err := Compile(spec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewEngine(g, opts...), nil
}
