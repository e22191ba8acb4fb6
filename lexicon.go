package twolevel

// LexiconStateKind distinguishes the two roles a named lexicon state plays.
type LexiconStateKind uint8

const (
	// ReadingState owns lexical entries; the search must consume at least
	// one entry's symbols before leaving it.
	ReadingState LexiconStateKind = iota
	// AlternationState fans out to its continuation class without
	// consuming input. Alternation states own no entries.
	AlternationState
)

// LexiconStateSpec declares one named lexicon state.
type LexiconStateSpec struct {
	Name string
	Kind LexiconStateKind
	// Final marks a state where a word may legally end.
	Final bool
	// Continuations is the ordered continuation class of an alternation
	// state: the successor states reachable by its zero-width fan-out.
	Continuations []string
}

// LexicalEntrySpec declares one morpheme: a literal symbol sequence owned
// by a reading state, an output annotation, and the state the lexicon
// moves to once the sequence has been read.
type LexicalEntrySpec struct {
	// State is the owning reading state.
	State string
	// Lexical is the entry's symbol sequence (one symbol per rune). It may
	// be empty for a pass-through entry that consumes nothing.
	Lexical string
	// Output is the annotation emitted when the entry completes,
	// e.g. "N(cat)" or "+PL".
	Output string
	// Continuation is the destination state.
	Continuation string
}

// lexArc completes an entry: a zero-width move that emits the entry's
// annotation and lands in its continuation state.
type lexArc struct {
	output string
	next   int
}

// lexNode is one node of the compiled lexicon automaton: either a named
// state or an interior trie node of an entry chain.
type lexNode struct {
	name  string
	final bool
	// next holds the symbol-consuming trie transitions.
	next map[Symbol]int
	// arcs holds entry completions available at this node.
	arcs []lexArc
	// eps holds the zero-width alternation fan-out.
	eps []int
}

// Lexicon is the compiled lexicon automaton. Entries are folded into
// per-state tries at compile time and the structure is immutable afterwards.
type Lexicon struct {
	nodes []lexNode
	start int
}

// Start returns the initial node index.
func (lx *Lexicon) Start() int { return lx.start }

// Final reports whether a word may legally end at node n.
func (lx *Lexicon) Final(n int) bool { return lx.nodes[n].final }

// read returns the trie successor of n over sym, if any.
func (lx *Lexicon) read(n int, sym Symbol) (int, bool) {
	next, ok := lx.nodes[n].next[sym]
	return next, ok
}

// CompileLexicon folds states and entries into a lexicon automaton rooted
// at the state named start. It rejects dangling state references, entries
// owned by alternation states, and zero-width cycles (alternation links or
// empty entries that loop without passing a symbol-consuming transition).
func CompileLexicon(start string, states []LexiconStateSpec, entries []LexicalEntrySpec) (*Lexicon, error) {
	lx := &Lexicon{}
	index := make(map[string]int, len(states))
	kinds := make(map[string]LexiconStateKind, len(states))

	for _, st := range states {
		if st.Name == "" {
			return nil, compileErrf("lexicon", "", "state with empty name")
		}
		if _, dup := index[st.Name]; dup {
			return nil, compileErrf("lexicon", st.Name, "state declared twice")
		}
		index[st.Name] = len(lx.nodes)
		kinds[st.Name] = st.Kind
		lx.nodes = append(lx.nodes, lexNode{
			name:  st.Name,
			final: st.Final,
			next:  make(map[Symbol]int),
		})
	}

	startIdx, ok := index[start]
	if !ok {
		return nil, compileErrf("lexicon", start, "start state not declared")
	}
	lx.start = startIdx

	for _, st := range states {
		if st.Kind != AlternationState {
			if len(st.Continuations) > 0 {
				return nil, compileErrf("lexicon", st.Name, "reading state carries a continuation class")
			}
			continue
		}
		node := index[st.Name]
		if len(st.Continuations) == 0 {
			return nil, compileErrf("lexicon", st.Name, "alternation state has an empty continuation class")
		}
		for _, cont := range st.Continuations {
			to, ok := index[cont]
			if !ok {
				return nil, compileErrf("lexicon", st.Name, "continuation to undeclared state %q", cont)
			}
			lx.nodes[node].eps = append(lx.nodes[node].eps, to)
		}
	}

	for _, e := range entries {
		owner, ok := index[e.State]
		if !ok {
			return nil, compileErrf("lexicon", e.State, "entry %q on undeclared state", e.Lexical)
		}
		if kinds[e.State] == AlternationState {
			return nil, compileErrf("lexicon", e.State, "entry %q on alternation state", e.Lexical)
		}
		dest, ok := index[e.Continuation]
		if !ok {
			return nil, compileErrf("lexicon", e.State, "entry %q continues to undeclared state %q", e.Lexical, e.Continuation)
		}
		cursor := owner
		for _, sym := range Symbols(e.Lexical) {
			next, ok := lx.nodes[cursor].next[sym]
			if !ok {
				next = len(lx.nodes)
				lx.nodes = append(lx.nodes, lexNode{next: make(map[Symbol]int)})
				lx.nodes[cursor].next[sym] = next
			}
			cursor = next
		}
		lx.nodes[cursor].arcs = append(lx.nodes[cursor].arcs, lexArc{output: e.Output, next: dest})
	}

	if err := lx.checkZeroWidthCycles(); err != nil {
		return nil, err
	}
	return lx, nil
}

// checkZeroWidthCycles walks the subgraph of moves that consume no input:
// alternation fan-out plus empty-entry arcs. A cycle there would let the
// search loop forever without advancing, so it is a compile-time defect.
func (lx *Lexicon) checkZeroWidthCycles() error {
	const (
		white = iota
		grey
		black
	)
	color := make([]uint8, len(lx.nodes))

	var visit func(n int) error
	visit = func(n int) error {
		color[n] = grey
		targets := make([]int, 0, len(lx.nodes[n].eps)+len(lx.nodes[n].arcs))
		targets = append(targets, lx.nodes[n].eps...)
		for _, arc := range lx.nodes[n].arcs {
			// Arcs on a named state node were installed by empty entries;
			// arcs on interior trie nodes are reached by consuming symbols
			// and cannot close a zero-width loop.
			if lx.nodes[n].name != "" {
				targets = append(targets, arc.next)
			}
		}
		for _, t := range targets {
			switch color[t] {
			case grey:
				return compileErrf("lexicon", lx.nodes[t].name,
					"zero-width alternation cycle never reaches a reading state")
			case white:
				if err := visit(t); err != nil {
					return err
				}
			}
		}
		color[n] = black
		return nil
	}

	for n := range lx.nodes {
		if color[n] == white {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}
