package twolevel

import (
	"sort"
)

// RejectState is the reserved destination name for the hard-reject sink.
// A transition into it kills the current search branch immediately.
const RejectState = "reject"

// rejectSink is the compiled index of the reject destination.
const rejectSink = -1

// RuleSpec declares one phonological rule automaton. The first state is the
// initial state.
type RuleSpec struct {
	Name   string
	States []RuleStateSpec
}

// RuleStateSpec declares one state of a rule automaton.
type RuleStateSpec struct {
	Name string
	// Final marks a state the walk may legally end in. A word whose pair
	// sequence leaves the rule in a non-final state is mid-violation and
	// is not accepted.
	Final bool
	// Rejecting marks a state where an unmatched pair is a hard violation.
	// In non-rejecting states an unmatched pair passes through silently,
	// leaving the state unchanged.
	Rejecting   bool
	Transitions []RuleTransitionSpec
}

// RuleTransitionSpec declares one transition. Lex and Surf are pattern
// tokens: a literal symbol, a declared subset name, a negated subset
// ("~NAME"), or the Wildcard. To names the destination state, or
// RejectState for the reject sink.
type RuleTransitionSpec struct {
	Lex  string
	Surf string
	To   string
}

type ruleTransition struct {
	pattern PairPattern
	next    int
}

type ruleState struct {
	name      string
	final     bool
	rejecting bool
	// trans is ordered by the fixed match precedence:
	// literal > subset (smaller first) > others, ties by declaration order.
	trans []ruleTransition
}

// Rule is a compiled phonological rule automaton. Immutable after
// CompileRule; shared freely between concurrent searches.
type Rule struct {
	name   string
	start  int
	states []ruleState
}

// Name returns the rule's name.
func (r *Rule) Name() string { return r.name }

// Start returns the initial state index.
func (r *Rule) Start() int { return r.start }

// Final reports whether the walk may legally end in state.
func (r *Rule) Final(state int) bool { return r.states[state].final }

// StateName returns the declared name of a state index.
func (r *Rule) StateName(state int) string { return r.states[state].name }

// step advances the rule over pr. The first matching transition in
// precedence order wins. The zero-width null/null pair (a lexicon-internal
// move) only engages transitions that name the null literally on both
// sides; otherwise it passes through. Returns rejectSink when the branch
// dies: a transition into the sink, or an unmatched pair at a rejecting
// state.
func (r *Rule) step(state int, pr Pair, null Symbol) int {
	st := &r.states[state]
	if pr.Lex == null && pr.Surf == null {
		for _, tr := range st.trans {
			if tr.pattern.explicitNull(null) {
				return tr.next
			}
		}
		return state
	}
	for _, tr := range st.trans {
		if tr.pattern.Matches(pr) {
			return tr.next
		}
	}
	if st.rejecting {
		return rejectSink
	}
	return state
}

// CompileRule resolves a RuleSpec against the subset table into an
// immutable automaton. All name references are resolved to indices here;
// the search hot path never sees a string.
func CompileRule(spec RuleSpec, subsets *SubsetTable) (*Rule, error) {
	if len(spec.States) == 0 {
		return nil, compileErrf("rule", spec.Name, "no states")
	}
	index := make(map[string]int, len(spec.States))
	for i, st := range spec.States {
		if st.Name == "" {
			return nil, compileErrf("rule", spec.Name, "state %d has no name", i)
		}
		if st.Name == RejectState {
			return nil, compileErrf("rule", spec.Name, "state name %q is reserved", RejectState)
		}
		if _, dup := index[st.Name]; dup {
			return nil, compileErrf("rule", spec.Name, "state %q declared twice", st.Name)
		}
		index[st.Name] = i
	}

	r := &Rule{name: spec.Name, start: 0, states: make([]ruleState, len(spec.States))}

	// Patterns seen anywhere in the rule; used for the rejecting-state
	// coverage check below.
	var rulePatterns []PairPattern

	for i, st := range spec.States {
		cs := ruleState{name: st.Name, final: st.Final, rejecting: st.Rejecting}
		for _, tr := range st.Transitions {
			pat, err := compilePattern(tr.Lex, tr.Surf, subsets)
			if err != nil {
				return nil, compileErrf("rule", spec.Name, "state %q: %w", st.Name, err)
			}
			next := rejectSink
			if tr.To != RejectState {
				var ok bool
				next, ok = index[tr.To]
				if !ok {
					return nil, compileErrf("rule", spec.Name, "state %q: transition to undeclared state %q", st.Name, tr.To)
				}
			}
			cs.trans = append(cs.trans, ruleTransition{pattern: pat, next: next})
			rulePatterns = append(rulePatterns, pat)
		}
		sortTransitions(cs.trans, subsets)
		r.states[i] = cs
	}

	if err := checkRejectingCoverage(spec, r, rulePatterns); err != nil {
		return nil, err
	}
	if err := checkReachability(spec, r); err != nil {
		return nil, err
	}
	return r, nil
}

// sortTransitions installs the fixed precedence order. sort.SliceStable
// keeps declaration order for equally specific patterns.
func sortTransitions(trans []ruleTransition, subsets *SubsetTable) {
	sort.SliceStable(trans, func(i, j int) bool {
		ri, si := trans[i].pattern.specificity(subsets)
		rj, sj := trans[j].pattern.specificity(subsets)
		if ri != rj {
			return ri < rj
		}
		return si < sj
	})
}

// checkRejectingCoverage enforces the compile-time invariant that a
// rejecting state covers every pair class the rule can encounter: it must
// carry a full wildcard fallback or a transition subsuming every pattern
// the rule mentions anywhere.
func checkRejectingCoverage(spec RuleSpec, r *Rule, rulePatterns []PairPattern) error {
	for _, st := range r.states {
		if !st.rejecting {
			continue
		}
		if len(st.trans) == 0 {
			return compileErrf("rule", spec.Name, "rejecting state %q has no transitions", st.name)
		}
	patterns:
		for _, p := range rulePatterns {
			for _, tr := range st.trans {
				if subsumes(tr.pattern, p) {
					continue patterns
				}
			}
			return compileErrf("rule", spec.Name,
				"rejecting state %q has no transition for pair class %q and no %q fallback",
				st.name, p.String(), Wildcard+":"+Wildcard)
		}
	}
	return nil
}

// subsumes reports whether every pair matched by p is also matched by q.
// The check is conservative: subsets only subsume themselves and their
// member literals.
func subsumes(q, p PairPattern) bool {
	return sideSubsumes(q.lex, p.lex) && sideSubsumes(q.surf, p.surf)
}

func sideSubsumes(q, p sideMatcher) bool {
	if q.kind == matchOthers {
		return true
	}
	switch p.kind {
	case matchLiteral:
		return q.matches(p.lit)
	case matchSubset:
		return q.kind == matchSubset && q.name == p.name
	case matchNotSubset:
		return q.kind == matchNotSubset && q.name == p.name
	default:
		return false
	}
}

// checkReachability rejects states the start state can never reach.
func checkReachability(spec RuleSpec, r *Rule) error {
	seen := make([]bool, len(r.states))
	stack := []int{r.start}
	seen[r.start] = true
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, tr := range r.states[s].trans {
			if tr.next == rejectSink || seen[tr.next] {
				continue
			}
			seen[tr.next] = true
			stack = append(stack, tr.next)
		}
	}
	for i, ok := range seen {
		if !ok {
			return compileErrf("rule", spec.Name, "state %q is unreachable from %q",
				r.states[i].name, r.states[r.start].name)
		}
	}
	return nil
}
