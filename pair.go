package twolevel

import (
	"fmt"
	"strings"
)

// Pair is one lexical/surface symbol correspondence. Either side may be the
// grammar's null symbol, marking a deletion (surface null) or an insertion
// (lexical null).
type Pair struct {
	Lex  Symbol
	Surf Symbol
}

func (p Pair) String() string {
	return string(p.Lex) + ":" + string(p.Surf)
}

// Wildcard is the pattern token matching any symbol pair not covered by a
// more specific transition of the same state.
const Wildcard = "@"

type matchKind uint8

const (
	matchLiteral matchKind = iota
	matchSubset
	matchNotSubset
	matchOthers
)

// sideMatcher matches one side of a pair: a literal symbol, a (possibly
// negated) subset, or the others wildcard. Subset references are resolved
// to concrete member sets at compile time; the search never looks names up.
type sideMatcher struct {
	kind matchKind
	lit  Symbol
	name string
	set  map[Symbol]bool
}

func (m sideMatcher) matches(s Symbol) bool {
	switch m.kind {
	case matchLiteral:
		return s == m.lit
	case matchSubset:
		return m.set[s]
	case matchNotSubset:
		return !m.set[s]
	default:
		return true
	}
}

// rank orders matchers by specificity: literal before subset before wildcard.
func (m sideMatcher) rank() int {
	switch m.kind {
	case matchLiteral:
		return 0
	case matchSubset, matchNotSubset:
		return 1
	default:
		return 2
	}
}

func (m sideMatcher) String() string {
	switch m.kind {
	case matchLiteral:
		return string(m.lit)
	case matchSubset:
		return m.name
	case matchNotSubset:
		return "~" + m.name
	default:
		return Wildcard
	}
}

// PairPattern matches symbol pairs in rule transitions.
type PairPattern struct {
	lex  sideMatcher
	surf sideMatcher
}

// Matches reports whether pr is covered by this pattern.
func (p PairPattern) Matches(pr Pair) bool {
	return p.lex.matches(pr.Lex) && p.surf.matches(pr.Surf)
}

func (p PairPattern) String() string {
	return p.lex.String() + ":" + p.surf.String()
}

// explicitNull reports whether the pattern names the null symbol literally
// on both sides. Only such patterns apply to the zero-width null/null pair;
// subsets and the wildcard never capture it.
func (p PairPattern) explicitNull(null Symbol) bool {
	return p.lex.kind == matchLiteral && p.lex.lit == null &&
		p.surf.kind == matchLiteral && p.surf.lit == null
}

// specificity is the sort key for transition precedence: lower rank sums
// first, then smaller subsets, so a more specific subset beats a broader
// one.
func (p PairPattern) specificity(subsets *SubsetTable) (rank, size int) {
	rank = p.lex.rank() + p.surf.rank()
	size = 1
	if p.lex.kind == matchSubset || p.lex.kind == matchNotSubset {
		size *= subsets.size(p.lex.name) + 1
	}
	if p.surf.kind == matchSubset || p.surf.kind == matchNotSubset {
		size *= subsets.size(p.surf.name) + 1
	}
	return rank, size
}

// compileSideMatcher resolves one pattern token. A token is the wildcard,
// a declared subset name, a negated subset ("~NAME"), or a literal symbol.
// Multi-rune tokens that are not declared subsets are dangling references.
func compileSideMatcher(tok string, subsets *SubsetTable) (sideMatcher, error) {
	if tok == "" {
		return sideMatcher{}, fmt.Errorf("empty pattern token")
	}
	if tok == Wildcard {
		return sideMatcher{kind: matchOthers}, nil
	}
	if strings.HasPrefix(tok, "~") {
		name := tok[1:]
		if !subsets.Has(name) {
			return sideMatcher{}, fmt.Errorf("%w: %q", ErrUndefinedSubset, name)
		}
		return sideMatcher{kind: matchNotSubset, name: name, set: subsets.members[name]}, nil
	}
	if subsets.Has(tok) {
		return sideMatcher{kind: matchSubset, name: tok, set: subsets.members[tok]}, nil
	}
	if len([]rune(tok)) > 1 {
		return sideMatcher{}, fmt.Errorf("%w: %q", ErrUndefinedSubset, tok)
	}
	return sideMatcher{kind: matchLiteral, lit: Symbol(tok)}, nil
}

// compilePattern resolves a lexical and a surface token into a pattern.
func compilePattern(lex, surf string, subsets *SubsetTable) (PairPattern, error) {
	lm, err := compileSideMatcher(lex, subsets)
	if err != nil {
		return PairPattern{}, err
	}
	sm, err := compileSideMatcher(surf, subsets)
	if err != nil {
		return PairPattern{}, err
	}
	return PairPattern{lex: lm, surf: sm}, nil
}

// parsePairToken splits a "l:s" label into its sides; a bare token is the
// identity correspondence "t:t".
func parsePairToken(label string) (lex, surf string, err error) {
	parts := strings.Split(label, ":")
	switch len(parts) {
	case 1:
		return parts[0], parts[0], nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("malformed pair %q", label)
		}
		return parts[0], parts[1], nil
	default:
		return "", "", fmt.Errorf("malformed pair %q", label)
	}
}
