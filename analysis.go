package twolevel

import "strings"

// Analysis holds one successful recognition leaf: the underlying lexical
// form, the concatenated output annotations collected along the lexicon
// path, and the raw pair sequence the leaf was built from.
type Analysis struct {
	// Lexical is the lexical-side projection of the pair sequence,
	// e.g. "cat+s".
	Lexical string
	// Annotation is the concatenation of the entry annotations,
	// e.g. "N(cat)+PL".
	Annotation string
	// Pairs is the accepted symbol-pair sequence.
	Pairs []Pair
}

// LexicalProjection renders the lexical side of a pair sequence, dropping
// null symbols.
func LexicalProjection(pairs []Pair, null Symbol) string {
	var b strings.Builder
	for _, p := range pairs {
		if p.Lex != null {
			b.WriteString(string(p.Lex))
		}
	}
	return b.String()
}

// SurfaceProjection renders the surface side of a pair sequence, dropping
// null symbols.
func SurfaceProjection(pairs []Pair, null Symbol) string {
	var b strings.Builder
	for _, p := range pairs {
		if p.Surf != null {
			b.WriteString(string(p.Surf))
		}
	}
	return b.String()
}
