package twolevel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrammarDefaults(t *testing.T) {
	spec, err := ParseGrammar([]byte(`
name: mini
defaults: a b +:0
`))
	require.NoError(t, err)
	assert.Equal(t, "mini", spec.Name)
	assert.Equal(t, DefaultNull, spec.Null, "null defaults to 0")
	assert.Equal(t, []Pair{
		{Lex: "a", Surf: "a"},
		{Lex: "b", Surf: "b"},
		{Lex: "+", Surf: "0"},
	}, spec.Defaults)
}

func TestParseGrammarCustomNull(t *testing.T) {
	spec, err := ParseGrammar([]byte(`
"null": "*"
defaults: a
`))
	require.NoError(t, err)
	assert.Equal(t, Symbol("*"), spec.Null)
}

func TestParseGrammarRules(t *testing.T) {
	spec, err := ParseGrammar([]byte(`
subsets:
  V: a e
rules:
  mutation:
    start:
      "k:c": after
      others: start
    "rejecting after":
      "V:V": start
      others: reject
`))
	require.NoError(t, err)
	require.Len(t, spec.Rules, 1)
	rs := spec.Rules[0]
	assert.Equal(t, "mutation", rs.Name)

	// "start" sorts first regardless of its name; remaining states follow
	// alphabetically.
	require.Len(t, rs.States, 2)
	assert.Equal(t, "start", rs.States[0].Name)
	assert.True(t, rs.States[0].Final)
	assert.False(t, rs.States[0].Rejecting)

	after := rs.States[1]
	assert.Equal(t, "after", after.Name)
	assert.False(t, after.Final, "rejecting states are non-final")
	assert.True(t, after.Rejecting)

	// "others" becomes the wildcard pattern, "reject" stays a name for the
	// compiler to resolve.
	var sawWildcard, sawReject bool
	for _, tr := range after.Transitions {
		if tr.Lex == Wildcard && tr.Surf == Wildcard {
			sawWildcard = true
			assert.Equal(t, RejectState, tr.To)
			sawReject = true
		}
	}
	assert.True(t, sawWildcard)
	assert.True(t, sawReject)
}

func TestParseGrammarMissingStartState(t *testing.T) {
	_, err := ParseGrammar([]byte(`
rules:
  broken:
    begin:
      others: begin
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start")
}

func TestParseGrammarLexicon(t *testing.T) {
	spec, err := ParseGrammar([]byte(`
lexicon:
  alternations:
    Begin: [Noun]
  entries:
    Noun:
      - {lexical: cat, output: "N(cat)", next: End}
`))
	require.NoError(t, err)
	assert.Equal(t, defaultLexiconStart, spec.LexiconStart)

	byName := make(map[string]LexiconStateSpec)
	for _, st := range spec.LexiconStates {
		byName[st.Name] = st
	}
	require.Contains(t, byName, "Begin")
	assert.Equal(t, AlternationState, byName["Begin"].Kind)
	assert.Equal(t, []string{"Noun"}, byName["Begin"].Continuations)
	require.Contains(t, byName, "Noun")
	assert.Equal(t, ReadingState, byName["Noun"].Kind)

	// "End" was referenced but not declared: the loader supplies it as a
	// final reading state.
	require.Contains(t, byName, endState)
	assert.True(t, byName[endState].Final)

	require.Len(t, spec.Entries, 1)
	assert.Equal(t, LexicalEntrySpec{
		State: "Noun", Lexical: "cat", Output: "N(cat)", Continuation: "End",
	}, spec.Entries[0])
}

func TestParseGrammarBadYAML(t *testing.T) {
	_, err := ParseGrammar([]byte("rules: [not a map"))
	require.Error(t, err)
}

func TestLoadGrammarMissingFile(t *testing.T) {
	_, err := LoadGrammar("testdata/does-not-exist.yaml")
	require.Error(t, err)
}

func TestLoadGrammarFixtureCompiles(t *testing.T) {
	spec, err := LoadGrammar("testdata/english.yaml")
	require.NoError(t, err)
	g, err := Compile(spec)
	require.NoError(t, err)

	assert.Equal(t, "english", g.Name())
	assert.Equal(t, []string{"k-fronting", "k-palatalization"}, g.RuleNames())
	assert.True(t, g.HasLexicon())
	assert.Contains(t, g.Pairs(), Pair{Lex: "k", Surf: "c"})
	assert.Contains(t, g.Pairs(), Pair{Lex: "+", Surf: "0"})
}
