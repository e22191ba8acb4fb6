package twolevel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePairAlphabet(t *testing.T) {
	g, err := Compile(&GrammarSpec{
		Name: "alphabet",
		Subsets: map[string][]Symbol{
			"V": {"a", "e"},
		},
		Defaults: []Pair{
			{Lex: "b", Surf: "b"},
			{Lex: "a", Surf: "a"},
		},
		Rules: []RuleSpec{{
			Name: "mutation",
			States: []RuleStateSpec{
				{Name: "start", Final: true, Transitions: []RuleTransitionSpec{
					{Lex: "k", Surf: "c", To: "start"},
					{Lex: "V", Surf: "V", To: "start"},
					{Lex: "0", Surf: "0", To: "start"},
				}},
			},
		}},
	})
	require.NoError(t, err)

	// Defaults plus the concrete literal pairs the rules mention, sorted;
	// subset patterns and the zero-width pair contribute nothing.
	assert.Equal(t, []Pair{
		{Lex: "a", Surf: "a"},
		{Lex: "b", Surf: "b"},
		{Lex: "k", Surf: "c"},
	}, g.Pairs())
}

func TestCompileRejectsBadDefaults(t *testing.T) {
	_, err := Compile(&GrammarSpec{
		Subsets:  map[string][]Symbol{"V": {"a"}},
		Defaults: []Pair{{Lex: "V", Surf: "V"}},
	})
	require.Error(t, err)

	_, err = Compile(&GrammarSpec{
		Defaults: []Pair{{Lex: "0", Surf: "0"}},
	})
	require.Error(t, err)
}

func TestCompileRejectsOrphanEntries(t *testing.T) {
	_, err := Compile(&GrammarSpec{
		Entries: []LexicalEntrySpec{
			{State: "Noun", Lexical: "cat", Continuation: "End"},
		},
	})
	require.Error(t, err)

	_, err = Compile(&GrammarSpec{
		LexiconStates: []LexiconStateSpec{
			{Name: "Begin", Kind: ReadingState, Final: true},
		},
	})
	require.Error(t, err, "lexicon states without a named start state")
}

func TestStepAllIsPure(t *testing.T) {
	g, err := Compile(&GrammarSpec{
		Defaults: []Pair{{Lex: "a", Surf: "a"}},
		Rules: []RuleSpec{{
			Name: "count-a",
			States: []RuleStateSpec{
				{Name: "start", Final: true, Transitions: []RuleTransitionSpec{
					{Lex: "a", Surf: "a", To: "odd"},
				}},
				{Name: "odd", Transitions: []RuleTransitionSpec{
					{Lex: "a", Surf: "a", To: "start"},
				}},
			},
		}},
	})
	require.NoError(t, err)

	states := g.initialRuleStates()
	before := append([]int(nil), states...)

	next, ok := g.stepAll(states, Pair{Lex: "a", Surf: "a"})
	require.True(t, ok)
	assert.Equal(t, before, states, "input state vector must not be mutated")
	assert.NotEqual(t, states, next)

	again, ok := g.stepAll(states, Pair{Lex: "a", Surf: "a"})
	require.True(t, ok)
	assert.Equal(t, next, again, "same inputs, same outputs")

	assert.True(t, g.rulesFinal(states))
	assert.False(t, g.rulesFinal(next))
}

func TestStepAllReject(t *testing.T) {
	g, err := Compile(&GrammarSpec{
		Rules: []RuleSpec{{
			Name: "forbid-b",
			States: []RuleStateSpec{
				{Name: "start", Final: true, Transitions: []RuleTransitionSpec{
					{Lex: "b", Surf: "b", To: RejectState},
				}},
			},
		}},
	})
	require.NoError(t, err)

	_, ok := g.stepAll(g.initialRuleStates(), Pair{Lex: "b", Surf: "b"})
	assert.False(t, ok)
}

func TestGrammarAccessors(t *testing.T) {
	g, err := Compile(&GrammarSpec{
		Name:    "acc",
		Subsets: map[string][]Symbol{"V": {"a"}},
		Rules: []RuleSpec{
			{Name: "beta", States: []RuleStateSpec{{Name: "start", Final: true}}},
			{Name: "alpha", States: []RuleStateSpec{{Name: "start", Final: true}}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "acc", g.Name())
	assert.Equal(t, DefaultNull, g.Null())
	assert.Equal(t, []string{"beta", "alpha"}, g.RuleNames(), "compilation order")
	assert.False(t, g.HasLexicon())
	assert.True(t, g.Subsets().Has("V"))
}
