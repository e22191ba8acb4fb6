package twolevel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func englishEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	eng, err := New("testdata/english.yaml", opts...)
	require.NoError(t, err)
	return eng
}

func TestRecognizeSuffixedNoun(t *testing.T) {
	eng := englishEngine(t)

	analyses, err := eng.Recognize(context.Background(), Symbols("cats"))
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, "cat+s", analyses[0].Lexical)
	assert.Equal(t, "N(cat)+PL", analyses[0].Annotation)
	assert.Equal(t, "cats", SurfaceProjection(analyses[0].Pairs, eng.Grammar().Null()))
}

func TestRecognizeAmbiguity(t *testing.T) {
	eng := englishEngine(t)

	analyses, err := eng.Recognize(context.Background(), Symbols("bank"))
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, "bank", analyses[0].Lexical)
	assert.Equal(t, "N(bank)", analyses[0].Annotation)
	assert.Equal(t, "bank", analyses[1].Lexical)
	assert.Equal(t, "V(bank)", analyses[1].Annotation)
}

func TestRecognizeNoAnalysis(t *testing.T) {
	eng := englishEngine(t)

	analyses, err := eng.Recognize(context.Background(), Symbols("xyzzy"))
	require.NoError(t, err)
	assert.Empty(t, analyses)
}

func TestPalatalization(t *testing.T) {
	eng := englishEngine(t)
	tests := []struct {
		surface string
		lexical string // "" means no analysis
	}{
		{"luci", "luk+i"}, // k:c forced before front-vowel suffix
		{"luka", "luk+a"}, // back vowel keeps k
		{"luki", ""},      // unmutated k before front vowel rejected
		{"luca", ""},      // mutation without front-vowel trigger rejected
	}
	for _, tt := range tests {
		analyses, err := eng.Recognize(context.Background(), Symbols(tt.surface))
		require.NoError(t, err, "surface %q", tt.surface)
		if tt.lexical == "" {
			assert.Empty(t, analyses, "surface %q", tt.surface)
			continue
		}
		require.Len(t, analyses, 1, "surface %q", tt.surface)
		assert.Equal(t, tt.lexical, analyses[0].Lexical, "surface %q", tt.surface)
	}
}

func TestGenerate(t *testing.T) {
	eng := englishEngine(t)
	tests := []struct {
		lexical  string
		surfaces []string
	}{
		{"cat+s", []string{"cats"}},
		{"luk+i", []string{"luci"}},
		{"luk+a", []string{"luka"}},
		{"bank", []string{"bank"}},
	}
	for _, tt := range tests {
		surfaces, err := eng.Generate(context.Background(), Symbols(tt.lexical))
		require.NoError(t, err, "lexical %q", tt.lexical)
		assert.Equal(t, tt.surfaces, surfaces, "lexical %q", tt.lexical)
	}
}

// Recognition and generation must agree: generating any recognized lexical
// form yields the original surface again.
func TestRoundTrip(t *testing.T) {
	eng := englishEngine(t)
	for _, surface := range []string{"cats", "dogs", "bank", "luci", "luka"} {
		analyses, err := eng.Recognize(context.Background(), Symbols(surface))
		require.NoError(t, err)
		require.NotEmpty(t, analyses, "surface %q", surface)
		for _, a := range analyses {
			surfaces, err := eng.Generate(context.Background(), Symbols(a.Lexical))
			require.NoError(t, err)
			assert.Contains(t, surfaces, surface, "lexical %q", a.Lexical)
		}
	}
}

func TestDeterministicOrder(t *testing.T) {
	eng := englishEngine(t)

	first, err := eng.Recognize(context.Background(), Symbols("bank"))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := eng.Recognize(context.Background(), Symbols("bank"))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestStepBudget(t *testing.T) {
	eng := englishEngine(t, WithStepBudget(3))

	_, err := eng.Recognize(context.Background(), Symbols("cats"))
	require.ErrorIs(t, err, ErrSearchBudget)

	_, err = eng.Generate(context.Background(), Symbols("cat+s"))
	require.ErrorIs(t, err, ErrSearchBudget)
}

func TestContextCancellation(t *testing.T) {
	eng := englishEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Recognize(ctx, Symbols("cats"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRecognizeWithoutLexicon(t *testing.T) {
	g, err := Compile(&GrammarSpec{
		Name:     "rules-only",
		Defaults: []Pair{{Lex: "a", Surf: "a"}},
	})
	require.NoError(t, err)
	eng := NewEngine(g)

	_, err = eng.Recognize(context.Background(), Symbols("a"))
	require.ErrorIs(t, err, ErrNoLexicon)

	// Generation does not need the lexicon.
	surfaces, err := eng.Generate(context.Background(), Symbols("a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, surfaces)
}

func TestEngineConcurrency(t *testing.T) {
	eng := englishEngine(t)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := eng.Recognize(context.Background(), Symbols("cats"))
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
}
