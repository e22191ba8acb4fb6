package twolevel

import (
	"context"
	"sort"
	"strings"
)

// DefaultStepBudget bounds the backtracking search when no explicit budget
// is configured. Pathological rule sets can branch exponentially; the
// budget turns runaway searches into ErrSearchBudget instead of hangs.
const DefaultStepBudget = 250000

// Engine runs recognition and generation searches over one compiled
// grammar. The grammar is immutable and every call owns its search state,
// so a single Engine is safe for any number of concurrent calls.
type Engine struct {
	g      *Grammar
	budget int
}

// Option configures an Engine.
type Option func(*Engine)

// WithStepBudget sets the maximum number of search steps per call.
func WithStepBudget(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.budget = n
		}
	}
}

// NewEngine wraps a compiled grammar.
func NewEngine(g *Grammar, opts ...Option) *Engine {
	e := &Engine{g: g, budget: DefaultStepBudget}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Grammar returns the engine's compiled grammar.
func (e *Engine) Grammar() *Grammar { return e.g }

// Recognize finds every lexical form whose surface realization is the
// given symbol sequence, running the lexicon automaton and all rule
// automata in lock-step. A query with no analyses returns an empty slice
// and no error; ErrSearchBudget reports an exhausted step budget.
func (e *Engine) Recognize(ctx context.Context, surface []Symbol) ([]Analysis, error) {
	if e.g.lexicon == nil {
		return nil, ErrNoLexicon
	}
	s := &searcher{
		g:       e.g,
		ctx:     ctx,
		budget:  e.budget,
		mode:    modeRecognize,
		input:   surface,
		seen:    make(map[string]bool),
		lexNode: e.g.lexicon.Start(),
	}
	if err := s.search(0, s.lexNode, e.g.initialRuleStates(), nil, nil); err != nil {
		return nil, err
	}
	sort.Slice(s.analyses, func(i, j int) bool {
		if s.analyses[i].Lexical != s.analyses[j].Lexical {
			return s.analyses[i].Lexical < s.analyses[j].Lexical
		}
		return s.analyses[i].Annotation < s.analyses[j].Annotation
	})
	return s.analyses, nil
}

// Generate finds every surface realization of the given lexical symbol
// sequence. Only the rule automata are active: the lexicon constrains
// which lexical strings exist, not how a given one is realized.
func (e *Engine) Generate(ctx context.Context, lexical []Symbol) ([]string, error) {
	s := &searcher{
		g:       e.g,
		ctx:     ctx,
		budget:  e.budget,
		mode:    modeGenerate,
		input:   lexical,
		seen:    make(map[string]bool),
		lexNode: inactiveLexicon,
	}
	if err := s.search(0, inactiveLexicon, e.g.initialRuleStates(), nil, nil); err != nil {
		return nil, err
	}
	sort.Strings(s.surfaces)
	return s.surfaces, nil
}

type searchMode uint8

const (
	modeRecognize searchMode = iota
	modeGenerate
)

// inactiveLexicon marks a search that runs without the lexicon automaton.
const inactiveLexicon = -1

// searcher holds the per-call state of one backtracking search. Nothing in
// it escapes the call.
type searcher struct {
	g      *Grammar
	ctx    context.Context
	budget int
	steps  int
	mode   searchMode
	// input is the constrained side of the query: surface symbols for
	// recognition, lexical symbols for generation.
	input []Symbol
	// seen collapses leaves with identical pair sequences.
	seen     map[string]bool
	lexNode  int
	analyses []Analysis
	surfaces []string
}

// search explores all pair sequences from the current joint state.
// pos is the cursor into the constrained input; lexNode the lexicon
// position (inactiveLexicon when the lexicon is not running); ruleStates
// the rule state vector; pairs and annots the path so far.
//
// Candidates are tried in a fixed order: zero-width lexicon moves first
// (morpheme completions, then alternation fan-out), then the feasible pair
// alphabet in its sorted order. Dead ends backtrack silently.
func (s *searcher) search(pos, lexNode int, ruleStates []int, pairs []Pair, annots []string) error {
	s.steps++
	if s.steps > s.budget {
		return ErrSearchBudget
	}
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	if pos == len(s.input) && s.lexFinal(lexNode) && s.g.rulesFinal(ruleStates) {
		s.emit(pairs, annots)
	}

	if lexNode != inactiveLexicon {
		lx := s.g.lexicon
		nullPair := Pair{Lex: s.g.null, Surf: s.g.null}
		for _, arc := range lx.nodes[lexNode].arcs {
			next, ok := s.g.stepAll(ruleStates, nullPair)
			if !ok {
				continue
			}
			if err := s.search(pos, arc.next, next, pairs, append(annots, arc.output)); err != nil {
				return err
			}
		}
		for _, t := range lx.nodes[lexNode].eps {
			next, ok := s.g.stepAll(ruleStates, nullPair)
			if !ok {
				continue
			}
			if err := s.search(pos, t, next, pairs, annots); err != nil {
				return err
			}
		}
	}

	for _, pr := range s.g.pairs {
		newPos, newLex, ok := s.consume(pos, lexNode, pr)
		if !ok {
			continue
		}
		next, ok := s.g.stepAll(ruleStates, pr)
		if !ok {
			continue
		}
		if err := s.search(newPos, newLex, next, append(pairs, pr), annots); err != nil {
			return err
		}
	}
	return nil
}

// consume checks pr against the query cursor and the lexicon trie and
// returns the advanced positions. The constrained side must match the next
// input symbol or be null; the lexical side must be readable from the
// current lexicon node or be null.
func (s *searcher) consume(pos, lexNode int, pr Pair) (newPos, newLex int, ok bool) {
	newPos, newLex = pos, lexNode

	constrained := pr.Surf
	if s.mode == modeGenerate {
		constrained = pr.Lex
	}
	if constrained != s.g.null {
		if pos >= len(s.input) || s.input[pos] != constrained {
			return 0, 0, false
		}
		newPos = pos + 1
	}

	if lexNode != inactiveLexicon && pr.Lex != s.g.null {
		next, readable := s.g.lexicon.read(lexNode, pr.Lex)
		if !readable {
			return 0, 0, false
		}
		newLex = next
	}
	return newPos, newLex, true
}

// lexFinal reports whether the lexicon allows the word to end here.
func (s *searcher) lexFinal(lexNode int) bool {
	if lexNode == inactiveLexicon {
		return true
	}
	return s.g.lexicon.Final(lexNode)
}

// emit records a successful leaf. Leaves are collapsed only when both the
// pair sequence and the annotation path are identical: two lexicon paths
// may realize the same pairs with distinct glosses, and both leaves count.
func (s *searcher) emit(pairs []Pair, annots []string) {
	key := pairKey(pairs) + "\x00" + strings.Join(annots, "\x00")
	if s.seen[key] {
		return
	}
	s.seen[key] = true

	kept := make([]Pair, len(pairs))
	copy(kept, pairs)
	switch s.mode {
	case modeRecognize:
		s.analyses = append(s.analyses, Analysis{
			Lexical:    LexicalProjection(kept, s.g.null),
			Annotation: strings.Join(annots, ""),
			Pairs:      kept,
		})
	case modeGenerate:
		s.surfaces = append(s.surfaces, SurfaceProjection(kept, s.g.null))
	}
}

func pairKey(pairs []Pair) string {
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(p.String())
		b.WriteByte(' ')
	}
	return b.String()
}
