package twolevel

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// grammarFile mirrors the YAML grammar format. Rules map state labels to
// pair-label → destination tables; a state label may carry a "rejecting"
// prefix, a pair label is "l:s" (or a bare token for identity, or
// "others"), and the destination "reject" is the hard-reject sink.
type grammarFile struct {
	Name     string               `yaml:"name"`
	Null     string               `yaml:"null"`
	Subsets  map[string]string    `yaml:"subsets"`
	Defaults string               `yaml:"defaults"`
	Rules    map[string]ruleTable `yaml:"rules"`
	Lexicon  *lexiconFile         `yaml:"lexicon"`
}

// ruleTable maps state labels to pair-label → destination rows.
type ruleTable = map[string]map[string]string

type lexiconFile struct {
	Start        string                 `yaml:"start"`
	Alternations map[string][]string    `yaml:"alternations"`
	Entries      map[string][]entryFile `yaml:"entries"`
}

type entryFile struct {
	Lexical string `yaml:"lexical"`
	Output  string `yaml:"output"`
	Next    string `yaml:"next"`
}

// othersLabel is the YAML spelling of the wildcard transition.
const othersLabel = "others"

// rejectingPrefix marks a rule state the walk may not end in.
const rejectingPrefix = "rejecting"

// endState is the conventional name of the final lexicon state; it is
// created implicitly when referenced but not declared.
const endState = "End"

// defaultLexiconStart is used when the lexicon block names no start state.
const defaultLexiconStart = "Begin"

// LoadGrammar reads a YAML grammar file into a GrammarSpec. The spec still
// needs Compile; New does both.
func LoadGrammar(path string) (*GrammarSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load grammar: %w", err)
	}
	spec, err := ParseGrammar(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// ParseGrammar parses YAML grammar bytes into a GrammarSpec.
func ParseGrammar(data []byte) (*GrammarSpec, error) {
	var gf grammarFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}

	spec := &GrammarSpec{
		Name: gf.Name,
		Null: Symbol(gf.Null),
	}
	if spec.Null == "" {
		spec.Null = DefaultNull
	}

	if len(gf.Subsets) > 0 {
		spec.Subsets = make(map[string][]Symbol, len(gf.Subsets))
		for name, members := range gf.Subsets {
			var syms []Symbol
			for _, tok := range strings.Fields(members) {
				syms = append(syms, Symbol(tok))
			}
			spec.Subsets[name] = syms
		}
	}

	for _, tok := range strings.Fields(gf.Defaults) {
		lex, surf, err := parsePairToken(tok)
		if err != nil {
			return nil, fmt.Errorf("parse defaults: %w", err)
		}
		spec.Defaults = append(spec.Defaults, Pair{Lex: Symbol(lex), Surf: Symbol(surf)})
	}

	ruleNames := make([]string, 0, len(gf.Rules))
	for name := range gf.Rules {
		ruleNames = append(ruleNames, name)
	}
	sort.Strings(ruleNames)
	for _, name := range ruleNames {
		rs, err := parseRule(name, gf.Rules[name])
		if err != nil {
			return nil, err
		}
		spec.Rules = append(spec.Rules, rs)
	}

	if gf.Lexicon != nil {
		if err := parseLexicon(gf.Lexicon, spec); err != nil {
			return nil, err
		}
	}
	return spec, nil
}

// parseRule converts one YAML rule table into a RuleSpec. The state named
// "start" becomes the initial state; remaining states follow in sorted
// order. Transition labels within a state are sorted so that precedence
// ties resolve deterministically.
func parseRule(name string, states map[string]map[string]string) (RuleSpec, error) {
	rs := RuleSpec{Name: name}
	if len(states) == 0 {
		return rs, fmt.Errorf("rule %q has no states", name)
	}

	type parsedState struct {
		spec  RuleStateSpec
		order string
	}
	var parsed []parsedState
	haveStart := false

	for label, trans := range states {
		st := RuleStateSpec{Final: true}
		stateName := strings.TrimSpace(label)
		if rest, found := strings.CutPrefix(stateName, rejectingPrefix+" "); found {
			st.Final = false
			st.Rejecting = true
			stateName = strings.TrimSpace(rest)
		}
		if stateName == "" {
			return rs, fmt.Errorf("rule %q has a state with an empty name", name)
		}
		st.Name = stateName

		labels := make([]string, 0, len(trans))
		for l := range trans {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		for _, l := range labels {
			to := trans[l]
			var lex, surf string
			if l == othersLabel {
				lex, surf = Wildcard, Wildcard
			} else {
				var err error
				lex, surf, err = parsePairToken(l)
				if err != nil {
					return rs, fmt.Errorf("rule %q state %q: %w", name, stateName, err)
				}
			}
			st.Transitions = append(st.Transitions, RuleTransitionSpec{Lex: lex, Surf: surf, To: to})
		}

		if stateName == "start" {
			haveStart = true
		}
		parsed = append(parsed, parsedState{spec: st, order: stateName})
	}

	if !haveStart {
		return rs, fmt.Errorf("rule %q has no state named %q", name, "start")
	}
	sort.Slice(parsed, func(i, j int) bool {
		if (parsed[i].order == "start") != (parsed[j].order == "start") {
			return parsed[i].order == "start"
		}
		return parsed[i].order < parsed[j].order
	})
	for _, p := range parsed {
		rs.States = append(rs.States, p.spec)
	}
	return rs, nil
}

// parseLexicon converts the YAML lexicon block into states and entries on
// spec. Reading states are the keys of the entries map, alternation states
// the keys of the alternations map; "End" is created as a final reading
// state when referenced without being declared.
func parseLexicon(lf *lexiconFile, spec *GrammarSpec) error {
	start := lf.Start
	if start == "" {
		start = defaultLexiconStart
	}
	spec.LexiconStart = start

	declared := make(map[string]bool)
	referenced := make(map[string]bool)

	altNames := make([]string, 0, len(lf.Alternations))
	for name := range lf.Alternations {
		altNames = append(altNames, name)
	}
	sort.Strings(altNames)
	for _, name := range altNames {
		if declared[name] {
			return fmt.Errorf("lexicon state %q declared twice", name)
		}
		declared[name] = true
		conts := lf.Alternations[name]
		spec.LexiconStates = append(spec.LexiconStates, LexiconStateSpec{
			Name:          name,
			Kind:          AlternationState,
			Continuations: conts,
		})
		for _, c := range conts {
			referenced[c] = true
		}
	}

	readNames := make([]string, 0, len(lf.Entries))
	for name := range lf.Entries {
		readNames = append(readNames, name)
	}
	sort.Strings(readNames)
	for _, name := range readNames {
		if declared[name] {
			return fmt.Errorf("lexicon state %q declared twice", name)
		}
		declared[name] = true
		spec.LexiconStates = append(spec.LexiconStates, LexiconStateSpec{
			Name: name,
			Kind: ReadingState,
		})
		for _, e := range lf.Entries[name] {
			spec.Entries = append(spec.Entries, LexicalEntrySpec{
				State:        name,
				Lexical:      e.Lexical,
				Output:       e.Output,
				Continuation: e.Next,
			})
			referenced[e.Next] = true
		}
	}

	if referenced[endState] && !declared[endState] {
		spec.LexiconStates = append(spec.LexiconStates, LexiconStateSpec{
			Name:  endState,
			Kind:  ReadingState,
			Final: true,
		})
	}
	return nil
}
