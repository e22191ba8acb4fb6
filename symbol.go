package twolevel

import (
	"fmt"
	"sort"
)

// Symbol is one atomic element of a grammar alphabet. Symbols are usually
// single characters; multi-character symbols are legal wherever a symbol is.
type Symbol string

// DefaultNull is the null symbol used when a grammar does not declare its
// own. A null on one side of a pair marks an insertion or deletion: the
// correspondence consumes nothing on that side.
const DefaultNull Symbol = "0"

// Symbols splits s into one Symbol per rune. This is the conventional way
// to turn a query word into the symbol sequence the engine consumes.
func Symbols(s string) []Symbol {
	out := make([]Symbol, 0, len(s))
	for _, r := range s {
		out = append(out, Symbol(string(r)))
	}
	return out
}

// SubsetTable maps subset names to their member symbols. It is populated
// during grammar compilation and read-only afterwards, so concurrent
// lookups from any number of searches are safe.
type SubsetTable struct {
	members map[string]map[Symbol]bool
	ordered map[string][]Symbol
}

// NewSubsetTable returns an empty table.
func NewSubsetTable() *SubsetTable {
	return &SubsetTable{
		members: make(map[string]map[Symbol]bool),
		ordered: make(map[string][]Symbol),
	}
}

// Define registers a named subset. Redefinition is an error.
func (t *SubsetTable) Define(name string, symbols []Symbol) error {
	if name == "" {
		return fmt.Errorf("subset name must not be empty")
	}
	if _, dup := t.members[name]; dup {
		return fmt.Errorf("subset %q defined twice", name)
	}
	set := make(map[Symbol]bool, len(symbols))
	list := make([]Symbol, 0, len(symbols))
	for _, s := range symbols {
		if set[s] {
			continue
		}
		set[s] = true
		list = append(list, s)
	}
	t.members[name] = set
	t.ordered[name] = list
	return nil
}

// Resolve returns the member symbols of name in declaration order.
// It fails with ErrUndefinedSubset for names that were never declared.
func (t *SubsetTable) Resolve(name string) ([]Symbol, error) {
	list, ok := t.ordered[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUndefinedSubset, name)
	}
	out := make([]Symbol, len(list))
	copy(out, list)
	return out, nil
}

// Has reports whether name is a declared subset.
func (t *SubsetTable) Has(name string) bool {
	_, ok := t.members[name]
	return ok
}

// Names returns all declared subset names, sorted.
func (t *SubsetTable) Names() []string {
	names := make([]string, 0, len(t.members))
	for n := range t.members {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// contains reports membership without copying. Undefined names hold nothing.
func (t *SubsetTable) contains(name string, s Symbol) bool {
	return t.members[name][s]
}

// size returns the member count of a declared subset.
func (t *SubsetTable) size(name string) int {
	return len(t.members[name])
}
