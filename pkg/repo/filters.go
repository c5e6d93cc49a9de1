package repo

import (
	"fmt"
	"strings"
)

// Predicate is one parameterized comparison against a column. Only equality
// and range comparisons exist: anything fancier belongs in hand-written SQL.
type Predicate struct {
	column string
	op     string
	value  any
}

func Eq(column string, value any) Predicate  { return Predicate{column: column, op: "=", value: value} }
func Gte(column string, value any) Predicate { return Predicate{column: column, op: ">=", value: value} }
func Lte(column string, value any) Predicate { return Predicate{column: column, op: "<=", value: value} }

// FilterSet accumulates predicates and renders them as a parameterized WHERE
// fragment. Nil-valued predicates are dropped, which lets callers map an
// optional-field filter object straight onto a FilterSet.
type FilterSet struct {
	predicates []Predicate
}

func NewFilterSet() *FilterSet {
	return &FilterSet{}
}

func (f *FilterSet) Add(p Predicate) *FilterSet {
	if p.value == nil {
		return f
	}
	if s, ok := p.value.(string); ok && s == "" {
		return f
	}
	f.predicates = append(f.predicates, p)
	return f
}

func (f *FilterSet) Empty() bool {
	return len(f.predicates) == 0
}

// Build renders the predicates as "col = $n AND col2 >= $n+1 ..." with
// placeholders starting at argOffset+1, returning the fragment and its args.
// An empty set renders as "TRUE" so callers can always interpolate into
// "WHERE %s".
func (f *FilterSet) Build(argOffset int) (string, []any) {
	if len(f.predicates) == 0 {
		return "TRUE", nil
	}
	clauses := make([]string, 0, len(f.predicates))
	args := make([]any, 0, len(f.predicates))
	for i, p := range f.predicates {
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", p.column, p.op, argOffset+i+1))
		args = append(args, p.value)
	}
	return strings.Join(clauses, " AND "), args
}
