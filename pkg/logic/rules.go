// Package logic derives propositional artifacts from a feature model:
// human-readable logic rules, a CNF encoding, minimum working products,
// and selection validation. This is the engine behind the analysis
// service; the interactive client only ever sees its outputs over HTTP.
package logic

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vanderheijden86/fmv/pkg/model"
)

// Analyzer holds the CNF encoding and rule list for one feature model.
// Build it once per uploaded model; all methods are read-only afterwards.
type Analyzer struct {
	idx         *model.Index
	constraints []*model.Constraint

	varOf  map[string]int
	nameOf []string // 1-based; nameOf[v] is the feature for variable v

	rules   []string
	clauses [][]int

	// cross-tree edges resolved from constraint statements
	requires [][2]string // [dependent, required]
	excludes [][2]string
}

// NewAnalyzer encodes the feature tree and cross-tree constraints.
func NewAnalyzer(idx *model.Index, constraints []*model.Constraint) *Analyzer {
	a := &Analyzer{
		idx:         idx,
		constraints: constraints,
		varOf:       make(map[string]int),
		nameOf:      []string{""}, // variable numbering starts at 1
	}
	a.encode()
	return a
}

// Rules returns the generated propositional rules in derivation order.
func (a *Analyzer) Rules() []string {
	return a.rules
}

// Requires returns resolved cross-tree dependency edges as
// [dependent, required] pairs. Callers must not mutate it.
func (a *Analyzer) Requires() [][2]string {
	return a.requires
}

// NumVars returns the number of propositional variables.
func (a *Analyzer) NumVars() int {
	return len(a.nameOf) - 1
}

// Clauses returns the CNF encoding. Callers must not mutate it.
func (a *Analyzer) Clauses() [][]int {
	return a.clauses
}

func (a *Analyzer) variable(name string) int {
	if v, ok := a.varOf[name]; ok {
		return v
	}
	v := len(a.nameOf)
	a.varOf[name] = v
	a.nameOf = append(a.nameOf, name)
	return v
}

func (a *Analyzer) addRule(rule string) {
	a.rules = append(a.rules, rule)
}

func (a *Analyzer) addClause(lits ...int) {
	a.clauses = append(a.clauses, lits)
}

// encode walks the tree depth-first emitting rules and clauses, then
// folds in the cross-tree constraints.
func (a *Analyzer) encode() {
	for _, root := range a.idx.Roots() {
		a.encodeFeature(root)
	}
	a.encodeConstraints()
}

func (a *Analyzer) encodeFeature(f *model.FeatureNode) {
	v := a.variable(f.Name)

	// Roots are facts.
	if f.Parent == "" {
		a.addClause(v)
		a.addRule(f.Name)
	}

	if f.Parent != "" {
		pv := a.variable(f.Parent)
		if f.Mandatory {
			// Mandatory children are bi-implied with their parent.
			a.addClause(-pv, v)
			a.addClause(-v, pv)
			a.addRule(fmt.Sprintf("%s → %s", f.Parent, f.Name))
			a.addRule(fmt.Sprintf("%s → %s", f.Name, f.Parent))
		} else {
			a.addClause(-v, pv)
			a.addRule(fmt.Sprintf("%s → %s", f.Name, f.Parent))
		}
	}

	switch f.Group {
	case model.GroupXOR:
		names := childNames(f)
		if len(names) > 0 {
			a.addRule(fmt.Sprintf("%s → (%s)", f.Name, strings.Join(names, " ∨ ")))
			a.addClause(a.atLeastOne(v, names)...)
			for i := 0; i < len(names); i++ {
				for j := i + 1; j < len(names); j++ {
					a.addRule(fmt.Sprintf("¬(%s ∧ %s)", names[i], names[j]))
					a.addClause(-a.variable(names[i]), -a.variable(names[j]))
				}
			}
		}
	case model.GroupOR:
		names := childNames(f)
		if len(names) > 0 {
			a.addRule(fmt.Sprintf("%s → (%s)", f.Name, strings.Join(names, " ∨ ")))
			a.addClause(a.atLeastOne(v, names)...)
		}
	}

	for _, child := range f.Children {
		a.encodeFeature(child)
	}
}

// atLeastOne builds the clause ¬parent ∨ c1 ∨ … ∨ cn.
func (a *Analyzer) atLeastOne(parentVar int, names []string) []int {
	lits := make([]int, 0, len(names)+1)
	lits = append(lits, -parentVar)
	for _, name := range names {
		lits = append(lits, a.variable(name))
	}
	return lits
}

func childNames(f *model.FeatureNode) []string {
	names := make([]string, len(f.Children))
	for i, c := range f.Children {
		names[i] = c.Name
	}
	return names
}

var camelBoundaryRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// encodeConstraints resolves cross-tree constraints by matching feature
// names mentioned in the English statement, in order of appearance.
// "X is required to <do something with> Y" reads as Y → X: the first
// named feature is the prerequisite, the last named feature depends on
// it. Statements naming fewer than two known features are left for the
// human translation queue and contribute no clause.
func (a *Analyzer) encodeConstraints() {
	for _, c := range a.constraints {
		if c == nil {
			continue
		}
		mentioned := a.mentionedFeatures(c.EnglishStatement)
		if len(mentioned) < 2 {
			continue
		}
		required, dependent := mentioned[0], mentioned[len(mentioned)-1]
		switch c.Type {
		case "requires":
			a.addRule(fmt.Sprintf("%s → %s", dependent, required))
			a.addClause(-a.variable(dependent), a.variable(required))
			a.requires = append(a.requires, [2]string{dependent, required})
		case "excludes":
			a.addRule(fmt.Sprintf("¬(%s ∧ %s)", required, dependent))
			a.addClause(-a.variable(required), -a.variable(dependent))
			a.excludes = append(a.excludes, [2]string{required, dependent})
		}
	}
}

// mentionedFeatures returns the known feature names referenced by the
// statement, ordered by first appearance. A feature matches either its
// literal name or its camel-case name spelled as words, so "filter by
// location" resolves to ByLocation. Matching is case-insensitive.
func (a *Analyzer) mentionedFeatures(statement string) []string {
	lower := strings.ToLower(statement)

	type hit struct {
		name string
		pos  int
		size int
	}
	var hits []hit
	for _, name := range a.idx.Names() {
		best := -1
		size := 0
		for _, form := range []string{strings.ToLower(name), spacedForm(name)} {
			if pos := strings.Index(lower, form); pos >= 0 && (best < 0 || pos < best || (pos == best && len(form) > size)) {
				best = pos
				size = len(form)
			}
		}
		if best >= 0 {
			hits = append(hits, hit{name: name, pos: best, size: size})
		}
	}

	// Order of appearance; longer matches win ties so ByLocation beats
	// Location when both start at the same offset.
	for i := 0; i < len(hits); i++ {
		for j := i + 1; j < len(hits); j++ {
			if hits[j].pos < hits[i].pos || (hits[j].pos == hits[i].pos && hits[j].size > hits[i].size) {
				hits[i], hits[j] = hits[j], hits[i]
			}
		}
	}

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

// spacedForm lowers a camel-case name into its spoken-word form:
// "ByLocation" becomes "by location".
func spacedForm(name string) string {
	return strings.ToLower(camelBoundaryRe.ReplaceAllString(name, "$1 $2"))
}
