package logic

import (
	"sort"

	"github.com/vanderheijden86/fmv/pkg/model"
)

// mwpEnumerationCap bounds the number of solver iterations during MWP
// enumeration so a pathological model cannot hang an upload. Feature
// models in practice have a handful of products.
const mwpEnumerationCap = 4096

// MWPs enumerates minimum working products: satisfying assignments of
// the model's CNF, filtered to those respecting mandatory closure, then
// reduced to the subset-minimal ones. Results are deterministic: each
// MWP is sorted by feature name and the list is ordered by size, then
// lexicographically.
func (a *Analyzer) MWPs() []model.MWP {
	clauses := make([][]int, len(a.clauses))
	copy(clauses, a.clauses)

	var candidates []map[string]bool
	for i := 0; i < mwpEnumerationCap; i++ {
		assign, ok := solve(a.NumVars(), clauses)
		if !ok {
			break
		}

		product := make(map[string]bool)
		blocking := make([]int, 0, a.NumVars())
		for v := 1; v <= a.NumVars(); v++ {
			if assign[v] == assignedTrue {
				product[a.nameOf[v]] = true
				blocking = append(blocking, -v)
			}
		}

		if a.mandatoryClosed(product) {
			candidates = append(candidates, product)
		}

		if len(blocking) == 0 {
			break // empty product; nothing left to block
		}
		clauses = append(clauses, blocking)
	}

	minimal := filterMinimal(candidates)

	out := make([]model.MWP, 0, len(minimal))
	for _, product := range minimal {
		mwp := make(model.MWP, 0, len(product))
		for name := range product {
			mwp = append(mwp, name)
		}
		sort.Strings(mwp)
		out = append(out, mwp)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		for k := range out[i] {
			if out[i][k] != out[j][k] {
				return out[i][k] < out[j][k]
			}
		}
		return false
	})
	return out
}

// mandatoryClosed reports whether every mandatory feature whose parent is
// in the product is itself in the product.
func (a *Analyzer) mandatoryClosed(product map[string]bool) bool {
	for _, name := range a.idx.Names() {
		node := a.idx.Lookup(name)
		if node.Mandatory && node.Parent != "" && product[node.Parent] && !product[name] {
			return false
		}
	}
	return true
}

// filterMinimal drops any product that strictly contains another product.
func filterMinimal(products []map[string]bool) []map[string]bool {
	var out []map[string]bool
	for i, p := range products {
		minimal := true
		for j, other := range products {
			if i == j {
				continue
			}
			if isSubset(other, p) && !sameSet(other, p) {
				minimal = false
				break
			}
		}
		if minimal {
			out = append(out, p)
		}
	}
	return out
}

func isSubset(sub, super map[string]bool) bool {
	if len(sub) > len(super) {
		return false
	}
	for name := range sub {
		if !super[name] {
			return false
		}
	}
	return true
}

func sameSet(a, b map[string]bool) bool {
	return len(a) == len(b) && isSubset(a, b)
}
