// Package selection implements the feature-selection state machine: the
// cascade rules for toggling features, and the derived disabled state for
// XOR group members. All transitions are pure functions over (tree, set)
// so they can be exercised without any rendering harness.
package selection

import (
	"sort"

	"github.com/vanderheijden86/fmv/pkg/model"
)

// Set is the candidate configuration: the names of currently selected
// features. Insertion order is irrelevant; Names() materializes a sorted
// view for wire transfer.
type Set map[string]bool

// NewSet returns an empty selection.
func NewSet() Set {
	return make(Set)
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for name := range s {
		out[name] = true
	}
	return out
}

// Has reports whether the named feature is selected.
func (s Set) Has(name string) bool {
	return s[name]
}

// Len returns the number of selected features.
func (s Set) Len() int {
	return len(s)
}

// Names returns the selected feature names in sorted order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether two sets select the same features.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for name := range s {
		if !other[name] {
			return false
		}
	}
	return true
}

// Toggle applies the cascade for setting the named feature to checked and
// returns the resulting selection. The input set is never mutated.
//
// Checking a feature:
//   - adds the feature itself;
//   - adds its direct parent (one level only; deeper ancestors are left
//     for the validator to flag);
//   - if the feature belongs to an XOR group (its parent is XOR-tagged),
//     removes every other member of that group;
//   - if the feature itself heads an XOR group, removes the group's
//     children, so selecting the head starts the group empty.
//
// Unchecking a feature removes it and, recursively, its entire subtree:
// nothing may stay selected below an unselected ancestor.
//
// The named feature must exist in the tree; toggling an unknown name is a
// caller bug and returns the selection unchanged.
func Toggle(idx *model.Index, set Set, name string, checked bool) Set {
	node := idx.Lookup(name)
	if node == nil {
		return set.Clone()
	}

	next := set.Clone()
	if checked {
		next[name] = true
		if node.Parent != "" {
			next[node.Parent] = true
		}
		if parent := idx.ParentOf(name); parent != nil && parent.Group == model.GroupXOR {
			for _, sibling := range parent.Children {
				if sibling.Name != name {
					delete(next, sibling.Name)
				}
			}
		}
		if node.Group == model.GroupXOR {
			for _, child := range node.Children {
				delete(next, child.Name)
			}
		}
		return next
	}

	delete(next, name)
	for _, desc := range idx.Descendants(name) {
		delete(next, desc)
	}
	return next
}

// Disabled reports whether the named feature must reject a new selection
// attempt: it sits under a selected XOR parent that already has a
// different selected child. Pure function of (tree, selection); callers
// must not cache the result across toggles.
func Disabled(idx *model.Index, set Set, name string) bool {
	parent := idx.ParentOf(name)
	if parent == nil || parent.Group != model.GroupXOR {
		return false
	}
	if !set.Has(parent.Name) {
		return false
	}
	for _, sibling := range parent.Children {
		if sibling.Name != name && set.Has(sibling.Name) {
			return true
		}
	}
	return false
}

// Prune removes every selected name that does not exist in the tree.
// Used when a stale selection meets a freshly loaded model; under normal
// operation an upload replaces the selection with an empty set instead.
func Prune(idx *model.Index, set Set) Set {
	next := make(Set, len(set))
	for name := range set {
		if idx.Contains(name) {
			next[name] = true
		}
	}
	return next
}
