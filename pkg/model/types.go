package model

import (
	"fmt"
)

// FeatureNode is one feature in the loaded model tree. The tree is
// immutable once a Session is built; all mutable state (selection,
// expansion) lives outside it and refers to features by Name.
type FeatureNode struct {
	Name      string         `json:"name"`
	Mandatory bool           `json:"mandatory"`
	Group     Group          `json:"group,omitempty"`
	Parent    string         `json:"parent,omitempty"`
	Children  []*FeatureNode `json:"children,omitempty"`
}

// Clone creates a deep copy of the node and its subtree.
func (f *FeatureNode) Clone() *FeatureNode {
	if f == nil {
		return nil
	}
	clone := *f
	if f.Children != nil {
		clone.Children = make([]*FeatureNode, len(f.Children))
		for i, child := range f.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return &clone
}

// Validate checks that the subtree rooted at f is structurally sound:
// non-empty unique names and Parent back-references that match the
// actual tree shape.
func (f *FeatureNode) Validate() error {
	seen := make(map[string]bool)
	return f.validate(seen, "")
}

func (f *FeatureNode) validate(seen map[string]bool, parent string) error {
	if f == nil {
		return fmt.Errorf("nil feature node")
	}
	if f.Name == "" {
		return fmt.Errorf("feature name cannot be empty")
	}
	if seen[f.Name] {
		return fmt.Errorf("duplicate feature name: %s", f.Name)
	}
	seen[f.Name] = true
	if f.Parent != parent {
		return fmt.Errorf("feature %s: parent back-reference %q does not match actual parent %q", f.Name, f.Parent, parent)
	}
	if !f.Group.IsValid() {
		return fmt.Errorf("feature %s: invalid group: %s", f.Name, f.Group)
	}
	for _, child := range f.Children {
		if err := child.validate(seen, f.Name); err != nil {
			return err
		}
	}
	return nil
}

// Group tags a feature whose children form a constrained sibling group.
// The empty string means the children are plain (unconstrained) subfeatures.
type Group string

const (
	GroupXOR  Group = "XOR" // exactly one child may be selected
	GroupOR   Group = "OR"  // at least one child must be selected
	GroupAND  Group = "AND" // no sibling constraint beyond mandatory flags
	GroupNone Group = ""
)

// IsValid returns true if the group is a recognized value.
func (g Group) IsValid() bool {
	switch g {
	case GroupXOR, GroupOR, GroupAND, GroupNone:
		return true
	}
	return false
}

// Constraint is one cross-tree constraint from the uploaded model.
// Translation is authored by a human reviewer during the session; nil
// means untranslated.
type Constraint struct {
	EnglishStatement string  `json:"englishStatement"`
	Type             string  `json:"type,omitempty"` // "requires" or "excludes"
	Translation      *string `json:"translation,omitempty"`
}

// Translated reports whether a translation has been recorded. An empty
// string is a valid translation; only nil counts as absent.
func (c *Constraint) Translated() bool {
	return c.Translation != nil
}

// ValidationResult is the validator's verdict for one selection snapshot.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Messages []string `json:"messages"`
}

// MWP is a minimum working product: a minimal valid selection expressed
// as feature names.
type MWP []string

// Session is the aggregate produced by one successful upload. It owns the
// feature tree, derived analysis artifacts, and the constraint list until
// the next upload replaces it wholesale.
type Session struct {
	ID          string         `json:"sessionId,omitempty"`
	Features    []*FeatureNode `json:"features"`
	LogicRules  []string       `json:"logicRules"`
	MWPs        []MWP          `json:"mwps"`
	Constraints []*Constraint  `json:"constraints"`
}

// Clone deep-copies the session so a caller can hold a snapshot across a
// reload without aliasing the live tree.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := &Session{ID: s.ID}
	clone.Features = make([]*FeatureNode, len(s.Features))
	for i, f := range s.Features {
		clone.Features[i] = f.Clone()
	}
	clone.LogicRules = append([]string(nil), s.LogicRules...)
	clone.MWPs = make([]MWP, len(s.MWPs))
	for i, m := range s.MWPs {
		clone.MWPs[i] = append(MWP(nil), m...)
	}
	clone.Constraints = make([]*Constraint, len(s.Constraints))
	for i, c := range s.Constraints {
		if c == nil {
			continue
		}
		cc := *c
		if c.Translation != nil {
			v := *c.Translation
			cc.Translation = &v
		}
		clone.Constraints[i] = &cc
	}
	return clone
}
