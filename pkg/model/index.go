package model

// Index provides name-based lookups over a feature tree. The tree stores
// parent back-references by name rather than pointer, so every traversal
// that crosses levels goes through the index.
type Index struct {
	roots []*FeatureNode
	nodes map[string]*FeatureNode
}

// NewIndex builds an index over the given root features. Duplicate names
// keep the first occurrence; Validate catches duplicates before a tree
// gets this far.
func NewIndex(roots []*FeatureNode) *Index {
	idx := &Index{
		roots: roots,
		nodes: make(map[string]*FeatureNode),
	}
	var walk func(n *FeatureNode)
	walk = func(n *FeatureNode) {
		if n == nil {
			return
		}
		if _, ok := idx.nodes[n.Name]; !ok {
			idx.nodes[n.Name] = n
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return idx
}

// Roots returns the root features in their original order.
func (idx *Index) Roots() []*FeatureNode {
	return idx.roots
}

// Lookup returns the node with the given name, or nil if absent.
func (idx *Index) Lookup(name string) *FeatureNode {
	return idx.nodes[name]
}

// Contains reports whether a feature with the given name exists.
func (idx *Index) Contains(name string) bool {
	_, ok := idx.nodes[name]
	return ok
}

// Len returns the number of indexed features.
func (idx *Index) Len() int {
	return len(idx.nodes)
}

// ParentOf returns the parent node of the named feature, or nil for roots
// and unknown names.
func (idx *Index) ParentOf(name string) *FeatureNode {
	node := idx.nodes[name]
	if node == nil || node.Parent == "" {
		return nil
	}
	return idx.nodes[node.Parent]
}

// Descendants returns every feature name in the subtree below the named
// feature, depth-first, excluding the feature itself.
func (idx *Index) Descendants(name string) []string {
	node := idx.nodes[name]
	if node == nil {
		return nil
	}
	var out []string
	var walk func(n *FeatureNode)
	walk = func(n *FeatureNode) {
		for _, child := range n.Children {
			out = append(out, child.Name)
			walk(child)
		}
	}
	walk(node)
	return out
}

// Names returns all feature names, depth-first from each root. The order
// is deterministic for a given tree.
func (idx *Index) Names() []string {
	var out []string
	var walk func(n *FeatureNode)
	walk = func(n *FeatureNode) {
		if n == nil {
			return
		}
		out = append(out, n.Name)
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, root := range idx.roots {
		walk(root)
	}
	return out
}
