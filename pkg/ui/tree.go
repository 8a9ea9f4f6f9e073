// tree.go - interactive feature tree with checkboxes and expand/collapse
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/fmv/pkg/model"
	"github.com/vanderheijden86/fmv/pkg/selection"
)

// FeatureTreeModel manages the feature tree view: cursor movement,
// expand/collapse state, and the selection checkboxes. Expansion is
// purely cosmetic and never influences the selection.
type FeatureTreeModel struct {
	idx      *model.Index
	selected selection.Set
	expanded map[string]bool

	flatList []*model.FeatureNode
	cursor   int
	width    int
	height   int
	offset   int // first visible row

	theme Theme
	built bool
}

// NewFeatureTreeModel creates an empty tree model.
func NewFeatureTreeModel(theme Theme) FeatureTreeModel {
	return FeatureTreeModel{
		theme:    theme,
		selected: selection.NewSet(),
		expanded: make(map[string]bool),
	}
}

// SetSize updates the available dimensions.
func (t *FeatureTreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.clampScroll()
}

// Build replaces the tree contents after an upload. Selection and
// expansion both reset, even when the new tree reuses the old names;
// the first two levels start expanded.
func (t *FeatureTreeModel) Build(features []*model.FeatureNode) {
	t.idx = model.NewIndex(features)
	t.selected = selection.NewSet()
	t.expanded = make(map[string]bool)
	t.cursor = 0
	t.offset = 0

	t.rebuildFlatList()
	t.built = true
}

// Selection returns the current selection. Callers must not mutate it.
func (t *FeatureTreeModel) Selection() selection.Set {
	return t.selected
}

// SelectedNames returns the selection as a sorted name list.
func (t *FeatureTreeModel) SelectedNames() []string {
	return t.selected.Names()
}

// CurrentFeature returns the feature under the cursor, or nil.
func (t *FeatureTreeModel) CurrentFeature() *model.FeatureNode {
	if t.cursor >= 0 && t.cursor < len(t.flatList) {
		return t.flatList[t.cursor]
	}
	return nil
}

// Toggle flips the checkbox under the cursor and returns whether the
// selection changed. Features disabled by a chosen XOR sibling reject
// the toggle.
func (t *FeatureTreeModel) Toggle() bool {
	node := t.CurrentFeature()
	if node == nil {
		return false
	}
	if selection.Disabled(t.idx, t.selected, node.Name) {
		return false
	}
	next := selection.Toggle(t.idx, t.selected, node.Name, !t.selected.Has(node.Name))
	changed := !next.Equal(t.selected)
	t.selected = next
	return changed
}

// ToggleExpand flips the expansion of the node under the cursor.
// Selection is untouched.
func (t *FeatureTreeModel) ToggleExpand() {
	node := t.CurrentFeature()
	if node == nil || len(node.Children) == 0 {
		return
	}
	t.expanded[node.Name] = !t.isExpanded(node)
	t.rebuildFlatList()
}

// ExpandAll opens every node.
func (t *FeatureTreeModel) ExpandAll() {
	t.walkAll(func(n *model.FeatureNode) {
		if len(n.Children) > 0 {
			t.expanded[n.Name] = true
		}
	})
	t.rebuildFlatList()
}

// CollapseAll closes every node.
func (t *FeatureTreeModel) CollapseAll() {
	t.walkAll(func(n *model.FeatureNode) {
		if len(n.Children) > 0 {
			t.expanded[n.Name] = false
		}
	})
	t.rebuildFlatList()
}

// MoveDown moves the cursor down one visible row.
func (t *FeatureTreeModel) MoveDown() {
	if t.cursor < len(t.flatList)-1 {
		t.cursor++
		t.clampScroll()
	}
}

// MoveUp moves the cursor up one visible row.
func (t *FeatureTreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.clampScroll()
	}
}

// JumpTo moves the cursor to the named feature, expanding ancestors so
// it is visible. Reports whether the feature exists.
func (t *FeatureTreeModel) JumpTo(name string) bool {
	if t.idx == nil || !t.idx.Contains(name) {
		return false
	}
	for node := t.idx.ParentOf(name); node != nil; node = t.idx.ParentOf(node.Name) {
		t.expanded[node.Name] = true
	}
	t.rebuildFlatList()
	for i, n := range t.flatList {
		if n.Name == name {
			t.cursor = i
			t.clampScroll()
			return true
		}
	}
	return false
}

// VisibleCount returns the number of rows in the flattened view.
func (t *FeatureTreeModel) VisibleCount() int {
	return len(t.flatList)
}

func (t *FeatureTreeModel) isExpanded(n *model.FeatureNode) bool {
	if open, ok := t.expanded[n.Name]; ok {
		return open
	}
	return t.depthOf(n) < 2
}

func (t *FeatureTreeModel) depthOf(n *model.FeatureNode) int {
	depth := 0
	for p := t.idx.ParentOf(n.Name); p != nil; p = t.idx.ParentOf(p.Name) {
		depth++
	}
	return depth
}

func (t *FeatureTreeModel) walkAll(fn func(*model.FeatureNode)) {
	if t.idx == nil {
		return
	}
	var walk func(*model.FeatureNode)
	walk = func(n *model.FeatureNode) {
		fn(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, root := range t.idx.Roots() {
		walk(root)
	}
}

// rebuildFlatList flattens visible nodes depth-first, skipping children
// of collapsed nodes.
func (t *FeatureTreeModel) rebuildFlatList() {
	t.flatList = t.flatList[:0]
	if t.idx == nil {
		return
	}
	var walk func(*model.FeatureNode)
	walk = func(n *model.FeatureNode) {
		t.flatList = append(t.flatList, n)
		if !t.isExpanded(n) {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, root := range t.idx.Roots() {
		walk(root)
	}
	if t.cursor >= len(t.flatList) {
		t.cursor = len(t.flatList) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.clampScroll()
}

func (t *FeatureTreeModel) clampScroll() {
	if t.height <= 0 {
		return
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+t.height {
		t.offset = t.cursor - t.height + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// View renders the visible window of the tree.
func (t *FeatureTreeModel) View() string {
	if !t.built || len(t.flatList) == 0 {
		return t.renderEmptyState()
	}

	end := len(t.flatList)
	if t.height > 0 && t.offset+t.height < end {
		end = t.offset + t.height
	}

	var sb strings.Builder
	for i := t.offset; i < end; i++ {
		node := t.flatList[i]
		line := t.renderNode(node)
		if i == t.cursor {
			line = t.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *FeatureTreeModel) renderEmptyState() string {
	title := lipgloss.NewStyle().Foreground(t.theme.Primary).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.theme.Muted)

	var sb strings.Builder
	sb.WriteString(title.Render("Feature Model"))
	sb.WriteString("\n\n")
	sb.WriteString(muted.Render("No model loaded."))
	sb.WriteString("\n")
	sb.WriteString(muted.Render("Press u to upload a feature model XML file."))
	return sb.String()
}

// renderNode draws one row: branch prefix, expand indicator, checkbox,
// name, and group/mandatory markers.
func (t *FeatureTreeModel) renderNode(node *model.FeatureNode) string {
	var sb strings.Builder

	prefix := t.buildTreePrefix(node)
	sb.WriteString(t.theme.Tree.Render(prefix))

	switch {
	case len(node.Children) == 0:
		sb.WriteString(t.theme.Tree.Render("•"))
	case t.isExpanded(node):
		sb.WriteString(t.theme.Tree.Render("▾"))
	default:
		sb.WriteString(t.theme.Tree.Render("▸"))
	}
	sb.WriteString(" ")

	disabled := selection.Disabled(t.idx, t.selected, node.Name)
	if t.selected.Has(node.Name) {
		sb.WriteString(t.theme.Checked.Render("[x]"))
	} else if disabled {
		sb.WriteString(t.theme.Disabled.Render("[-]"))
	} else {
		sb.WriteString("[ ]")
	}
	sb.WriteString(" ")

	name := t.truncateName(node.Name, prefix)
	switch {
	case disabled:
		sb.WriteString(t.theme.Disabled.Render(name))
	case node.Mandatory:
		sb.WriteString(t.theme.Mandatory.Render(name + " *"))
	default:
		sb.WriteString(name)
	}

	if node.Group != model.GroupNone {
		sb.WriteString(" ")
		sb.WriteString(t.theme.GroupTag.Render(fmt.Sprintf("[%s]", node.Group)))
	}

	return sb.String()
}

func (t *FeatureTreeModel) buildTreePrefix(node *model.FeatureNode) string {
	depth := t.depthOf(node)
	if depth == 0 {
		return ""
	}
	var parts []string
	for i := 0; i < depth-1; i++ {
		parts = append(parts, "│  ")
	}
	if t.isLastChild(node) {
		parts = append(parts, "└─ ")
	} else {
		parts = append(parts, "├─ ")
	}
	return strings.Join(parts, "")
}

func (t *FeatureTreeModel) isLastChild(node *model.FeatureNode) bool {
	parent := t.idx.ParentOf(node.Name)
	if parent == nil {
		roots := t.idx.Roots()
		return len(roots) > 0 && roots[len(roots)-1] == node
	}
	return len(parent.Children) > 0 && parent.Children[len(parent.Children)-1] == node
}

// truncateName keeps rows inside the panel width, accounting for the
// prefix and fixed decorations.
func (t *FeatureTreeModel) truncateName(name, prefix string) string {
	if t.width <= 0 {
		return name
	}
	avail := t.width - runewidth.StringWidth(prefix) - 12
	if avail < 8 {
		avail = 8
	}
	return runewidth.Truncate(name, avail, "…")
}
