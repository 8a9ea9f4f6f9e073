package logic

import (
	"fmt"

	"github.com/vanderheijden86/fmv/pkg/model"
)

// ValidateSelection judges a candidate configuration: the CNF is
// extended with a unit clause per feature pinning it to its selected or
// unselected state, and the result is satisfiability. On an invalid
// selection the verdict carries human-readable violation messages.
func (a *Analyzer) ValidateSelection(selected []string) model.ValidationResult {
	selectedSet := make(map[string]bool, len(selected))
	for _, name := range selected {
		selectedSet[name] = true
	}

	clauses := make([][]int, len(a.clauses), len(a.clauses)+a.NumVars())
	copy(clauses, a.clauses)
	for v := 1; v <= a.NumVars(); v++ {
		if selectedSet[a.nameOf[v]] {
			clauses = append(clauses, []int{v})
		} else {
			clauses = append(clauses, []int{-v})
		}
	}

	_, ok := solve(a.NumVars(), clauses)
	result := model.ValidationResult{IsValid: ok, Messages: []string{}}
	if !ok {
		result.Messages = a.violationMessages(selectedSet)
	}
	return result
}

// violationMessages explains why a selection is invalid, walking the tree
// in document order then checking cross-tree constraints. The phrasing is
// stable: consumers render these strings verbatim.
func (a *Analyzer) violationMessages(selected map[string]bool) []string {
	messages := []string{}

	var check func(f *model.FeatureNode)
	check = func(f *model.FeatureNode) {
		if f.Mandatory && f.Parent != "" && selected[f.Parent] && !selected[f.Name] {
			messages = append(messages, fmt.Sprintf("Missing mandatory feature: %s", f.Name))
		}

		if selected[f.Name] {
			switch f.Group {
			case model.GroupXOR:
				count := 0
				for _, child := range f.Children {
					if selected[child.Name] {
						count++
					}
				}
				if count != 1 {
					messages = append(messages, fmt.Sprintf("XOR group %s must have exactly one selection", f.Name))
				}
			case model.GroupOR:
				any := false
				for _, child := range f.Children {
					if selected[child.Name] {
						any = true
						break
					}
				}
				if !any {
					messages = append(messages, fmt.Sprintf("OR group %s must have at least one selection", f.Name))
				}
			}
		}

		// An unselected root (or unselected parent of a selected child)
		// violates the implication chain.
		for _, child := range f.Children {
			if selected[child.Name] && !selected[f.Name] {
				messages = append(messages, fmt.Sprintf("%s requires its parent %s", child.Name, f.Name))
			}
		}

		for _, child := range f.Children {
			check(child)
		}
	}
	for _, root := range a.idx.Roots() {
		if !selected[root.Name] {
			messages = append(messages, fmt.Sprintf("Root feature %s must be selected", root.Name))
		}
		check(root)
	}

	for _, edge := range a.requires {
		dependent, required := edge[0], edge[1]
		if selected[dependent] && !selected[required] {
			messages = append(messages, fmt.Sprintf("%s feature is required for %s", required, dependent))
		}
	}
	for _, edge := range a.excludes {
		if selected[edge[0]] && selected[edge[1]] {
			messages = append(messages, fmt.Sprintf("%s and %s are mutually exclusive", edge[0], edge[1]))
		}
	}

	return messages
}
