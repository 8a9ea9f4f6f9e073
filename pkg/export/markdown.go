// Package export renders a session into shareable artifacts. The
// markdown report carries the feature tree, generated rules, minimum
// working products, and the state of the constraint translations.
package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanderheijden86/fmv/pkg/model"
)

// GenerateMarkdown creates a markdown report for one analyzed session.
func GenerateMarkdown(session *model.Session, title string) (string, error) {
	if session == nil {
		return "", fmt.Errorf("no session to export")
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC1123)))

	idx := model.NewIndex(session.Features)
	translated, pending := 0, 0
	for _, c := range session.Constraints {
		if c != nil && c.Translated() {
			translated++
		} else if c != nil {
			pending++
		}
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Features**: %d\n", idx.Len()))
	sb.WriteString(fmt.Sprintf("- **Logic rules**: %d\n", len(session.LogicRules)))
	sb.WriteString(fmt.Sprintf("- **Minimum working products**: %d\n", len(session.MWPs)))
	sb.WriteString(fmt.Sprintf("- **Constraints**: %d translated, %d pending\n\n", translated, pending))

	sb.WriteString("## Feature Tree\n\n")
	sb.WriteString("```mermaid\ngraph TD\n")
	hasEdges := false
	for _, name := range idx.Names() {
		node := idx.Lookup(name)
		label := name
		if node.Mandatory {
			label += " *"
		}
		if node.Group != model.GroupNone {
			label += fmt.Sprintf(" [%s]", node.Group)
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", mermaidID(name), label))
		if node.Parent != "" {
			arrow := "-->"
			if node.Mandatory {
				arrow = "==>"
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", mermaidID(node.Parent), arrow, mermaidID(name)))
			hasEdges = true
		}
	}
	if !hasEdges {
		sb.WriteString("    Empty[No features]\n")
	}
	sb.WriteString("```\n\n")
	sb.WriteString("Mandatory features are marked with `*` and bold arrows.\n\n---\n\n")

	sb.WriteString("## Logic Rules\n\n")
	if len(session.LogicRules) == 0 {
		sb.WriteString("_None generated._\n\n")
	}
	for _, rule := range session.LogicRules {
		sb.WriteString(fmt.Sprintf("- `%s`\n", rule))
	}
	sb.WriteString("\n")

	sb.WriteString("## Minimum Working Products\n\n")
	if len(session.MWPs) == 0 {
		sb.WriteString("_None found._\n\n")
	}
	for i, mwp := range session.MWPs {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, strings.Join(mwp, ", ")))
	}
	sb.WriteString("\n")

	if len(session.Constraints) > 0 {
		sb.WriteString("## Cross-Tree Constraints\n\n")
		sb.WriteString("| Statement | Type | Translation |\n")
		sb.WriteString("|---|---|---|\n")
		for _, c := range session.Constraints {
			if c == nil {
				continue
			}
			translation := "_pending_"
			if c.Translated() {
				translation = *c.Translation
				if translation == "" {
					translation = "_(empty)_"
				}
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				escapeCell(c.EnglishStatement), c.Type, escapeCell(translation)))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// SaveMarkdownToFile writes the session report to a file.
func SaveMarkdownToFile(session *model.Session, filename string) error {
	content, err := GenerateMarkdown(session, "Feature Model Report")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(content), 0644)
}

// mermaidID strips characters mermaid treats as syntax from node IDs.
func mermaidID(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, name)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
