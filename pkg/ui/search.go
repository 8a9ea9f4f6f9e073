// search.go - fuzzy feature search over the loaded model.
package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

// SearchModel is a one-line fuzzy finder over feature names. Enter jumps
// to the best match, escape dismisses.
type SearchModel struct {
	input  textinput.Model
	names  []string
	active bool
	theme  Theme
}

// NewSearchModel creates an inactive search bar.
func NewSearchModel(theme Theme) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "search features"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return SearchModel{input: ti, theme: theme}
}

// SetNames replaces the searchable name list.
func (s *SearchModel) SetNames(names []string) {
	s.names = names
}

// Activate focuses the search input.
func (s *SearchModel) Activate() tea.Cmd {
	s.active = true
	s.input.SetValue("")
	return s.input.Focus()
}

// Deactivate blurs and clears the input.
func (s *SearchModel) Deactivate() {
	s.active = false
	s.input.Blur()
	s.input.SetValue("")
}

// Active reports whether the search bar has focus.
func (s *SearchModel) Active() bool {
	return s.active
}

// Update forwards input events.
func (s *SearchModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

// Matches returns feature names ranked by fuzzy match quality. An empty
// query matches nothing.
func (s *SearchModel) Matches() []string {
	query := s.input.Value()
	if query == "" {
		return nil
	}
	matches := fuzzy.Find(query, s.names)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}

// BestMatch returns the top-ranked name, or "" when nothing matches.
func (s *SearchModel) BestMatch() string {
	if matches := s.Matches(); len(matches) > 0 {
		return matches[0]
	}
	return ""
}

// View renders the input line.
func (s *SearchModel) View() string {
	return s.input.View()
}
