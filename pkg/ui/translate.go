// translate.go - modal dialog prompting for one constraint translation.
// The dialog fires at most once per upload; skipping or saving returns
// control to the tree, and the next untranslated constraint is only
// offered after the following upload.
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/vanderheijden86/fmv/pkg/model"
)

// TranslationDoneMsg reports the dialog outcome.
type TranslationDoneMsg struct {
	Constraint *model.Constraint
	Text       string
	Save       bool
}

// TranslateModel wraps a huh form asking for the propositional form of
// one English constraint statement.
type TranslateModel struct {
	form       *huh.Form
	constraint *model.Constraint
	text       string
	save       bool
	finished   bool
}

// NewTranslateModel builds the dialog for one constraint.
func NewTranslateModel(c *model.Constraint, theme Theme) *TranslateModel {
	m := &TranslateModel{constraint: c, save: true}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Translate constraint").
				Description(fmt.Sprintf("%q\nEnter the propositional form, e.g. A → B.", c.EnglishStatement)).
				Placeholder("leave empty for a blank translation").
				Value(&m.text),
			huh.NewConfirm().
				Title("Save this translation?").
				Affirmative("Save").
				Negative("Skip").
				Value(&m.save),
		),
	).WithTheme(huh.ThemeDracula())

	return m
}

// Init starts the form.
func (m *TranslateModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update drives the form and emits TranslationDoneMsg on completion.
func (m *TranslateModel) Update(msg tea.Msg) (*TranslateModel, tea.Cmd) {
	if m.finished {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted || m.form.State == huh.StateAborted {
		m.finished = true
		save := m.save && m.form.State == huh.StateCompleted
		done := func() tea.Msg {
			return TranslationDoneMsg{Constraint: m.constraint, Text: m.text, Save: save}
		}
		return m, tea.Batch(cmd, done)
	}

	return m, cmd
}

// Done reports whether the dialog has finished.
func (m *TranslateModel) Done() bool {
	return m.finished
}

// View renders the form.
func (m *TranslateModel) View() string {
	if m.finished {
		return ""
	}
	return m.form.View()
}
