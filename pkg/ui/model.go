// Package ui provides the terminal interface for fmv: a checkbox
// feature tree backed by the analysis service, with live validation,
// constraint translation prompts, and a detail panel for the generated
// artifacts.
package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/fmv/pkg/model"
	"github.com/vanderheijden86/fmv/pkg/translation"
)

// SplitViewThreshold is the minimum width for the side-by-side layout.
const SplitViewThreshold = 100

// Service is the analysis backend the UI talks to. Satisfied by
// client.Client.
type Service interface {
	Upload(ctx context.Context, filename string, content []byte) (*model.Session, error)
	Validate(ctx context.Context, selected []string) (model.ValidationResult, error)
}

// SessionMsg carries the result of an upload.
type SessionMsg struct {
	Session *model.Session
	Err     error
}

// ModelChangedMsg signals that the watched model file changed on disk.
type ModelChangedMsg struct{}

type focus int

const (
	focusTree focus = iota
	focusDetail
)

// Model is the root bubbletea model.
type Model struct {
	service   Service
	modelPath string
	timeout   time.Duration

	session     *model.Session
	queue       *translation.Queue
	tree        FeatureTreeModel
	coordinator *ValidationCoordinator
	search      SearchModel
	translate   *TranslateModel
	viewport    viewport.Model
	renderer    *glamour.TermRenderer

	theme       Theme
	focused     focus
	width       int
	height      int
	ready       bool
	banner      string
	showHelp    bool
	promptedFor string // session ID the translation dialog already fired for
}

// NewModel wires the root model. modelPath may be empty; uploads then
// happen only via the u key after pointing fmv at a file.
func NewModel(service Service, modelPath string, timeout time.Duration, theme Theme) Model {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return Model{
		service:     service,
		modelPath:   modelPath,
		timeout:     timeout,
		theme:       theme,
		tree:        NewFeatureTreeModel(theme),
		coordinator: NewValidationCoordinator(service, timeout),
		search:      NewSearchModel(theme),
	}
}

// UploadCmd reads the model file and uploads it to the service.
func UploadCmd(service Service, path string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		content, err := os.ReadFile(path)
		if err != nil {
			return SessionMsg{Err: fmt.Errorf("read %s: %w", path, err)}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		session, err := service.Upload(ctx, filepath.Base(path), content)
		return SessionMsg{Session: session, Err: err}
	}
}

func (m Model) Init() tea.Cmd {
	if m.modelPath != "" {
		return UploadCmd(m.service, m.modelPath, m.timeout)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.refreshDetail()
		return m, nil

	case SessionMsg:
		return m.applySession(msg)

	case ValidationMsg:
		stale := m.coordinator.Stale(msg)
		if m.coordinator.Apply(msg) {
			m.refreshDetail()
		}
		// A failure from a superseded request must not surface over
		// the verdict of the current selection.
		if msg.Err != nil && !stale {
			m.banner = fmt.Sprintf("validation failed: %v", msg.Err)
		}
		return m, nil

	case ModelChangedMsg:
		if m.modelPath != "" {
			return m, UploadCmd(m.service, m.modelPath, m.timeout)
		}
		return m, nil

	case TranslationDoneMsg:
		if m.queue != nil && msg.Constraint != nil {
			if msg.Save {
				m.queue.Save(msg.Constraint, msg.Text)
			} else {
				m.queue.Skip(msg.Constraint)
			}
		}
		m.translate = nil
		m.refreshDetail()
		return m, nil
	}

	// Modal translation dialog swallows everything else.
	if m.translate != nil && !m.translate.Done() {
		var cmd tea.Cmd
		m.translate, cmd = m.translate.Update(msg)
		return m, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.search.Active() {
		switch msg.String() {
		case "enter":
			if best := m.search.BestMatch(); best != "" {
				m.tree.JumpTo(best)
			}
			m.search.Deactivate()
			return m, nil
		case "esc":
			m.search.Deactivate()
			return m, nil
		default:
			return m, m.search.Update(msg)
		}
	}

	switch msg.String() {
	case "ctrl+c", "q":
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "esc":
		m.showHelp = false
		m.banner = ""
		return m, nil

	case "x":
		m.banner = ""
		return m, nil

	case "tab":
		if m.focused == focusTree {
			m.focused = focusDetail
		} else {
			m.focused = focusTree
		}
		return m, nil

	case "/":
		return m, m.search.Activate()

	case "u":
		if m.modelPath != "" {
			return m, UploadCmd(m.service, m.modelPath, m.timeout)
		}
		m.banner = "no model file configured"
		return m, nil

	case "y":
		m.yankRules()
		return m, nil
	}

	if m.focused == focusDetail {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "j", "down":
		m.tree.MoveDown()
	case "k", "up":
		m.tree.MoveUp()
	case " ", "enter":
		if m.tree.Toggle() {
			return m, m.coordinator.ValidateCmd(m.tree.SelectedNames())
		}
	case "e", "l", "h", "right", "left":
		m.tree.ToggleExpand()
	case "E":
		m.tree.ExpandAll()
	case "C":
		m.tree.CollapseAll()
	}
	return m, nil
}

// applySession replaces all per-session state. Selection, expansion
// defaults, the verdict, and the translation queue all reset; nothing
// from the previous session survives except expansion of names that
// still exist.
func (m Model) applySession(msg SessionMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.banner = fmt.Sprintf("upload failed: %v", msg.Err)
		return m, nil
	}

	m.session = msg.Session
	m.queue = translation.NewQueue(msg.Session.Constraints)
	m.tree.Build(msg.Session.Features)
	m.coordinator.Reset()
	m.search.SetNames(model.NewIndex(msg.Session.Features).Names())
	m.banner = ""
	m.refreshDetail()

	var cmds []tea.Cmd

	// One translation prompt per upload, for the first untranslated
	// constraint. Later constraints wait for the next upload.
	if m.promptedFor != msg.Session.ID {
		if next := m.queue.NextUntranslated(); next != nil {
			m.promptedFor = msg.Session.ID
			m.translate = NewTranslateModel(next, m.theme)
			cmds = append(cmds, m.translate.Init())
		}
	}

	return m, tea.Batch(cmds...)
}

// yankRules copies the session's logic rules to the system clipboard.
func (m *Model) yankRules() {
	if m.session == nil || len(m.session.LogicRules) == 0 {
		m.banner = "nothing to copy"
		return
	}
	if err := clipboard.WriteAll(strings.Join(m.session.LogicRules, "\n")); err != nil {
		m.banner = fmt.Sprintf("clipboard: %v", err)
	}
}

func (m *Model) layout() {
	headerH, footerH := 1, 2
	bodyH := m.height - headerH - footerH
	if bodyH < 3 {
		bodyH = 3
	}

	if m.width >= SplitViewThreshold {
		treeW := m.width / 2
		m.tree.SetSize(treeW-4, bodyH-2)
		m.viewport = viewport.New(m.width-treeW-4, bodyH-2)
	} else {
		m.tree.SetSize(m.width-4, bodyH-2)
		m.viewport = viewport.New(m.width-4, bodyH-2)
	}

	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.viewport.Width),
	)
}

// refreshDetail rebuilds the detail panel markdown from the session and
// the current verdict.
func (m *Model) refreshDetail() {
	if m.session == nil || m.renderer == nil {
		return
	}

	var sb strings.Builder
	verdict := m.coordinator.Verdict()
	if verdict.Known {
		if verdict.Result.IsValid {
			sb.WriteString("## Valid configuration\n\n")
		} else {
			sb.WriteString("## Invalid configuration\n\n")
			for _, msg := range verdict.Result.Messages {
				sb.WriteString(fmt.Sprintf("- %s\n", msg))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("## Logic Rules\n\n")
	for _, rule := range m.session.LogicRules {
		sb.WriteString(fmt.Sprintf("- `%s`\n", rule))
	}

	sb.WriteString("\n## Minimum Working Products\n\n")
	for i, mwp := range m.session.MWPs {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, strings.Join(mwp, ", ")))
	}

	if m.queue != nil && m.queue.Pending() > 0 {
		sb.WriteString(fmt.Sprintf("\n## Constraints\n\n%d awaiting translation.\n", m.queue.Pending()))
	}

	rendered, err := m.renderer.Render(sb.String())
	if err != nil {
		rendered = sb.String()
	}
	m.viewport.SetContent(rendered)
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	if m.translate != nil && !m.translate.Done() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.translate.View())
	}
	if m.showHelp {
		return m.helpView()
	}

	header := lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true).Render("fmv — feature model viewer")

	treePanel := m.theme.Panel
	detailPanel := m.theme.Panel
	if m.focused == focusTree {
		treePanel = m.theme.FocusedPanel
	} else {
		detailPanel = m.theme.FocusedPanel
	}

	var body string
	if m.width >= SplitViewThreshold {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			treePanel.Width(m.width/2-2).Render(m.tree.View()),
			detailPanel.Width(m.width-m.width/2-2).Render(m.viewport.View()),
		)
	} else if m.focused == focusDetail {
		body = detailPanel.Width(m.width - 2).Render(m.viewport.View())
	} else {
		body = treePanel.Width(m.width - 2).Render(m.tree.View())
	}

	parts := []string{header, body}
	if m.search.Active() {
		parts = append(parts, m.search.View())
	}
	if m.banner != "" {
		parts = append(parts, m.theme.Banner.Render(m.banner+"  (x to dismiss)"))
	}
	parts = append(parts, m.footerView())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) footerView() string {
	verdict := m.coordinator.Verdict()
	status := m.theme.Footer.Render("no verdict yet")
	switch {
	case m.coordinator.Busy():
		status = m.theme.Footer.Render("validating…")
	case verdict.Known && verdict.Result.IsValid:
		status = m.theme.Valid.Render("✓ valid")
	case verdict.Known:
		status = m.theme.Invalid.Render(fmt.Sprintf("✗ invalid (%d issues)", len(verdict.Result.Messages)))
	}

	selected := m.theme.Footer.Render(fmt.Sprintf("%d selected", m.tree.Selection().Len()))
	help := m.theme.Footer.Render("space toggle · e expand · / search · y yank · ? help · q quit")
	return lipgloss.JoinHorizontal(lipgloss.Left, status, "  ", selected, "  ", help)
}

func (m Model) helpView() string {
	rows := [][2]string{
		{"j/k, ↑/↓", "move cursor"},
		{"space, enter", "toggle feature selection"},
		{"e, l/h", "expand or collapse node"},
		{"E / C", "expand all / collapse all"},
		{"/", "fuzzy search features"},
		{"tab", "switch panel focus"},
		{"u", "re-upload the model file"},
		{"y", "copy logic rules to clipboard"},
		{"x, esc", "dismiss error banner"},
		{"q, ctrl+c", "quit"},
	}

	key := lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true).Width(16)
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Key bindings"))
	sb.WriteString("\n\n")
	for _, row := range rows {
		sb.WriteString(key.Render(row[0]))
		sb.WriteString(row[1])
		sb.WriteString("\n")
	}
	sb.WriteString("\nPress ? or q to close.")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
