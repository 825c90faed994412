// Package tui provides the interactive review screen for deposits the
// classifier could not decide on.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/the-wall-must-hold/internal/cli"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

// Resolver records the user's decision for a deposit.
type Resolver interface {
	Reclassify(ctx context.Context, depositID string, typ model.DepositType, employerID string) error
}

type itemState int

const (
	itemPending itemState = iota
	itemSalary
	itemOther
	itemSkipped
)

type resolvedMsg struct {
	err   error
	index int
	typ   model.DepositType
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(cli.PrimaryColor).MarginBottom(1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fafafa"))
	mutedStyle    = lipgloss.NewStyle().Foreground(cli.SubtleColor)
	statusStyles  = map[itemState]lipgloss.Style{
		itemPending: mutedStyle,
		itemSalary:  cli.SuccessStyle,
		itemOther:   cli.InfoStyle,
		itemSkipped: mutedStyle,
	}
	statusLabels = map[itemState]string{
		itemPending: "pending",
		itemSalary:  "salary",
		itemOther:   "other",
		itemSkipped: "skipped",
	}
)

// ReviewModel is the bubbletea model for the review queue.
type ReviewModel struct {
	ctx       context.Context
	resolver  Resolver
	lastError error
	employers map[string]string
	help      help.Model
	keymap    KeyMap
	deposits  []model.Deposit
	states    []itemState
	cursor    int
	busy      bool
	quitting  bool
}

// NewReviewModel creates a review model for deposits. employers maps
// employer IDs to display names.
func NewReviewModel(ctx context.Context, resolver Resolver, deposits []model.Deposit, employers map[string]string) ReviewModel {
	return ReviewModel{
		ctx:       ctx,
		resolver:  resolver,
		deposits:  deposits,
		states:    make([]itemState, len(deposits)),
		employers: employers,
		keymap:    DefaultKeyMap(),
		help:      help.New(),
	}
}

// Init implements tea.Model.
func (m ReviewModel) Init() tea.Cmd {
	if len(m.deposits) == 0 {
		return tea.Quit
	}
	return nil
}

// Update implements tea.Model.
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case resolvedMsg:
		m.busy = false
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		if msg.typ == model.DepositSalary {
			m.states[msg.index] = itemSalary
		} else {
			m.states[msg.index] = itemOther
		}
		return m.advance()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ReviewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.busy || len(m.deposits) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Next):
		if m.cursor < len(m.deposits)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.Prev):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Salary):
		m.busy = true
		return m, m.resolve(m.cursor, model.DepositSalary)
	case key.Matches(msg, m.keymap.Other):
		m.busy = true
		return m, m.resolve(m.cursor, model.DepositOther)
	case key.Matches(msg, m.keymap.Skip):
		if m.states[m.cursor] == itemPending {
			m.states[m.cursor] = itemSkipped
		}
		return m.advance()
	}
	return m, nil
}

func (m ReviewModel) resolve(index int, typ model.DepositType) tea.Cmd {
	d := m.deposits[index]
	ctx := m.ctx
	resolver := m.resolver
	return func() tea.Msg {
		employerID := ""
		if typ == model.DepositSalary {
			employerID = d.Classification.EmployerID
		}
		err := resolver.Reclassify(ctx, d.ID, typ, employerID)
		return resolvedMsg{index: index, typ: typ, err: err}
	}
}

// advance moves to the next pending deposit, or quits when none remain.
func (m ReviewModel) advance() (tea.Model, tea.Cmd) {
	for i := 1; i <= len(m.deposits); i++ {
		next := (m.cursor + i) % len(m.deposits)
		if m.states[next] == itemPending {
			m.cursor = next
			return m, nil
		}
	}
	m.quitting = true
	return m, tea.Quit
}

// View implements tea.Model.
func (m ReviewModel) View() string {
	if len(m.deposits) == 0 {
		return cli.FormatSuccess("Nothing to review") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s Review deposits (%d/%d)", cli.WallIcon, m.cursor+1, len(m.deposits))))
	b.WriteString("\n")

	for i, d := range m.deposits {
		line := fmt.Sprintf("%s  %-12s %s", d.Date.Format("2006-01-02"), cli.FormatYen(d.Amount), d.Description)
		status := statusStyles[m.states[i]].Render("[" + statusLabels[m.states[i]] + "]")
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("▶ "+line) + " " + status + "\n")
		} else {
			b.WriteString("  " + line + " " + status + "\n")
		}
	}

	current := m.deposits[m.cursor]
	b.WriteString("\n")
	if name, ok := m.employers[current.Classification.EmployerID]; ok {
		b.WriteString(mutedStyle.Render("Possible employer: "+name) + "\n")
	}
	if current.Classification.Reason != "" {
		b.WriteString(mutedStyle.Render(current.Classification.Reason) + "\n")
	}
	if m.lastError != nil {
		b.WriteString(cli.FormatError(m.lastError.Error()) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keymap))
	return b.String()
}

// Summary returns how many deposits were marked salary, other or skipped.
func (m ReviewModel) Summary() (salary, other, skipped int) {
	for _, s := range m.states {
		switch s {
		case itemSalary:
			salary++
		case itemOther:
			other++
		case itemSkipped, itemPending:
			skipped++
		}
	}
	return salary, other, skipped
}

// RunReview runs the review screen until every deposit is handled or the user quits.
func RunReview(ctx context.Context, resolver Resolver, deposits []model.Deposit, employers map[string]string, opts ...tea.ProgramOption) (ReviewModel, error) {
	m := NewReviewModel(ctx, resolver, deposits, employers)
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return m, fmt.Errorf("review screen failed: %w", err)
	}
	rm, ok := final.(ReviewModel)
	if !ok {
		return m, fmt.Errorf("unexpected model type %T", final)
	}
	return rm, nil
}
