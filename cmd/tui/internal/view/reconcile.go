package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/akhilmv/statementiq/internal/reconcile"
	"github.com/akhilmv/statementiq/internal/transaction"
)

type reconcileState int

const (
	reconcileStatePick reconcileState = iota
	reconcileStateResult
	reconcileStateEditTarget
)

type ReconcileModel struct {
	CommonModel
	statement *transaction.Statement

	state   reconcileState
	credits []transaction.Transaction
	picker  table.Model

	// anchor is the selected credit; its date pins the eligibility filter
	// across target edits.
	anchor      transaction.Transaction
	targetPaise int64
	result      reconcile.Result

	form        *huh.Form
	targetInput string
	status      string
}

func NewReconcileModel(st *transaction.Statement) ReconcileModel {
	m := ReconcileModel{statement: st}

	if st != nil {
		for _, tx := range st.Transactions {
			if tx.IsCredit() {
				m.credits = append(m.credits, tx)
			}
		}
	}

	m.picker = m.buildPicker()

	return m
}

func (m ReconcileModel) Title() string { return "Reconcile" }

func (m ReconcileModel) ShortHelp() string {
	switch m.state {
	case reconcileStateResult:
		return "t: edit target | Esc: back to credits"
	case reconcileStateEditTarget:
		return "Enter: recompute | Esc: cancel"
	}

	return "Enter: reconcile credit | Esc: back"
}

func (m ReconcileModel) Init() tea.Cmd {
	return nil
}

func (m ReconcileModel) buildPicker() table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Description", Width: 36},
		{Title: "Credit", Width: 14},
	}

	rows := make([]table.Row, len(m.credits))
	for i, tx := range m.credits {
		rows[i] = table.Row{
			FormatDate(tx.Date),
			tx.Description,
			FormatOptAmount(tx.CreditPaise),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	styles := table.DefaultStyles()
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return t
}

func (m ReconcileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)

	switch m.state {
	case reconcileStatePick:
		if isKey {
			switch keyMsg.String() {
			case "esc":
				return m, Back
			case "enter":
				return m.selectCredit()
			}
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd

	case reconcileStateResult:
		if isKey {
			switch keyMsg.String() {
			case "esc":
				m.state = reconcileStatePick
				m.status = ""

				return m, nil
			case "t":
				return m.enterTargetEdit()
			}
		}

		return m, nil

	case reconcileStateEditTarget:
		if isKey && keyMsg.Type == tea.KeyEsc {
			m.form = nil
			m.state = reconcileStateResult

			return m, nil
		}

		return m.updateTargetForm(msg)
	}

	return m, nil
}

func (m ReconcileModel) selectCredit() (tea.Model, tea.Cmd) {
	idx := m.picker.Cursor()
	if idx < 0 || idx >= len(m.credits) {
		return m, nil
	}

	m.anchor = m.credits[idx]
	m.targetPaise = *m.anchor.CreditPaise
	m.result = reconcile.Match(m.statement.Transactions, m.anchor.Date, m.targetPaise)
	m.state = reconcileStateResult
	m.status = ""

	return m, nil
}

func (m ReconcileModel) enterTargetEdit() (tea.Model, tea.Cmd) {
	m.targetInput = fmt.Sprintf("%.2f", transaction.PaiseToFloat(m.targetPaise))

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("target").
				Title("Target amount").
				Value(&m.targetInput).
				Validate(func(s string) error {
					if _, err := transaction.ParsePaise(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("invalid amount")
					}
					return nil
				}),
		),
	).WithWidth(40).WithShowHelp(false)

	m.state = reconcileStateEditTarget

	return m, m.form.Init()
}

func (m ReconcileModel) updateTargetForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.state = reconcileStateResult
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	target, err := transaction.ParsePaise(strings.TrimSpace(m.form.GetString("target")))
	if err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		m.form = nil
		m.state = reconcileStateResult

		return m, nil
	}

	// Recompute with the edited target; the anchor date does not move.
	m.targetPaise = target
	m.result = reconcile.Match(m.statement.Transactions, m.anchor.Date, m.targetPaise)
	m.form = nil
	m.state = reconcileStateResult
	m.status = ""

	return m, nil
}

func (m ReconcileModel) View() string {
	if m.statement == nil {
		return lipgloss.NewStyle().Padding(2).Render("No statement loaded. Upload files first.")
	}

	switch m.state {
	case reconcileStatePick:
		if len(m.credits) == 0 {
			return lipgloss.NewStyle().Padding(2).Render("No credit transactions to reconcile.")
		}

		return lipgloss.NewStyle().Padding(1).Render("Pick a credit to reconcile:\n\n" + m.picker.View())

	case reconcileStateEditTarget:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	return m.viewResult()
}

func (m ReconcileModel) viewResult() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Credit: %s  %s  %s\n",
		FormatDate(m.anchor.Date), m.anchor.Description, FormatOptAmount(m.anchor.CreditPaise)))
	b.WriteString(fmt.Sprintf("Target: %s\n\n", FormatAmount(m.targetPaise)))

	if len(m.result.MatchedDebits) == 0 {
		b.WriteString("No matching debits found.\n")
	} else {
		b.WriteString("Matched debits:\n")

		for _, d := range m.result.MatchedDebits {
			b.WriteString(fmt.Sprintf("  %s  %-32s %14s  (%.2f)\n",
				FormatDate(d.Date), d.Description, FormatOptAmount(d.DebitPaise), d.Confidence))
		}
	}

	b.WriteString(fmt.Sprintf("\nTotal matched  %s\n", FormatAmount(m.result.TotalMatchedPaise)))
	b.WriteString(fmt.Sprintf("Difference     %s\n", FormatAmount(m.result.DifferencePaise)))
	b.WriteString(fmt.Sprintf("Accuracy       %.1f%%\n", m.result.Accuracy))

	if m.status != "" {
		b.WriteString("\n" + errStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}
