package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/akhilmv/statementiq/internal/transaction"
)

type TransactionsModel struct {
	CommonModel
	statement *transaction.Statement

	table    table.Model
	selected map[int]bool
	status   string
}

func NewTransactionsModel(st *transaction.Statement) TransactionsModel {
	m := TransactionsModel{
		statement: st,
		selected:  make(map[int]bool),
	}
	m.table = m.buildTable()

	return m
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	return "Space: select | f: flag selected | Esc: back"
}

func (m TransactionsModel) Init() tea.Cmd {
	return nil
}

func (m TransactionsModel) buildTable() table.Model {
	columns := []table.Column{
		{Title: " ", Width: 3},
		{Title: "Date", Width: 10},
		{Title: "Description", Width: 32},
		{Title: "Debit", Width: 12},
		{Title: "Credit", Width: 12},
		{Title: "Balance", Width: 14},
		{Title: "Conf", Width: 5},
		{Title: "Flag", Width: 4},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(m.buildRows()),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	styles := table.DefaultStyles()
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return t
}

func (m TransactionsModel) buildRows() []table.Row {
	if m.statement == nil {
		return nil
	}

	rows := make([]table.Row, len(m.statement.Transactions))

	for i, tx := range m.statement.Transactions {
		mark := " "
		if m.selected[i] {
			mark = "*"
		}

		flag := ""
		if tx.Flagged {
			flag = "!"
		}

		rows[i] = table.Row{
			mark,
			FormatDate(tx.Date),
			tx.Description,
			FormatOptAmount(tx.DebitPaise),
			FormatOptAmount(tx.CreditPaise),
			FormatAmount(tx.BalancePaise),
			fmt.Sprintf("%.2f", tx.Confidence),
			flag,
		}
	}

	return rows
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case " ":
			idx := m.table.Cursor()
			m.selected[idx] = !m.selected[idx]
			m.table.SetRows(m.buildRows())

			return m, nil
		case "f":
			return m.flagSelected()
		}

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 8)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

// flagSelected applies the one permitted mutation: a bulk flag, swapping in a
// fresh transaction list.
func (m TransactionsModel) flagSelected() (tea.Model, tea.Cmd) {
	if m.statement == nil || len(m.selected) == 0 {
		return m, nil
	}

	var ids []uuid.UUID

	for i, on := range m.selected {
		if on && i < len(m.statement.Transactions) {
			ids = append(ids, m.statement.Transactions[i].ID)
		}
	}

	if len(ids) == 0 {
		return m, nil
	}

	updated, n := transaction.FlagAll(m.statement.Transactions, ids)

	st := *m.statement
	st.Transactions = updated
	m.statement = &st

	m.selected = make(map[int]bool)
	m.table.SetRows(m.buildRows())
	m.status = fmt.Sprintf("Flagged %d transactions.", n)

	stmt := m.statement

	return m, func() tea.Msg {
		return StatementUpdatedMsg{Statement: stmt}
	}
}

func (m TransactionsModel) View() string {
	if m.statement == nil {
		return lipgloss.NewStyle().Padding(2).Render("No statement loaded. Upload files first.")
	}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s | %s\n\n", m.statement.Bank, m.statement.FileName))
	b.WriteString(m.table.View())

	if m.status != "" {
		b.WriteString("\n" + okStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}
