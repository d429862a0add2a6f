package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/akhilmv/statementiq/internal/transaction"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

type AnalyticsModel struct {
	CommonModel
	statement *transaction.Statement
	summary   transaction.Summary
}

func NewAnalyticsModel(st *transaction.Statement) AnalyticsModel {
	m := AnalyticsModel{statement: st}
	if st != nil {
		m.summary = transaction.Summarize(st.Transactions)
	}

	return m
}

func (m AnalyticsModel) Title() string     { return "Analytics" }
func (m AnalyticsModel) ShortHelp() string { return "Esc: back" }

func (m AnalyticsModel) Init() tea.Cmd {
	return nil
}

func (m AnalyticsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		return m, Back
	}

	return m, nil
}

func (m AnalyticsModel) View() string {
	if m.statement == nil {
		return lipgloss.NewStyle().Padding(2).Render("No statement loaded. Upload files first.")
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render("Summary") + "\n\n")
	b.WriteString(fmt.Sprintf("  Transactions     %d\n", m.summary.RowCount))
	b.WriteString(fmt.Sprintf("  Total Credit     %s\n", FormatAmount(m.summary.TotalCreditPaise)))
	b.WriteString(fmt.Sprintf("  Total Debit      %s\n", FormatAmount(m.summary.TotalDebitPaise)))
	b.WriteString(fmt.Sprintf("  Net Cash Flow    %s\n", FormatAmount(m.summary.NetCashFlowPaise)))

	if m.summary.HighestDebit != nil {
		hd := m.summary.HighestDebit
		b.WriteString(fmt.Sprintf("  Highest Debit    %s (%s)\n",
			FormatOptAmount(hd.DebitPaise), hd.Description))
	}

	b.WriteString("\n" + headerStyle.Render("Monthly") + "\n\n")

	for _, mt := range m.summary.MonthlyTotals {
		b.WriteString(fmt.Sprintf("  %s  credit %-14s debit %s\n",
			mt.Month, FormatAmount(mt.TotalCreditPaise), FormatAmount(mt.TotalDebitPaise)))
	}

	b.WriteString("\n" + headerStyle.Render("Quality") + "\n\n")
	b.WriteString(fmt.Sprintf("  Flagged Rows        %d of %d\n",
		m.summary.Quality.FlaggedRows, m.summary.Quality.TotalRows))
	b.WriteString(fmt.Sprintf("  Avg Confidence      %.2f\n", m.summary.Quality.AvgConfidence))
	b.WriteString(fmt.Sprintf("  Balance Mismatches  %d\n", m.summary.Quality.BalanceMismatches))

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}
