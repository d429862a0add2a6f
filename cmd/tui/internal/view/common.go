package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/akhilmv/statementiq/internal/transaction"
)

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// StatementReadyMsg announces a finalized combined statement to the rest of
// the program.
type StatementReadyMsg struct {
	Statement *transaction.Statement
}

// StatementUpdatedMsg carries a replaced statement after a bulk flag action.
type StatementUpdatedMsg struct {
	Statement *transaction.Statement
}
