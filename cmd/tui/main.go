package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/akhilmv/statementiq/cmd/tui/internal/view"
	"github.com/akhilmv/statementiq/internal/config"
	"github.com/akhilmv/statementiq/internal/export"
	"github.com/akhilmv/statementiq/internal/parseclient"
	"github.com/akhilmv/statementiq/internal/transaction"
)

type model struct {
	parser        *parseclient.Client
	exportService *export.Service

	statement *transaction.Statement

	currentView View

	uploadView       view.UploadModel
	transactionsView view.TransactionsModel
	analyticsView    view.AnalyticsModel
	reconcileView    view.ReconcileModel
	exportView       view.ExportModel
}

type View int

const (
	ViewMenu View = iota
	ViewUpload
	ViewTransactions
	ViewAnalytics
	ViewReconcile
	ViewExport
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	parser := parseclient.New(cfg.Parser.URL)
	expSvc := export.NewService()

	return model{
		parser:        parser,
		exportService: expSvc,
		currentView:   ViewMenu,
		uploadView:    view.NewUploadModel(parser),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewUpload
				m.uploadView = view.NewUploadModel(m.parser)

				return m, m.uploadView.Init()
			case "2":
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.statement)

				return m, m.transactionsView.Init()
			case "3":
				m.currentView = ViewAnalytics
				m.analyticsView = view.NewAnalyticsModel(m.statement)

				return m, m.analyticsView.Init()
			case "4":
				m.currentView = ViewReconcile
				m.reconcileView = view.NewReconcileModel(m.statement)

				return m, m.reconcileView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.statement)

				return m, m.exportView.Init()
			}
		}

	case view.StatementReadyMsg:
		m.statement = msg.Statement
		return m, nil

	case view.StatementUpdatedMsg:
		m.statement = msg.Statement
		return m, nil

	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewUpload:
		var newModel tea.Model
		newModel, cmd = m.uploadView.Update(msg)
		m.uploadView = newModel.(view.UploadModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewAnalytics:
		var newModel tea.Model
		newModel, cmd = m.analyticsView.Update(msg)
		m.analyticsView = newModel.(view.AnalyticsModel)
	case ViewReconcile:
		var newModel tea.Model
		newModel, cmd = m.reconcileView.Update(msg)
		m.reconcileView = newModel.(view.ReconcileModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		loaded := "no statement loaded"
		if m.statement != nil {
			loaded = m.statement.FileName
		}

		return lipgloss.NewStyle().Padding(2).Render(
			"StatementIQ\n\n" +
				"1. Upload Statements\n" +
				"2. Browse Transactions\n" +
				"3. Analytics\n" +
				"4. Reconcile\n" +
				"5. Export\n\n" +
				"(" + loaded + ")\n\n" +
				"q. Quit",
		)
	case ViewUpload:
		return m.uploadView.View()
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewAnalytics:
		return m.analyticsView.View()
	case ViewReconcile:
		return m.reconcileView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
