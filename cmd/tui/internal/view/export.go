package view

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/akhilmv/statementiq/internal/export"
	"github.com/akhilmv/statementiq/internal/transaction"
)

type exportState int

const (
	exportStateForm exportState = iota
	exportStateRunning
	exportStateDone
)

type ExportModel struct {
	CommonModel
	svc       *export.Service
	statement *transaction.Statement

	state  exportState
	form   *huh.Form
	path   string
	format string
	status string
	err    error
}

func NewExportModel(svc *export.Service, st *transaction.Statement) ExportModel {
	m := ExportModel{
		svc:       svc,
		statement: st,
		path:      "statement.csv",
		format:    "csv",
	}
	m.form = m.buildForm()

	return m
}

func (m ExportModel) Title() string     { return "Export Statement" }
func (m ExportModel) ShortHelp() string { return "Enter: export | Esc: back" }

func (m ExportModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("format").
				Title("Format").
				Options(
					huh.NewOption("CSV", "csv"),
					huh.NewOption("XLSX", "xlsx"),
				).
				Value(&m.format),

			huh.NewInput().
				Key("path").
				Title("Output file").
				Value(&m.path).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("path cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m ExportModel) Init() tea.Cmd {
	if m.form == nil {
		return nil
	}

	return m.form.Init()
}

type exportDoneMsg struct {
	path string
	err  error
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case exportDoneMsg:
		m.state = exportStateDone
		m.err = msg.err
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Exported to %s.", msg.path)
		}

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == exportStateDone {
			return m, nil
		}
	}

	if m.state != exportStateForm || m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateRunning

	return m, m.exportCmd(m.form.GetString("path"), m.form.GetString("format"))
}

func (m ExportModel) exportCmd(path, format string) tea.Cmd {
	svc := m.svc
	st := m.statement

	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		defer f.Close()

		switch format {
		case "xlsx":
			err = svc.WriteXLSX(f, st)
		default:
			err = svc.WriteCSV(f, st)
		}

		if err != nil {
			return exportDoneMsg{err: err}
		}

		return exportDoneMsg{path: path}
	}
}

func (m ExportModel) View() string {
	if m.statement == nil {
		return lipgloss.NewStyle().Padding(2).Render("No statement loaded. Upload files first.")
	}

	switch m.state {
	case exportStateRunning:
		return lipgloss.NewStyle().Padding(2).Render("Exporting...")
	case exportStateDone:
		style := okStyle
		if m.err != nil {
			style = errStyle
		}

		return lipgloss.NewStyle().Padding(2).Render(style.Render(m.status) + "\n\n(Esc to go back)")
	}

	if m.form == nil {
		return ""
	}

	return lipgloss.NewStyle().Padding(1).Render("Export combined statement:\n\n" + m.form.View())
}
