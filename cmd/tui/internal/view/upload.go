package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/akhilmv/statementiq/internal/transaction"
	"github.com/akhilmv/statementiq/internal/uploader"
)

type uploadState int

const (
	uploadStatePick uploadState = iota
	uploadStateQueue
	uploadStatePassword
	uploadStateDone
)

var (
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type UploadModel struct {
	CommonModel
	svc     *uploader.Service
	results chan *transaction.Statement

	state      uploadState
	filePicker filepicker.Model
	batch      []string
	queue      uploader.State
	cursor     int
	form       *huh.Form
	password   string
	statement  *transaction.Statement
	status     string
}

func NewUploadModel(parser uploader.Parser) UploadModel {
	results := make(chan *transaction.Statement, 1)
	svc := uploader.NewService(parser, func(st *transaction.Statement) {
		results <- st
	})

	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".pdf"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return UploadModel{
		svc:        svc,
		results:    results,
		filePicker: fp,
	}
}

func (m UploadModel) Title() string { return "Upload Statements" }

func (m UploadModel) ShortHelp() string {
	switch m.state {
	case uploadStatePick:
		return "Enter: add file | s: start batch | u: remove last | Esc: back"
	case uploadStateQueue:
		return "Up/Down: select | x: remove | n: new batch | Esc: back"
	case uploadStatePassword:
		return "Enter: unlock | Esc: skip this file"
	}

	return "Esc: back"
}

func (m UploadModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

// Messages

type queueMsg struct {
	state uploader.State
	stmt  *transaction.Statement
}

type uploadErrMsg struct {
	err error
}

func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case queueMsg:
		return m.handleQueueMsg(msg)

	case uploadErrMsg:
		m.status = fmt.Sprintf("Error: %v", msg.err)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case uploadStatePick:
			return m.updatePick(msg)
		case uploadStateQueue:
			return m.updateQueue(msg)
		case uploadStatePassword:
			return m.updatePassword(msg)
		case uploadStateDone:
			if msg.Type == tea.KeyEsc {
				return m, Back
			}

			return m, nil
		}
	}

	if m.state == uploadStatePick {
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.batch = append(m.batch, path)
			m.status = ""
		}

		return m, cmd
	}

	if m.state == uploadStatePassword && m.form != nil {
		return m.updatePasswordForm(msg)
	}

	return m, nil
}

func (m UploadModel) handleQueueMsg(msg queueMsg) (tea.Model, tea.Cmd) {
	m.queue = msg.state

	if m.cursor >= len(m.queue.Entries) {
		m.cursor = len(m.queue.Entries) - 1
	}

	if m.cursor < 0 {
		m.cursor = 0
	}

	if msg.stmt != nil {
		m.statement = msg.stmt
		m.state = uploadStateDone

		stmt := msg.stmt

		return m, func() tea.Msg {
			return StatementReadyMsg{Statement: stmt}
		}
	}

	if m.queue.Awaiting >= 0 {
		return m.enterPasswordPrompt()
	}

	m.state = uploadStateQueue

	return m, nil
}

func (m UploadModel) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, Back
	case "s":
		if len(m.batch) == 0 {
			m.status = "Add at least one file first."
			return m, nil
		}

		m.state = uploadStateQueue
		m.status = ""

		return m, m.enqueueCmd(m.batch)
	case "u":
		if len(m.batch) > 0 {
			m.batch = m.batch[:len(m.batch)-1]
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.batch = append(m.batch, path)
		m.status = ""
	}

	return m, cmd
}

func (m UploadModel) updateQueue(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, Back
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(m.queue.Entries)-1 {
			m.cursor++
		}
	case "x":
		if len(m.queue.Entries) > 0 {
			return m, m.removeCmd(m.cursor)
		}
	case "n":
		m.batch = nil
		m.state = uploadStatePick
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m UploadModel) enterPasswordPrompt() (tea.Model, tea.Cmd) {
	m.state = uploadStatePassword
	m.password = ""

	name := ""
	if m.queue.Awaiting >= 0 && m.queue.Awaiting < len(m.queue.Entries) {
		name = m.queue.Entries[m.queue.Awaiting].File.Name
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("password").
				Title(fmt.Sprintf("Password for %s", name)).
				EchoMode(huh.EchoModePassword).
				Value(&m.password).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("password cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	return m, m.form.Init()
}

func (m UploadModel) updatePassword(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.form = nil
		m.state = uploadStateQueue

		return m, m.skipCmd()
	}

	return m.updatePasswordForm(msg)
}

func (m UploadModel) updatePasswordForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	password := m.form.GetString("password")
	m.form = nil
	m.state = uploadStateQueue

	return m, m.submitPasswordCmd(password)
}

// Commands

func (m UploadModel) enqueueCmd(paths []string) tea.Cmd {
	svc := m.svc
	results := m.results

	return func() tea.Msg {
		files := make([]uploader.File, 0, len(paths))

		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return uploadErrMsg{err: err}
			}

			files = append(files, uploader.File{
				Name: filepath.Base(p),
				Size: int64(len(data)),
				Data: data,
			})
		}

		if err := svc.Enqueue(context.Background(), files); err != nil {
			return uploadErrMsg{err: err}
		}

		return queueMsg{state: svc.Snapshot(), stmt: drain(results)}
	}
}

func (m UploadModel) submitPasswordCmd(password string) tea.Cmd {
	svc := m.svc
	results := m.results

	return func() tea.Msg {
		svc.SubmitPassword(context.Background(), password)
		return queueMsg{state: svc.Snapshot(), stmt: drain(results)}
	}
}

func (m UploadModel) skipCmd() tea.Cmd {
	svc := m.svc
	results := m.results

	return func() tea.Msg {
		svc.Skip(context.Background())
		return queueMsg{state: svc.Snapshot(), stmt: drain(results)}
	}
}

func (m UploadModel) removeCmd(index int) tea.Cmd {
	svc := m.svc
	results := m.results

	return func() tea.Msg {
		if err := svc.Remove(context.Background(), index); err != nil {
			return uploadErrMsg{err: err}
		}

		return queueMsg{state: svc.Snapshot(), stmt: drain(results)}
	}
}

func drain(ch chan *transaction.Statement) *transaction.Statement {
	select {
	case st := <-ch:
		return st
	default:
		return nil
	}
}

// Views

func (m UploadModel) View() string {
	switch m.state {
	case uploadStatePick:
		return m.viewPick()
	case uploadStateQueue:
		return m.viewQueue()
	case uploadStatePassword:
		return m.viewPassword()
	case uploadStateDone:
		return m.viewDone()
	}

	return ""
}

func (m UploadModel) viewPick() string {
	var b strings.Builder

	b.WriteString("Select PDF statements:\n\n")
	b.WriteString(m.filePicker.View())
	b.WriteString("\n")

	if len(m.batch) > 0 {
		b.WriteString("Batch:\n")

		for _, p := range m.batch {
			b.WriteString("  " + filepath.Base(p) + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n" + errStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

func statusGlyph(s uploader.Status) string {
	switch s {
	case uploader.StatusPending:
		return "."
	case uploader.StatusProcessing:
		return ">"
	case uploader.StatusNeedsPassword:
		return "?"
	case uploader.StatusSuccess:
		return okStyle.Render("+")
	case uploader.StatusError:
		return errStyle.Render("x")
	}

	return " "
}

func (m UploadModel) viewQueue() string {
	var b strings.Builder

	b.WriteString("Upload Queue\n\n")

	for i, e := range m.queue.Entries {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		line := fmt.Sprintf("%s[%s] %s", cursor, statusGlyph(e.Status), e.File.Name)
		if e.Err != "" {
			line += "  " + errStyle.Render(e.Err)
		}

		b.WriteString(line + "\n")
	}

	if m.queue.Banner != "" {
		b.WriteString("\n" + errStyle.Render(m.queue.Banner) + "\n")
	}

	if m.queue.Processing {
		b.WriteString("\n" + subtleStyle.Render("Processing...") + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + errStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

func (m UploadModel) viewPassword() string {
	header := "This file is password protected.\n\n"
	if m.form == nil {
		return lipgloss.NewStyle().Padding(1).Render(header)
	}

	return lipgloss.NewStyle().Padding(1).Render(header + m.form.View())
}

func (m UploadModel) viewDone() string {
	if m.statement == nil {
		return lipgloss.NewStyle().Padding(2).Render("No statement produced.")
	}

	s := okStyle.Render(fmt.Sprintf("Parsed %d transactions from %s.",
		len(m.statement.Transactions), m.statement.FileName))

	return lipgloss.NewStyle().Padding(2).Render(s + "\n\n(Esc to go back)")
}
