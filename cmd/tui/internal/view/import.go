package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/subx/internal/importer"
	"github.com/MrJamesThe3rd/subx/internal/plot"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStatePreview
	importStateImporting
	importStateResult
)

// ImportModel loads a plot register, previews the parsed plots and creates them on confirm.
type ImportModel struct {
	importService *importer.Service

	state      importState
	filePicker filepicker.Model

	path    string
	params  []plot.CreateParams
	preview list.Model

	status string
	err    error
}

func NewImportModel(impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".yaml", ".yml"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService: impSvc,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import Plots" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Enter: create all | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStatePreview {
			return m.updatePreview(msg)
		}

	case parsedMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.params = msg.params
		m.state = importStatePreview

		items := make([]list.Item, len(m.params))
		for i, p := range m.params {
			items[i] = plotItem{params: p}
		}

		m.preview = list.New(items, plotDelegate{}, 80, 20)
		m.preview.Title = fmt.Sprintf("%d plots in %s", len(m.params), m.path)
		m.preview.SetShowStatusBar(false)
		m.preview.SetFilteringEnabled(false)
		m.preview.SetShowHelp(false)

		return m, nil

	case importedMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d plots.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.path = path
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview, importStateResult:
		m.state = importStateFilePick
		m.params = nil
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Creating %d plots...", len(m.params))

		return m, m.importCmd()
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a plot register (.csv, .yaml):\n\n" + m.filePicker.View(),
		)
	case importStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.preview.View())
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		msg := okStyle(m.status)
		if m.err != nil {
			msg = errorStyle(m.status)
		}

		return lipgloss.NewStyle().Padding(2).Render(msg + "\n\n(Esc to go back)")
	}

	return ""
}

// Messages

type parsedMsg struct {
	params []plot.CreateParams
	err    error
}

type importedMsg struct {
	count int
	err   error
}

func (m ImportModel) parseCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parsedMsg{err: err}
		}
		defer f.Close()

		params, err := m.importService.Parse(importer.FormatFromFilename(path), f)
		if err != nil {
			return parsedMsg{err: err}
		}

		if len(params) == 0 {
			return parsedMsg{err: fmt.Errorf("%s contains no plots", path)}
		}

		return parsedMsg{params: params}
	}
}

// importCmd re-reads the file so the plots created are exactly what Import validates.
func (m ImportModel) importCmd() tea.Cmd {
	path := m.path

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importedMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		plots, err := m.importService.Import(ctx, importer.FormatFromFilename(path), f)
		if err != nil {
			return importedMsg{err: err}
		}

		return importedMsg{count: len(plots)}
	}
}

// Preview list item

type plotItem struct {
	params plot.CreateParams
}

func (i plotItem) Title() string       { return i.params.Name }
func (i plotItem) Description() string { return "" }
func (i plotItem) FilterValue() string { return i.params.Name }

type plotDelegate struct{}

func (d plotDelegate) Height() int                             { return 1 }
func (d plotDelegate) Spacing() int                            { return 0 }
func (d plotDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d plotDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(plotItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	fmt.Fprintf(w, "%s%-32s %6d sqm  %12s/sqm", cursor, item.params.Name, item.params.TotalSqm, FormatMoney(item.params.PricePerSqm))
}
