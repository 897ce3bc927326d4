package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/subx/internal/plot"
)

type plotsState int

const (
	plotsStateBrowse plotsState = iota
	plotsStateCreate
)

type PlotsModel struct {
	plotService *plot.Service

	state plotsState
	table table.Model
	plots []*plot.Plot
	form  *huh.Form

	loading bool
	err     error
	status  string

	// Form bindings live behind a pointer so they survive the model being copied.
	fields *plotFields
}

type plotFields struct {
	name  string
	total string
	price string
}

func NewPlotsModel(plotSvc *plot.Service) PlotsModel {
	columns := []table.Column{
		{Title: "Name", Width: 28},
		{Title: "Total sqm", Width: 10},
		{Title: "Available", Width: 10},
		{Title: "Sold %", Width: 8},
		{Title: "Price/sqm", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return PlotsModel{
		plotService: plotSvc,
		table:       t,
		loading:     true,
	}
}

func (m PlotsModel) Title() string { return "Plots" }
func (m PlotsModel) ShortHelp() string {
	if m.state == plotsStateCreate {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | n: new plot | r: refresh"
}

func (m PlotsModel) Init() tea.Cmd {
	return m.loadPlotsCmd()
}

func (m PlotsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPlotsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.plots = msg.plots
		m.refreshTable()
		return m, nil

	case plotCreatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error creating plot: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Created %s", msg.plot.Name)
		}
		m.state = plotsStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadPlotsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case plotsStateBrowse:
		return m.updateBrowse(msg)
	case plotsStateCreate:
		return m.updateCreate(msg)
	}

	return m, nil
}

func (m PlotsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadPlotsCmd()
		case "n":
			return m.enterCreateMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m PlotsModel) enterCreateMode() (tea.Model, tea.Cmd) {
	m.fields = &plotFields{}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.fields.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("total_sqm").
				Title("Total sqm").
				Value(&m.fields.total).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("must be a positive whole number")
					}
					return nil
				}),

			huh.NewInput().
				Key("price_per_sqm").
				Title("Price per sqm").
				Placeholder("5000.00").
				Value(&m.fields.price).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil || !d.IsPositive() {
						return fmt.Errorf("must be a positive amount")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = plotsStateCreate
	m.table.Blur()
	return m, m.form.Init()
}

func (m PlotsModel) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = plotsStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.createCmd()
}

func (m PlotsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading plots...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	var sold, total int
	for _, p := range m.plots {
		sold += p.SoldSqm()
		total += p.TotalSqm
	}

	header := fmt.Sprintf("%d plots | %s of %s sqm sold or held",
		len(m.plots), activeStyle(strconv.Itoa(sold)), strconv.Itoa(total))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == plotsStateCreate && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("New Plot\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *PlotsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.plots))
	for _, p := range m.plots {
		rows = append(rows, table.Row{
			p.Name,
			strconv.Itoa(p.TotalSqm),
			strconv.Itoa(p.AvailableSqm),
			p.SoldPercentage().StringFixed(2),
			FormatMoney(p.PricePerSqm),
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadPlotsMsg struct {
	plots []*plot.Plot
	err   error
}

func (m PlotsModel) loadPlotsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		plots, err := m.plotService.List(ctx)
		return loadPlotsMsg{plots: plots, err: err}
	}
}

type plotCreatedMsg struct {
	plot *plot.Plot
	err  error
}

func (m PlotsModel) createCmd() tea.Cmd {
	name := strings.TrimSpace(m.fields.name)
	total, _ := strconv.Atoi(strings.TrimSpace(m.fields.total))
	price, _ := decimal.NewFromString(strings.TrimSpace(m.fields.price))

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.plotService.Create(ctx, plot.CreateParams{Name: name, TotalSqm: total, PricePerSqm: price})
		return plotCreatedMsg{plot: p, err: err}
	}
}
