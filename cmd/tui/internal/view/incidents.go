package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/subx/internal/purchase"
)

// IncidentsModel lists confirmed payments that could not be finalized.
type IncidentsModel struct {
	purchases *purchase.Service

	table     table.Model
	incidents []*purchase.Incident
	loading   bool
	err       error
}

func NewIncidentsModel(purchases *purchase.Service) IncidentsModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Reference", Width: 22},
			{Title: "Kind", Width: 26},
			{Title: "Detail", Width: 50},
			{Title: "At", Width: 17},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return IncidentsModel{purchases: purchases, table: t, loading: true}
}

func (m IncidentsModel) Title() string     { return "Payment Incidents" }
func (m IncidentsModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m IncidentsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m IncidentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadIncidentsMsg:
		m.loading = false
		m.incidents, m.err = msg.incidents, msg.err

		rows := make([]table.Row, 0, len(m.incidents))
		for _, inc := range m.incidents {
			rows = append(rows, table.Row{inc.PaymentReference, string(inc.Kind), inc.Detail, FormatTime(inc.CreatedAt)})
		}
		m.table.SetRows(rows)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m IncidentsModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch {
	case m.loading:
		return style.Render("Loading incidents...")
	case m.err != nil:
		return style.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	case len(m.incidents) == 0:
		return style.Render(okStyle("No payments need review."))
	}

	return style.Render(m.table.View())
}

type loadIncidentsMsg struct {
	incidents []*purchase.Incident
	err       error
}

func (m IncidentsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		incidents, err := m.purchases.ListIncidents(ctx, 200)
		return loadIncidentsMsg{incidents: incidents, err: err}
	}
}
