package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/subx/internal/reconcile"
)

const reconcileTimeout = 10 * time.Minute

// ReconcileModel runs the ledger audit on demand and shows what it found.
type ReconcileModel struct {
	job *reconcile.Job

	spinner spinner.Model
	table   table.Model
	running bool
	report  *reconcile.Report
	err     error
}

func NewReconcileModel(job *reconcile.Job) ReconcileModel {
	columns := []table.Column{
		{Title: "Kind", Width: 24},
		{Title: "Subject", Width: 38},
		{Title: "Expected", Width: 26},
		{Title: "Actual", Width: 26},
		{Title: "Action", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return ReconcileModel{job: job, spinner: sp, table: t}
}

func (m ReconcileModel) Title() string     { return "Reconciliation" }
func (m ReconcileModel) ShortHelp() string { return "Esc: back | r: run" }

func (m ReconcileModel) Init() tea.Cmd {
	return nil
}

func (m ReconcileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if m.running {
				return m, nil
			}
			return m, Back
		case "r":
			if m.running {
				return m, nil
			}
			m.running = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.runCmd())
		}

	case reconcileDoneMsg:
		m.running = false
		m.report, m.err = msg.report, msg.err
		m.refreshTable()
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ReconcileModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.running {
		return style.Render(m.spinner.View() + " Auditing plots, portfolios and referral rewards...")
	}

	if m.err != nil {
		return style.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n\nPress r to retry.")
	}

	if m.report == nil {
		return style.Render("Press r to run a reconciliation now.")
	}

	r := m.report
	summary := fmt.Sprintf(
		"Plots checked: %d | Users checked: %d | Auto-fixed: %s | Manual review: %s | Referrals repaired: %d",
		r.PlotsChecked, r.UsersChecked,
		activeStyle(fmt.Sprint(r.AutoFixed)), activeStyle(fmt.Sprint(r.ManualReview)),
		r.ReferralsRepaired,
	)

	if r.Clean() {
		return style.Render(summary + "\n\n" + okStyle("Ledger and aggregates agree."))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(summary),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	for _, e := range r.Errors {
		content += "\n" + errorStyle(e)
	}

	return style.Render(content)
}

func (m *ReconcileModel) refreshTable() {
	if m.report == nil {
		m.table.SetRows(nil)
		return
	}

	rows := make([]table.Row, 0, len(m.report.Discrepancies))
	for _, d := range m.report.Discrepancies {
		rows = append(rows, table.Row{string(d.Kind), d.Subject, d.Expected, d.Actual, string(d.Action)})
	}
	m.table.SetRows(rows)
}

type reconcileDoneMsg struct {
	report *reconcile.Report
	err    error
}

func (m ReconcileModel) runCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()

		report, err := m.job.Run(ctx)
		return reconcileDoneMsg{report: report, err: err}
	}
}
