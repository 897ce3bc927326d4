package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/subx/internal/app"
	"github.com/MrJamesThe3rd/subx/internal/config"
	"github.com/MrJamesThe3rd/subx/internal/database"
)

type model struct {
	services *app.Services

	// active is nil while the menu is shown.
	active view.View
}

type screen struct {
	key   string
	label string
	open  func(*app.Services) view.View
}

var screens = []screen{
	{key: "1", label: "Plots", open: func(s *app.Services) view.View { return view.NewPlotsModel(s.Plots) }},
	{key: "2", label: "Import Plot Register", open: func(s *app.Services) view.View { return view.NewImportModel(s.Importer) }},
	{key: "3", label: "Run Reconciliation", open: func(s *app.Services) view.View { return view.NewReconcileModel(s.Reconcile) }},
	{key: "4", label: "Payment Incidents", open: func(s *app.Services) view.View { return view.NewIncidentsModel(s.Purchases) }},
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to connect to database:", err)
		os.Exit(1)
	}

	// Logging would draw over the alternate screen.
	svc, err := app.New(cfg, db, zap.NewNop())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build services:", err)
		os.Exit(1)
	}

	return model{services: svc}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case view.BackMsg:
		m.active = nil
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	if m.active == nil {
		return m.updateMenu(msg)
	}

	next, cmd := m.active.Update(msg)
	m.active = next.(view.View)

	return m, cmd
}

func (m model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.String() == "q" {
		return m, tea.Quit
	}

	for _, sc := range screens {
		if key.String() == sc.key {
			m.active = sc.open(m.services)
			return m, m.active.Init()
		}
	}

	return m, nil
}

func (m model) View() string {
	if m.active != nil {
		return view.Frame(m.active)
	}

	menu := "Subx Operations\n\n"
	for _, sc := range screens {
		menu += sc.key + ". " + sc.label + "\n"
	}

	return lipgloss.NewStyle().Padding(2).Render(menu + "\nq. Quit")
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to run TUI:", err)
		os.Exit(1)
	}
}
