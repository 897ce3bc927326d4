package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// View is an operations screen. The console frames it with its Title and ShortHelp.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).PaddingLeft(1)
	helpStyle  = lipgloss.NewStyle().Faint(true).PaddingLeft(1)
)

// Frame renders v between its title bar and its key help.
func Frame(v View) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Subx · "+v.Title()),
		v.View(),
		helpStyle.Render(v.ShortHelp()),
	)
}

// BackMsg asks the console to return to the menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
