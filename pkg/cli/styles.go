package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // accent color
	Remote  lipgloss.Color // remote speaker color
	User    lipgloss.Color // user speaker color
	Dim     lipgloss.Color // dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Remote:  lipgloss.Color("#7aa2f7"),
	User:    lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds the lipgloss styles for the live transcript view.
type Styles struct {
	Title   lipgloss.Style
	User    lipgloss.Style
	Remote  lipgloss.Style
	State   lipgloss.Style
	Partial lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		User:    lipgloss.NewStyle().Bold(true).Foreground(t.User),
		Remote:  lipgloss.NewStyle().Bold(true).Foreground(t.Remote),
		State:   lipgloss.NewStyle().Foreground(t.Dim),
		Partial: lipgloss.NewStyle().Faint(true),
	}
}

// SpeakerLine renders one attributed transcript line.
func (s Styles) SpeakerLine(speaker, text string) string {
	label := s.User
	if speaker != "user" {
		label = s.Remote
	}
	return label.Render(speaker+":") + " " + text
}

// StateLine renders a dimmed lifecycle state notice.
func (s Styles) StateLine(state string) string {
	return s.State.Render("· " + state)
}
