package app

import "github.com/charmbracelet/lipgloss"

const (
	sidebarWidth   = 34
	logPanelHeight = 5
	minEditorWidth = 20
	minBodyHeight  = 6
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	dirtyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("179")).Bold(true)
	folderStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	noteStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	openNoteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Faint(true)
	relatedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	searchBadgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Bold(true)
	paneStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238"))
	focusPaneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("69"))
	confirmStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208")).Padding(0, 1)
)
