package main

import "github.com/charmbracelet/lipgloss"

// Centralized style definitions for the CLI and the viewer.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan

	// Viewer tabs.
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")).Underline(true) // blue
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))                            // gray

	// Metadata table.
	metaKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")) // magenta

	// Diff lines.
	diffAddStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	diffDelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	diffHunkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan

	// General utility styles.
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray/dim
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green

	// Troubleshooting hints.
	hintTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")) // yellow
	hintStyle      = lipgloss.NewStyle().PaddingLeft(2)

	// Error block style.
	errorBlockStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("1"))
)
