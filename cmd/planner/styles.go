package main

import "github.com/charmbracelet/lipgloss"

// Terminal palette
var (
	colorAccent  = lipgloss.Color("#20B9B4")
	colorOverdue = lipgloss.Color("#E74C3C")
	colorDue     = lipgloss.Color("#F4D03F")
	colorMuted   = lipgloss.Color("#6C7A80")
)

var styles = struct {
	Title    lipgloss.Style
	Section  lipgloss.Style
	Overdue  lipgloss.Style
	Deadline lipgloss.Style
	Muted    lipgloss.Style
	Done     lipgloss.Style
	Error    lipgloss.Style
	Today    lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Section:  lipgloss.NewStyle().Bold(true),
	Overdue:  lipgloss.NewStyle().Foreground(colorOverdue),
	Deadline: lipgloss.NewStyle().Foreground(colorDue),
	Muted:    lipgloss.NewStyle().Foreground(colorMuted),
	Done:     lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true),
	Error:    lipgloss.NewStyle().Bold(true).Foreground(colorOverdue),
	Today:    lipgloss.NewStyle().Bold(true).Underline(true),
}
