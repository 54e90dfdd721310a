// Package ui holds terminal styling shared by the CLI handlers.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	// Colors
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue).
			MarginTop(1)

	OkStyle = lipgloss.NewStyle().
		Foreground(colorGreen)

	FailedStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	WarningStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	DimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

const (
	CheckMark = "[OK]"
	CrossMark = "[!!]"
	WarnMark  = "[??]"
	Pending   = "[  ]"
)

// IsInteractive reports whether stdout is attached to a terminal that can
// host prompts and styled output.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
