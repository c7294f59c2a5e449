package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette
var (
	Primary   = lipgloss.Color("#8B5CF6")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F97316")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

// Block colors by column, smallest magnitude first.
var blockColors = []color.Color{
	lipgloss.Color("#FACC15"), // ones, eighths
	lipgloss.Color("#38BDF8"), // tens, quarters
	lipgloss.Color("#A78BFA"), // hundreds, halves
	lipgloss.Color("#F472B6"), // thousands, wholes
}

// BlockColor returns the color for the i-th column.
func BlockColor(i int) color.Color {
	return blockColors[i%len(blockColors)]
}

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Caption = lipgloss.NewStyle().
		Foreground(Text).
		Background(BgCard).
		Padding(0, 2).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Column = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	ColumnTarget = Column.
			BorderForeground(Success)

	ColumnBlocked = Column.
			BorderForeground(Error)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Regrouping = lipgloss.NewStyle().
			Foreground(Accent).
			Blink(true)
)
