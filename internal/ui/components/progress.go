package components

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathblocks/internal/ui/theme"
)

// ProgressBar displays a horizontal bar.
type ProgressBar struct {
	Label   string
	Percent float64
	Suffix  string
	Width   int
	Warn    bool
}

// NewCountdown returns a bar draining as remaining approaches zero.
func NewCountdown(remaining, total time.Duration, width int) ProgressBar {
	pct := 0.0
	if total > 0 {
		pct = float64(remaining) / float64(total)
	}
	secs := int((remaining + time.Second - 1) / time.Second)
	return ProgressBar{
		Label:   "Time",
		Percent: pct,
		Suffix:  fmt.Sprintf("%2ds", secs),
		Width:   width,
		Warn:    remaining <= 5*time.Second,
	}
}

// View renders the bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	suffix := ""
	if p.Suffix != "" {
		suffix = "  " + p.Suffix
	}

	barWidth := max(p.Width-lipgloss.Width(result)-lipgloss.Width(suffix), 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	fill := theme.Secondary
	if p.Warn {
		fill = theme.Error
	}
	result += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))
	if suffix != "" {
		result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix)
	}
	return result
}
