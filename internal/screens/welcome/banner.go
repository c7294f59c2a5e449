package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathblocks/internal/ui/theme"
)

const bannerArt = `
 █▀▄▀█ ▄▀█ ▀█▀ █ █   █▄▄ █   █▀█ █▀▀ █▄▀ █▀
 █ ▀ █ █▀█  █  █▀█   █▄█ █▄▄ █▄█ █▄▄ █ █ ▄█`

const bannerCompact = "M A T H B L O C K S"

// RenderBanner returns the banner, compact below 48 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	if width < 48 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
