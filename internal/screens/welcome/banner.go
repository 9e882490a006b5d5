package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordcraft/internal/ui/theme"
)

const bannerArt = `
 ██╗    ██╗ ██████╗ ██████╗ ██████╗  ██████╗██████╗  █████╗ ███████╗████████╗
 ██║    ██║██╔═══██╗██╔══██╗██╔══██╗██╔════╝██╔══██╗██╔══██╗██╔════╝╚══██╔══╝
 ██║ █╗ ██║██║   ██║██████╔╝██║  ██║██║     ██████╔╝███████║█████╗     ██║
 ██║███╗██║██║   ██║██╔══██╗██║  ██║██║     ██╔══██╗██╔══██║██╔══╝     ██║
 ╚███╔███╔╝╚██████╔╝██║  ██║██████╔╝╚██████╗██║  ██║██║  ██║██║        ██║
  ╚══╝╚══╝  ╚═════╝ ╚═╝  ╚═╝╚═════╝  ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝        ╚═╝`

const bannerCompact = "W O R D C R A F T"

// bannerWidth is the widest line of bannerArt.
const bannerWidth = 77

// RenderBanner returns the banner, or a compact one when width is too narrow.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
