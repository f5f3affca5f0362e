package screens

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
)

// RenderAvatar draws img as width columns of half-block cells, two pixel rows
// per text line.
func RenderAvatar(img image.Image, width int) string {
	if img == nil || width <= 0 {
		return ""
	}
	thumb := imaging.Fill(img, width, width, imaging.Center, imaging.Box)
	bounds := thumb.Bounds()

	var b strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(thumb.At(x, y)))
			if y+1 < bounds.Max.Y {
				style = style.Background(hexColor(thumb.At(x, y+1)))
			}
			b.WriteString(style.Render("▀"))
		}
		if y+2 < bounds.Max.Y {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}

// avatarPlaceholder is shown while a photo loads or when there is none
func avatarPlaceholder(width int, name string) string {
	initial := "?"
	if r := []rune(strings.TrimSpace(name)); len(r) > 0 {
		initial = strings.ToUpper(string(r[0]))
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(width/2).
		Align(lipgloss.Center, lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Render(initial)
}
