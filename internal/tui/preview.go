package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderImage rasters an image into half-block cells: each "▀" carries
// two vertically stacked pixels, the top as foreground and the bottom
// as background. Aspect ratio is preserved within the given cell box.
func renderImage(img image.Image, maxCols, maxRows int) string {
	if img == nil || maxCols <= 0 || maxRows <= 0 {
		return ""
	}
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return ""
	}

	// One cell is one pixel wide and two pixels tall.
	cols := maxCols
	rows := cols * srcH / (srcW * 2)
	if rows > maxRows {
		rows = maxRows
		cols = rows * 2 * srcW / srcH
	}
	if cols < 1 || rows < 1 {
		return ""
	}

	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := samplePixel(img, bounds, col, row*2, cols, rows*2)
			bottom := samplePixel(img, bounds, col, row*2+1, cols, rows*2)
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(top))).
				Background(lipgloss.Color(hexColor(bottom)))
			b.WriteString(style.Render("▀"))
		}
		if row < rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func samplePixel(img image.Image, bounds image.Rectangle, x, y, gridW, gridH int) color.Color {
	sx := bounds.Min.X + x*bounds.Dx()/gridW
	sy := bounds.Min.Y + y*bounds.Dy()/gridH
	return img.At(sx, sy)
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
