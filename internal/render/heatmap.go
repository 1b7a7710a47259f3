package render

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/smartcity/crimedash/internal/domain"
	"github.com/smartcity/crimedash/pkg/utils"
)

// Low and high ends of the heatmap colour scale (yellow to dark blue)
var (
	heatLow  = drawing.Color{R: 255, G: 255, B: 217, A: 255}
	heatHigh = drawing.Color{R: 8, G: 29, B: 88, A: 255}
)

const noDataHint = "No data for the selected filters"

// heatmapImage draws the hour x weekday grid with one cell per count
func heatmapImage(title string, hm domain.Heatmap, w, h int) image.Image {
	if len(hm.Hours) == 0 || len(hm.Weekdays) == 0 || hm.Max() == 0 {
		return blank(w, h, title)
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	left, top, right, bottom := 40, 36, 90, 28
	gridW := w - left - right
	gridH := h - top - bottom
	cellW := gridW / len(hm.Weekdays)
	cellH := gridH / len(hm.Hours)
	if cellW < 1 || cellH < 1 {
		return blank(w, h, title)
	}

	black := color.RGBA{A: 255}
	drawText(out, face, title, left, top-14, black)

	maxCount := hm.Max()
	for r, hour := range hm.Hours {
		y := top + r*cellH
		for c := range hm.Weekdays {
			x := left + c*cellW
			n := 0
			if r < len(hm.Counts) && c < len(hm.Counts[r]) {
				n = hm.Counts[r][c]
			}
			cell := image.Rect(x, y, x+cellW-1, y+cellH-1)
			draw.Draw(out, cell, image.NewUniform(heatColor(n, maxCount)), image.Point{}, draw.Src)
		}
		if cellH >= face.Metrics().Height.Ceil() || r%2 == 0 {
			drawText(out, face, strconv.Itoa(hour), 8, y+cellH-2, black)
		}
	}

	for c, wd := range hm.Weekdays {
		label := wd
		if len(label) > 3 {
			label = label[:3]
		}
		x := left + c*cellW + cellW/2 - len(label)*face.Advance/2
		drawText(out, face, label, x, top+len(hm.Hours)*cellH+16, black)
	}

	// colour scale legend
	legendX := left + len(hm.Weekdays)*cellW + 16
	steps := 10
	stepH := gridH / steps
	for i := 0; i < steps; i++ {
		y := top + i*stepH
		v := maxCount - maxCount*i/steps
		draw.Draw(out, image.Rect(legendX, y, legendX+14, y+stepH), image.NewUniform(heatColor(v, maxCount)), image.Point{}, draw.Src)
	}
	drawText(out, face, strconv.Itoa(maxCount), legendX+18, top+10, black)
	drawText(out, face, "0", legendX+18, top+steps*stepH, black)

	return out
}

// heatColor interpolates between the scale ends in proportion to n/max
func heatColor(n, max int) color.RGBA {
	t := 0.0
	if max > 0 {
		t = float64(n) / float64(max)
	}
	return color.RGBA{
		R: uint8(utils.Lerp(float64(heatLow.R), float64(heatHigh.R), t)),
		G: uint8(utils.Lerp(float64(heatLow.G), float64(heatHigh.G), t)),
		B: uint8(utils.Lerp(float64(heatLow.B), float64(heatHigh.B), t)),
		A: 255,
	}
}

// blank returns a white canvas with the title and a no-data hint
func blank(w, h int, title string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if title != "" {
		drawText(img, basicfont.Face7x13, title, 16, 24, rgba(drawing.ColorBlack))
	}
	return drawHint(img, noDataHint)
}

// drawHint draws a small hint string onto the image near the bottom-left
func drawHint(img *image.RGBA, text string) image.Image {
	if strings.TrimSpace(text) == "" {
		return img
	}
	b := img.Bounds()
	pad := 6
	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: img, Src: image.NewUniform(color.White), Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 8
	y := b.Max.Y - 8
	bg := image.NewUniform(color.RGBA{A: 200})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(img, rect, bg, image.Point{}, draw.Over)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return img
}

func drawText(dst draw.Image, face font.Face, text string, x, y int, col color.Color) {
	dr := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	dr.DrawString(text)
}
