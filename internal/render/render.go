package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/smartcity/crimedash/internal/domain"
)

// Default canvas size
const (
	DefaultWidth  = 800
	DefaultHeight = 500
)

const maxLabelLen = 22

// Options controls the canvas size
type Options struct {
	Width  int
	Height int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// PNG renders a chart result to PNG bytes
func PNG(result domain.ChartResult, opts Options) ([]byte, error) {
	w, h := opts.size()

	var img image.Image
	var err error
	switch data := result.Data.(type) {
	case []domain.TrendPoint:
		img, err = trendImage(result.Title, data, w, h)
	case []domain.CategoryCount:
		img, err = barImage(result.Title, data, w, h)
	case []domain.AreaCount:
		counts := make([]domain.CategoryCount, len(data))
		for i, a := range data {
			counts[i] = domain.CategoryCount{Label: a.Area, Count: a.Count}
		}
		img, err = barImage(result.Title, counts, w, h)
	case domain.Heatmap:
		img = heatmapImage(result.Title, data, w, h)
	case domain.Demographics:
		img, err = demographicsImage(data, w, h)
	default:
		return nil, fmt.Errorf("render: unsupported data %T for chart %q", result.Data, result.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("render: failed to draw %s chart: %w", result.Kind, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render: failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func trendImage(title string, points []domain.TrendPoint, w, h int) (image.Image, error) {
	if len(points) == 0 {
		return blank(w, h, title), nil
	}

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	maxY := 0.0
	for i, p := range points {
		xs[i] = p.Start
		ys[i] = float64(p.Count)
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}

	// pad the x range by a month so a single point still has a span
	minX := float64(xs[0].AddDate(0, -1, 0).UnixNano())
	maxX := float64(xs[len(xs)-1].AddDate(0, 1, 0).UnixNano())

	ch := chart.Chart{
		Title:      title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
			Range:          &chart.ContinuousRange{Min: minX, Max: maxX},
		},
		YAxis: chart.YAxis{
			Name:  "Number of Crimes",
			Range: &chart.ContinuousRange{Min: 0, Max: yCeiling(maxY)},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Crimes",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: 2,
					StrokeColor: chart.ColorBlue,
					DotWidth:    3,
					DotColor:    chart.ColorBlue,
				},
			},
		},
	}
	return renderChart(ch)
}

func barImage(title string, counts []domain.CategoryCount, w, h int) (image.Image, error) {
	if len(counts) == 0 {
		return blank(w, h, title), nil
	}

	bars := make([]chart.Value, len(counts))
	maxY := 0.0
	for i, c := range counts {
		bars[i] = chart.Value{Label: shorten(c.Label), Value: float64(c.Count)}
		if bars[i].Value > maxY {
			maxY = bars[i].Value
		}
	}

	barWidth, spacing := barLayout(w-120, len(bars))
	bc := chart.BarChart{
		Title:      title,
		Width:      w,
		Height:     h,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 110}},
		XAxis:      chart.Style{TextRotationDegrees: 45.0, FontSize: 8},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: yCeiling(maxY)},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// barLayout splits the plot width into equal slots, 60% bar and 40% gap
func barLayout(plotWidth, n int) (int, int) {
	slot := plotWidth / n
	if slot < 4 {
		slot = 4
	}
	width := slot * 6 / 10
	if width < 2 {
		width = 2
	}
	return width, slot - width
}

func demographicsImage(d domain.Demographics, w, h int) (image.Image, error) {
	panelW := w / 3
	panels := make([]image.Image, 0, 3)

	sex, err := barImage("Victim Sex Distribution", d.Sex, panelW, h)
	if err != nil {
		return nil, err
	}
	panels = append(panels, sex)

	age, err := ageImage("Victim Age Ranges", d.Age, panelW, h)
	if err != nil {
		return nil, err
	}
	panels = append(panels, age)

	// the last panel takes the remainder so the canvas is exactly w wide
	lastW := w - 2*panelW
	descent, err := barImage("Top 10 Victim Descent Groups", d.Descent, lastW, h)
	if err != nil {
		return nil, err
	}
	panels = append(panels, descent)

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for i, p := range panels {
		x := i * panelW
		r := image.Rect(x, 0, x+p.Bounds().Dx(), h)
		draw.Draw(out, r, p, p.Bounds().Min, draw.Over)
	}
	return out, nil
}

// ageImage plots bin counts as a marked line over categorical ticks
func ageImage(title string, bins []domain.AgeBin, w, h int) (image.Image, error) {
	if len(bins) == 0 {
		return blank(w, h, title), nil
	}

	xs := make([]float64, len(bins))
	ys := make([]float64, len(bins))
	ticks := make([]chart.Tick, len(bins))
	maxY := 0.0
	for i, b := range bins {
		xs[i] = float64(i + 1)
		ys[i] = float64(b.Count)
		ticks[i] = chart.Tick{Value: xs[i], Label: b.Label}
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}

	ch := chart.Chart{
		Title:      title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 48}},
		XAxis:      chart.XAxis{Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(bins)) + 0.5}, Ticks: ticks},
		YAxis:      chart.YAxis{Name: "Count", Range: &chart.ContinuousRange{Min: 0, Max: yCeiling(maxY)}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: 2,
					StrokeColor: chart.ColorBlue,
					DotWidth:    5,
					DotColor:    chart.ColorBlue,
				},
			},
		},
	}
	return renderChart(ch)
}

func renderChart(ch chart.Chart) (image.Image, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// yCeiling leaves headroom above the tallest value and never returns zero
func yCeiling(maxY float64) float64 {
	if maxY <= 0 {
		return 1
	}
	return maxY * 1.1
}

func shorten(label string) string {
	r := []rune(label)
	if len(r) <= maxLabelLen {
		return label
	}
	return strings.TrimSpace(string(r[:maxLabelLen-3])) + "..."
}

func rgba(c drawing.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
