// Package render draws reporting views as files: trajectory charts as PNG
// and ranking tables as XLSX workbooks.
package render

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/fightelo/internal/domain/reporting"
)

const (
	chartWidth  = 1200
	chartHeight = 700

	// go-chart rejects zero-width ranges, so single points get padded.
	datePad   = 30 * 24 * time.Hour
	ratingPad = 25.0
)

// TrajectoryPNG draws one line per category. With no points it renders a
// placeholder so callers always get an image.
func TrajectoryPNG(competitor string, series []reporting.Series) ([]byte, error) {
	lines := make([]chart.Series, 0, len(series))
	minT, maxT := time.Time{}, time.Time{}
	minY, maxY := math.Inf(1), math.Inf(-1)

	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]time.Time, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j], ys[j] = p.Date, p.Rating
			if minT.IsZero() || p.Date.Before(minT) {
				minT = p.Date
			}
			if p.Date.After(maxT) {
				maxT = p.Date
			}
			minY = math.Min(minY, p.Rating)
			maxY = math.Max(maxY, p.Rating)
		}
		color := chart.GetDefaultColor(i)
		lines = append(lines, chart.TimeSeries{
			Name:    s.Category,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    3,
			},
		})
	}
	if len(lines) == 0 {
		return placeholder(fmt.Sprintf("No rating history for %q", competitor))
	}

	if !maxT.After(minT) {
		minT, maxT = minT.Add(-datePad), maxT.Add(datePad)
	}
	pad := math.Max(ratingPad, (maxY-minY)*0.05)

	graph := chart.Chart{
		Title:  fmt.Sprintf("Rating history for %s", competitor),
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat(time.DateOnly),
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(minT),
				Max: chart.TimeToFloat64(maxT),
			},
		},
		YAxis: chart.YAxis{
			Name: "Rating",
			Range: &chart.ContinuousRange{
				Min: math.Floor(minY - pad),
				Max: math.Ceil(maxY + pad),
			},
		},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render trajectory: %w", err)
	}
	return buf.Bytes(), nil
}

// placeholder renders msg on a blank canvas. Render refuses a chart without
// a visible series, so a transparent one is drawn under the text.
func placeholder(msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:  chartWidth / 2,
		Height: chartHeight / 3,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
		},
		XAxis: chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis: chart.YAxis{Style: chart.Style{Hidden: true}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(drawing.ColorBlack)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				r.Text(msg, (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
			},
		},
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render placeholder: %w", err)
	}
	return buf.Bytes(), nil
}
