package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/boreq/errors"
	storagebenchmark "github.com/sudheerdagar/s3-rocksdb-benchmark"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	cellWidth  = 700
	cellHeight = 450

	chartWidth    = 2000
	chartBarWidth = 300
)

type Metric struct {
	Name  string
	Title string
	YAxis string
	Color drawing.Color
	Value func(result storagebenchmark.SizeResult) float64
}

var (
	UploadTime = Metric{
		Name:  "upload_time",
		Title: "Upload Time vs File Size",
		YAxis: "Upload Time (s)",
		Color: chart.ColorBlue,
		Value: func(r storagebenchmark.SizeResult) float64 { return r.UploadTime },
	}

	WriteThroughput = Metric{
		Name:  "write_throughput",
		Title: "Write Throughput vs File Size",
		YAxis: "Write Throughput (MB/s)",
		Color: chart.ColorGreen,
		Value: func(r storagebenchmark.SizeResult) float64 { return r.WriteThroughput },
	}

	ReadThroughput = Metric{
		Name:  "read_throughput",
		Title: "Read Throughput vs File Size",
		YAxis: "Read Throughput (MB/s)",
		Color: chart.ColorRed,
		Value: func(r storagebenchmark.SizeResult) float64 { return r.ReadThroughput },
	}

	AverageLatency = Metric{
		Name:  "average_latency",
		Title: "Average Read Latency vs File Size",
		YAxis: "Average Read Latency (s)",
		Color: drawing.ColorFromHex("bf00bf"),
		Value: func(r storagebenchmark.SizeResult) float64 { return r.AvgReadLatency },
	}
)

// Metrics in the order they are laid out in the results grid.
var Metrics = []Metric{
	UploadTime,
	WriteThroughput,
	ReadThroughput,
	AverageLatency,
}

var seriesColors = []drawing.Color{
	chart.ColorBlue,
	chart.ColorRed,
	chart.ColorGreen,
	chart.ColorOrange,
	drawing.ColorFromHex("bf00bf"),
	chart.ColorBlack,
}

func MakeMetricChart(result storagebenchmark.BackendResult, metric Metric) chart.Chart {
	graph := newLineChart(fmt.Sprintf("%s: %s", result.Backend, metric.Title), metric.YAxis)

	xs, ys := values(result, metric)
	graph.Series = append(graph.Series,
		chart.ContinuousSeries{
			Name:    metric.YAxis,
			Style:   lineStyle(metric.Color),
			XValues: xs,
			YValues: ys,
		},
		annotations(xs, ys),
	)

	setRanges(&graph, xs, ys)
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph
}

// MakeComparisonChart draws one line per backend.
func MakeComparisonChart(results []storagebenchmark.BackendResult, metric Metric) chart.Chart {
	graph := newLineChart(metric.Title, metric.YAxis)

	var allXs, allYs []float64
	for i, result := range results {
		xs, ys := values(result, metric)
		graph.Series = append(graph.Series,
			chart.ContinuousSeries{
				Name:    result.Backend,
				Style:   lineStyle(seriesColors[i%len(seriesColors)]),
				XValues: xs,
				YValues: ys,
			},
			annotations(xs, ys),
		)
		allXs = append(allXs, xs...)
		allYs = append(allYs, ys...)
	}

	setRanges(&graph, allXs, allYs)
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph
}

// RenderBackendGrid renders all metrics of a backend as a 2x2 grid.
func RenderBackendGrid(w io.Writer, result storagebenchmark.BackendResult) error {
	var charts []chart.Chart
	for _, metric := range Metrics {
		charts = append(charts, MakeMetricChart(result, metric))
	}
	return RenderGrid(w, charts, 2)
}

// RenderComparison renders a single metric of all backends as a PNG.
func RenderComparison(w io.Writer, results []storagebenchmark.BackendResult, metric Metric) error {
	graph := MakeComparisonChart(results, metric)
	if err := graph.Render(chart.PNG, w); err != nil {
		return errors.Wrap(err, "error rendering the chart")
	}
	return nil
}

// RenderGrid renders the charts and composes them into a single PNG with the
// given number of columns.
func RenderGrid(w io.Writer, charts []chart.Chart, columns int) error {
	if len(charts) == 0 {
		return errors.New("no charts to render")
	}

	if columns <= 0 {
		return errors.New("number of columns must be positive")
	}

	rows := (len(charts) + columns - 1) / columns
	canvas := image.NewRGBA(image.Rect(0, 0, columns*cellWidth, rows*cellHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	for i, c := range charts {
		c.Width = cellWidth
		c.Height = cellHeight

		buf := bytes.NewBuffer(nil)
		if err := c.Render(chart.PNG, buf); err != nil {
			return errors.Wrap(err, "error rendering the chart")
		}

		img, err := png.Decode(buf)
		if err != nil {
			return errors.Wrap(err, "error decoding the rendered chart")
		}

		origin := image.Pt((i%columns)*cellWidth, (i/columns)*cellHeight)
		draw.Draw(canvas, img.Bounds().Add(origin), img, img.Bounds().Min, draw.Over)
	}

	if err := png.Encode(w, canvas); err != nil {
		return errors.Wrap(err, "error encoding the grid")
	}

	return nil
}

type Bar struct {
	Label string
	Value float64
}

func MakeBarChart(title, yAxis string, bars []Bar) chart.BarChart {
	graph := chart.BarChart{
		Title: title,
		Background: chart.Style{
			Padding: chart.Box{
				Top: 40,
			},
		},
		Height:   512,
		BarWidth: chartBarWidth,
		Width:    chartWidth,
		YAxis: chart.YAxis{
			Name: yAxis,
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: 0,
			},
		},
	}

	for _, bar := range bars {
		graph.Bars = append(graph.Bars, chart.Value{
			Label: bar.Label,
			Value: bar.Value,
		})

		if v := bar.Value * 1.1; v > graph.YAxis.Range.GetMax() {
			graph.YAxis.Range.SetMax(v)
		}
	}

	return graph
}

func newLineChart(title, yAxis string) chart.Chart {
	return chart.Chart{
		Title:  title,
		Width:  cellWidth,
		Height: cellHeight,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		XAxis: chart.XAxis{
			Name:           "File Size (MB)",
			ValueFormatter: intValueFormatter,
			GridMajorStyle: gridStyle(),
		},
		YAxis: chart.YAxis{
			Name:           yAxis,
			GridMajorStyle: gridStyle(),
		},
	}
}

func values(result storagebenchmark.BackendResult, metric Metric) ([]float64, []float64) {
	var xs, ys []float64
	for _, size := range result.Sizes {
		xs = append(xs, float64(size.FileSizeMB))
		ys = append(ys, metric.Value(size))
	}
	return xs, ys
}

func annotations(xs, ys []float64) chart.AnnotationSeries {
	series := chart.AnnotationSeries{}
	for i := range xs {
		series.Annotations = append(series.Annotations, chart.Value2{
			XValue: xs[i],
			YValue: ys[i],
			Label:  fmt.Sprintf("%.5f", ys[i]),
		})
	}
	return series
}

// setRanges pads both axes so that annotations fit and a single point or a
// flat line still yields a non-zero range.
func setRanges(graph *chart.Chart, xs, ys []float64) {
	minX, maxX := bounds(xs)
	padX := (maxX - minX) * 0.1
	if padX == 0 {
		padX = 10
	}

	_, maxY := bounds(ys)
	if maxY <= 0 {
		maxY = 1
	}

	graph.XAxis.Range = &chart.ContinuousRange{Min: minX - padX, Max: maxX + padX}
	graph.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: maxY * 1.2}
}

func bounds(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func lineStyle(color drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: color,
		StrokeWidth: 2,
		DotColor:    color,
		DotWidth:    4,
	}
}

func gridStyle() chart.Style {
	return chart.Style{
		StrokeColor: drawing.ColorFromHex("dddddd"),
		StrokeWidth: 1,
	}
}

func intValueFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}
