// Package plot renders a topic's analysis document into an interactive HTML
// dashboard: tweets per day, the trending hashtags and the trending words.
package plot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pabello/TwitterAnalyzer/internal/analysis"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600

	xAxisRotate = 90
	fullZoomPct = 100
	pieRadius   = "60%"
)

// pieColors shade the hashtag slices from pale to saturated blue.
var pieColors = []string{"#99add6", "#738fc7", "#4d70b8", "#2652a8", "#003399"}

// wordColors ramp the word bars from purple to orange, one per rank.
var wordColors = []string{
	"#660066", "#751466", "#852966", "#943d66", "#a35266",
	"#b26666", "#c27a66", "#d18f66", "#e0a366", "#f0b866",
}

// Renderer writes dashboards under its plots directory, one HTML file per
// topic and language.
type Renderer struct {
	dir string
}

// NewRenderer creates a renderer rooted at dir. The directory is created on
// first render.
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Dir returns the renderer's output directory.
func (r *Renderer) Dir() string {
	return r.dir
}

// Path returns the dashboard location for a topic and language.
func (r *Renderer) Path(topic, language string) string {
	return filepath.Join(r.dir, topic+"_"+language+".html")
}

// Render writes the dashboard for one analysis document and returns its
// path.
func (r *Renderer) Render(topic, language string, doc *analysis.Document) (string, error) {
	err := os.MkdirAll(r.dir, dirPerm)
	if err != nil {
		return "", fmt.Errorf("create plots dir: %w", err)
	}

	path := r.Path(topic, language)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return "", fmt.Errorf("create dashboard %s: %w", path, err)
	}
	defer file.Close()

	err = buildPage(topic, language, doc).Render(file)
	if err != nil {
		return "", fmt.Errorf("render dashboard %s: %w", path, err)
	}

	return path, nil
}

func buildPage(topic, language string, doc *analysis.Document) *components.Page {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s (%s) analysis", topic, language)
	page.SetLayout(components.PageCenterLayout)

	page.AddCharts(
		DatesChart(topic, doc.Dates),
		HashtagsChart(doc.Trending),
		WordsChart(doc.Trending),
	)

	return page
}

// DatesChart builds the tweets-per-day bar chart. Days are sorted
// chronologically and the first and last buckets are dropped, since fetching
// almost never covers those days completely.
func DatesChart(topic string, dates *analysis.CountMap) *charts.Bar {
	labels, values := dateSeries(dates)
	if len(labels) == 0 {
		return emptyBar("Tweets per day")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Tweets per day",
			Subtitle: "Tweets mentioning " + topic + ", first and last day dropped",
			Left:     "2%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithGridOpts(opts.Grid{
			Top:    "15%",
			Bottom: "18%",
			Left:   "5%",
			Right:  "5%",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: fullZoomPct}, opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Tweets"}),
	)
	bar.SetXAxis(labels)

	peak := maxValue(values)

	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{
			Value:     v,
			ItemStyle: &opts.ItemStyle{Color: rampColor(v, peak)},
		}
	}

	bar.AddSeries("Tweets", data)

	return bar
}

// HashtagsChart builds the trending-hashtags pie from the document's
// trending counter.
func HashtagsChart(trending *analysis.CountMap) *charts.Pie {
	hashtags, _ := splitTrending(trending)
	if len(hashtags) == 0 {
		return emptyPie("Trending hashtags")
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Trending hashtags", Left: "2%"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)

	data := make([]opts.PieData, len(hashtags))
	for i, e := range hashtags {
		data[i] = opts.PieData{
			Name:      e.Key,
			Value:     e.Count,
			ItemStyle: &opts.ItemStyle{Color: pieColors[i%len(pieColors)]},
		}
	}

	pie.AddSeries("Hashtags", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c} ({d}%)",
			}),
			charts.WithPieChartOpts(opts.PieChart{
				Radius: pieRadius,
			}),
		)

	return pie
}

// WordsChart builds the trending-words horizontal bar chart, most frequent
// word on top.
func WordsChart(trending *analysis.CountMap) *charts.Bar {
	_, words := splitTrending(trending)
	if len(words) == 0 {
		return emptyBar("Trending words")
	}

	// Categories render bottom-up on a horizontal bar, so the ranked
	// order is reversed to put the leading word on top.
	labels := make([]string, len(words))
	data := make([]opts.BarData, len(words))

	for i, e := range words {
		j := len(words) - 1 - i
		labels[j] = e.Key
		data[j] = opts.BarData{
			Value:     e.Count,
			ItemStyle: &opts.ItemStyle{Color: wordColors[i%len(wordColors)]},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Trending words", Left: "2%"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithGridOpts(opts.Grid{
			Top:    "15%",
			Bottom: "10%",
			Left:   "12%",
			Right:  "5%",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Count"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("Words", data)
	bar.XYReversal()

	return bar
}

// dateSeries sorts the date buckets chronologically and trims the two
// partial edge days. Fewer than three buckets leave nothing to plot.
func dateSeries(dates *analysis.CountMap) ([]string, []int64) {
	if dates == nil {
		return nil, nil
	}

	entries := dates.Entries()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	if len(entries) <= 2 {
		return nil, nil
	}

	entries = entries[1 : len(entries)-1]

	labels := make([]string, len(entries))
	values := make([]int64, len(entries))

	for i, e := range entries {
		labels[i] = e.Key
		values[i] = e.Count
	}

	return labels, values
}

// splitTrending partitions the trending counter into its hashtag and word
// entries, keeping ranked order.
func splitTrending(trending *analysis.CountMap) (hashtags, words []analysis.Entry) {
	if trending == nil {
		return nil, nil
	}

	for _, e := range trending.Entries() {
		if strings.HasPrefix(e.Key, "#") {
			hashtags = append(hashtags, e)
		} else {
			words = append(words, e)
		}
	}

	return hashtags, words
}

func maxValue(values []int64) int64 {
	var peak int64
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}

	return peak
}

// rampColor shades a bar toward bright green as its count approaches the
// peak day.
func rampColor(value, peak int64) string {
	if peak <= 0 {
		return "#5470c6"
	}

	n := float64(value) / float64(peak)

	return fmt.Sprintf("#%02x%02x%02x", int(152*n), int(55+200*n), int(100-100*n))
}

func emptyBar(title string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "No data"}),
	)

	return bar
}

func emptyPie(title string) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "No data"}),
	)

	return pie
}
