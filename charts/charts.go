// Package charts renders behavior aggregates as PNG images under a
// fixed output directory. Files are overwritten on every run; the whole
// pipeline is regenerable, so no partial-write recovery is needed.
package charts

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/orderlens/orderlens/analyze"
)

// Fixed output filenames, one per analysis.
const (
	TopCustomersFile = "top_10_customers_by_orders.png"
	HourFile         = "orders_by_hour_of_day.png"
	DayFile          = "orders_by_day_of_week.png"
	TopItemsFile     = "top_ordered_items.png"
	DailyTrendFile   = "daily_orders_trend.png"
)

var renderLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name: "orderlens_render_latency_seconds",
	Help: "Chart render latency distribution",
})

func init() {
	prometheus.MustRegister(renderLatency)
}

// Renderer writes charts into a single output directory.
type Renderer struct {
	dir    string
	logger *zap.Logger
}

// NewRenderer creates the output directory if needed and returns a
// renderer writing into it.
func NewRenderer(dir string, logger *zap.Logger) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &Renderer{dir: dir, logger: logger}, nil
}

// TopCustomers renders the customer ranking as a vertical bar chart.
func (r *Renderer) TopCustomers(ranking []analyze.CustomerCount) (string, error) {
	labels := make([]string, len(ranking))
	values := make(plotter.Values, len(ranking))
	for i, c := range ranking {
		labels[i] = c.CustomerID
		values[i] = float64(c.Orders)
	}
	return r.barChart(TopCustomersFile, barSpec{
		title:  fmt.Sprintf("Top %d Customers by Number of Orders", len(ranking)),
		xLabel: "Customer ID",
		yLabel: "Number of Orders",
		labels: labels,
		values: values,
	})
}

// HourDistribution renders the 24-bucket hourly histogram.
func (r *Renderer) HourDistribution(hist [24]int) (string, error) {
	labels := make([]string, len(hist))
	values := make(plotter.Values, len(hist))
	for hour, count := range hist {
		labels[hour] = fmt.Sprintf("%d", hour)
		values[hour] = float64(count)
	}
	return r.barChart(HourFile, barSpec{
		title:  "Order Distribution by Hour of Day",
		xLabel: "Hour of Day (0-23)",
		yLabel: "Number of Orders",
		labels: labels,
		values: values,
	})
}

// DayDistribution renders the canonical-week histogram. Zero days keep
// their position.
func (r *Renderer) DayDistribution(hist [7]analyze.DayCount) (string, error) {
	labels := make([]string, len(hist))
	values := make(plotter.Values, len(hist))
	for i, day := range hist {
		labels[i] = day.Day.String()
		values[i] = float64(day.Orders)
	}
	return r.barChart(DayFile, barSpec{
		title:  "Order Distribution by Day of Week",
		xLabel: "Day of Week",
		yLabel: "Number of Orders",
		labels: labels,
		values: values,
	})
}

// TopItems renders item popularity as a horizontal bar chart with the
// most ordered item at the top.
func (r *Renderer) TopItems(ranking []analyze.ItemCount) (string, error) {
	// Horizontal bars draw index 0 at the bottom, so reverse the
	// descending ranking to put the biggest bar on top.
	labels := make([]string, len(ranking))
	values := make(plotter.Values, len(ranking))
	for i, item := range ranking {
		j := len(ranking) - 1 - i
		labels[j] = item.Name
		values[j] = float64(item.Orders)
	}
	return r.barChart(TopItemsFile, barSpec{
		title:      fmt.Sprintf("Top %d Most Ordered Items", len(ranking)),
		xLabel:     "Number of Times Ordered",
		yLabel:     "Item Name",
		labels:     labels,
		values:     values,
		horizontal: true,
	})
}

// DailyTrend renders the per-date order counts as a line chart with
// time-formatted ticks.
func (r *Renderer) DailyTrend(series []analyze.DateCount) (string, error) {
	start := time.Now()

	p := plot.New()
	p.Title.Text = "Trend of Daily Orders"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Number of Orders"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())

	points := make(plotter.XYs, len(series))
	for i, day := range series {
		points[i].X = float64(day.Date.Unix())
		points[i].Y = float64(day.Orders)
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return "", fmt.Errorf("build daily trend line: %w", err)
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = plotutil.Color(0)
	p.Add(line)

	path := filepath.Join(r.dir, DailyTrendFile)
	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}

	renderLatency.Observe(time.Since(start).Seconds())
	r.logger.Info("saved chart", zap.String("file", path))
	return path, nil
}

type barSpec struct {
	title      string
	xLabel     string
	yLabel     string
	labels     []string
	values     plotter.Values
	horizontal bool
}

func (r *Renderer) barChart(filename string, spec barSpec) (string, error) {
	start := time.Now()

	p := plot.New()
	p.Title.Text = spec.title
	p.X.Label.Text = spec.xLabel
	p.Y.Label.Text = spec.yLabel

	bars, err := plotter.NewBarChart(spec.values, vg.Points(20))
	if err != nil {
		return "", fmt.Errorf("build bar chart %s: %w", filename, err)
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)
	bars.Horizontal = spec.horizontal
	p.Add(bars)

	if spec.horizontal {
		p.NominalY(spec.labels...)
	} else {
		p.NominalX(spec.labels...)
	}

	path := filepath.Join(r.dir, filename)
	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}

	renderLatency.Observe(time.Since(start).Seconds())
	r.logger.Info("saved chart", zap.String("file", path))
	return path, nil
}
