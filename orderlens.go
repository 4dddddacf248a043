// Package orderlens runs the food-delivery order analysis pipeline:
// load and clean the CSV export, aggregate ordering behavior, render
// charts, and print textual findings.
package orderlens

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/orderlens/orderlens/analyze"
	"github.com/orderlens/orderlens/archive"
	"github.com/orderlens/orderlens/charts"
	"github.com/orderlens/orderlens/dataset"
	"github.com/orderlens/orderlens/insights"
)

// Config carries every path and limit the stages need, so tests can run
// the whole pipeline against temporary directories.
type Config struct {
	DataPath     string
	OutDir       string
	TopCustomers int
	TopItems     int

	// Bucket enables the optional chart archive when non-empty.
	Bucket       string
	BucketPrefix string
}

// DefaultConfig mirrors the fixed paths of the original export layout.
func DefaultConfig() Config {
	return Config{
		DataPath:     "data/order_history_kaggle_data.csv",
		OutDir:       "visualizations",
		TopCustomers: 10,
		TopItems:     15,
		BucketPrefix: "charts",
	}
}

// Summary reports what a run loaded, rendered, and concluded.
type Summary struct {
	Report   dataset.CleanReport
	Charts   []string
	Findings []string
}

// Run executes the pipeline once. Load failures return an error for the
// caller to report; every later condition degrades specific outputs and
// lets the run finish. Findings and progress text go to out.
func Run(ctx context.Context, cfg Config, logger *zap.Logger, out io.Writer) (*Summary, error) {
	logger.Info("loading order history", zap.String("path", cfg.DataPath))
	table, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return nil, err
	}

	ds, report := dataset.Clean(table, logger)
	summary := &Summary{Report: report}
	fmt.Fprintf(out, "Loaded %d rows: %d duplicates removed, %d dropped for bad timestamps, %d delivered.\n",
		report.TotalRows, report.DuplicatesRemoved, report.TimestampDrops, report.Delivered)

	if ds.Empty() {
		fmt.Fprintln(out, "No delivered orders found; nothing to analyze.")
		return summary, nil
	}

	engine := analyze.NewEngine(logger)
	renderer, err := charts.NewRenderer(cfg.OutDir, logger)
	if err != nil {
		// Charts degrade; aggregates and findings still print.
		logger.Error("chart output unavailable", zap.Error(err))
		renderer = nil
	}

	runBehaviorAnalysis(cfg, engine, renderer, ds, summary, logger, out)

	if cfg.Bucket != "" && len(summary.Charts) > 0 {
		archiveCharts(ctx, cfg, summary.Charts, logger)
	}

	summary.Findings = insights.Generate(engine, ds, logger)
	fmt.Fprintln(out, "\nInsights and recommendations (based on delivered orders):")
	for _, finding := range summary.Findings {
		fmt.Fprintf(out, "- %s\n", finding)
	}

	return summary, nil
}

func runBehaviorAnalysis(cfg Config, engine *analyze.Engine, renderer *charts.Renderer, ds *dataset.Dataset, summary *Summary, logger *zap.Logger, out io.Writer) {
	ranking := engine.TopCustomers(ds, cfg.TopCustomers)
	if len(ranking) > 0 {
		fmt.Fprintf(out, "\nTop customer: %s with %d orders.\n", ranking[0].CustomerID, ranking[0].Orders)
		fmt.Fprintf(out, "Top %d customers by number of orders:\n", len(ranking))
		for _, customer := range ranking {
			fmt.Fprintf(out, "  %s: %d\n", customer.CustomerID, customer.Orders)
		}
		summary.render(logger, func() (string, error) { return renderer.TopCustomers(ranking) }, renderer)
	}

	hours := engine.HourHistogram(ds)
	summary.render(logger, func() (string, error) { return renderer.HourDistribution(hours) }, renderer)

	days := engine.DayHistogram(ds)
	summary.render(logger, func() (string, error) { return renderer.DayDistribution(days) }, renderer)

	scan := engine.ScanItems(ds)
	if scan == nil {
		fmt.Fprintf(out, "\nColumn %q not found; skipping item analysis.\n", dataset.ColItems)
	} else {
		items := analyze.TopItems(scan, cfg.TopItems)
		if len(items) == 0 {
			fmt.Fprintln(out, "\nNo items found after parsing; all orders had unknown items.")
		} else {
			fmt.Fprintf(out, "\nTop %d most ordered items:\n", len(items))
			for _, item := range items {
				fmt.Fprintf(out, "  %s: %d times\n", item.Name, item.Orders)
			}
			summary.render(logger, func() (string, error) { return renderer.TopItems(items) }, renderer)
		}
		if len(scan.Errors) > 0 {
			fmt.Fprintf(out, "Skipped %d malformed item entries.\n", len(scan.Errors))
		}
	}

	series := engine.DailySeries(ds)
	summary.render(logger, func() (string, error) { return renderer.DailyTrend(series) }, renderer)

	fmt.Fprintln(out, "\nPayment method data is not present in this dataset; no payment chart produced.")
}

// render runs one chart renderer, recording the file on success and
// degrading to a log entry on failure.
func (s *Summary) render(logger *zap.Logger, fn func() (string, error), renderer *charts.Renderer) {
	if renderer == nil {
		return
	}
	path, err := fn()
	if err != nil {
		logger.Warn("chart render failed", zap.Error(err))
		return
	}
	s.Charts = append(s.Charts, path)
}

func archiveCharts(ctx context.Context, cfg Config, paths []string, logger *zap.Logger) {
	uploader, err := archive.NewUploader(ctx, cfg.Bucket, cfg.BucketPrefix, logger)
	if err != nil {
		logger.Warn("chart archive unavailable", zap.Error(err))
		return
	}
	defer uploader.Close()

	uploaded := uploader.UploadAll(ctx, paths)
	logger.Info("chart archive finished",
		zap.Int("uploaded", uploaded),
		zap.Int("charts", len(paths)),
		zap.String("bucket", cfg.Bucket))
}
