// Package insights derives textual findings and recommendations from
// the behavior aggregates. Output is text only; no charts.
package insights

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/orderlens/orderlens/analyze"
	"github.com/orderlens/orderlens/dataset"
)

// Friday heuristic thresholds relative to the mean across days that
// have at least one order.
const (
	fridayLowFactor  = 0.9
	fridayHighFactor = 1.1
)

// Static recommendation blocks. These are fixed strings, not computed
// from the data.
const (
	paymentRecommendation = `Regarding payment methods:
  Payment method data (Cash, Online, ...) is not collected in this dataset but is
  crucial for understanding customer preferences and friction points.
  Recommendation: collect and include payment method data in future exports.
  If future data shows low online-payment adoption, consider small discounts or
  loyalty points for online payments and a smoother in-app payment flow.`

	popularItemsRecommendation = `Based on popular items:
  Ensure consistent availability of top-selling items with partner restaurants.
  Consider combo deals or bundles featuring popular items.
  Leverage popular items in marketing campaigns to attract customers.`
)

// Generate derives the findings for a cleaned dataset. Day-of-week
// counts come from the engine, so a histogram already computed for
// charting is reused rather than recomputed.
//
// Busiest and slowest days break ties by first occurrence in canonical
// Monday through Sunday order; both consider only days that have orders.
func Generate(engine *analyze.Engine, ds *dataset.Dataset, logger *zap.Logger) []string {
	if ds.Empty() {
		logger.Warn("no data available to generate insights")
		return nil
	}

	var findings []string
	hist := engine.DayHistogram(ds)

	busiest, slowest, mean, present := summarizeWeek(hist)
	if present > 0 {
		findings = append(findings,
			fmt.Sprintf("Peak day: %s is the busiest day for orders. Ensure adequate kitchen and delivery staffing.", busiest),
			fmt.Sprintf("Off-peak day: %s is the slowest day. Promotions or special offers on %s could lift order volume.", slowest, slowest),
		)
		if friday := hist[fridayPosition].Orders; friday > 0 {
			findings = append(findings, fridayFinding(float64(friday), mean))
		}
	}

	findings = append(findings, paymentRecommendation)
	if ds.HasItems {
		findings = append(findings, popularItemsRecommendation)
	}
	return findings
}

// fridayPosition is Friday's slot in the canonical week histogram.
const fridayPosition = 4

// summarizeWeek finds the busiest and slowest days among days with
// orders and the mean count across those days.
func summarizeWeek(hist [7]analyze.DayCount) (busiest, slowest time.Weekday, mean float64, present int) {
	total := 0
	maxOrders, minOrders := -1, -1
	for _, day := range hist {
		if day.Orders == 0 {
			continue
		}
		present++
		total += day.Orders
		if maxOrders < 0 || day.Orders > maxOrders {
			maxOrders = day.Orders
			busiest = day.Day
		}
		if minOrders < 0 || day.Orders < minOrders {
			minOrders = day.Orders
			slowest = day.Day
		}
	}
	if present > 0 {
		mean = float64(total) / float64(present)
	}
	return busiest, slowest, mean, present
}

func fridayFinding(friday, mean float64) string {
	switch {
	case friday < mean*fridayLowFactor:
		return "Friday orders are below average. Targeted Friday promotions could boost activity."
	case friday > mean*fridayHighFactor:
		return "Friday is a relatively busy day. Ensure operational readiness; loyalty offers could be effective."
	default:
		return "Friday order volume is around average. Standard operations are appropriate, but seasonal promotions could be tested."
	}
}
