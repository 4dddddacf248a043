// Package analyze computes ordering-behavior aggregates over a cleaned
// dataset: customer rankings, time histograms, item popularity, and the
// daily order trend.
package analyze

import (
	"sort"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/orderlens/orderlens/dataset"
)

var aggregateLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name: "orderlens_aggregate_latency_seconds",
	Help: "Aggregate computation latency distribution",
})

func init() {
	prometheus.MustRegister(aggregateLatency)
}

// Cache keys for memoized aggregates.
const (
	customerCountsKey = "customer_counts"
	hourHistogramKey  = "hour_histogram"
	dayHistogramKey   = "day_histogram"
	dailySeriesKey    = "daily_series"
	itemScanKey       = "item_scan"
)

// Engine computes aggregates over a single cleaned dataset, memoizing
// results so the insight stage reuses what the chart stage already
// computed. One Engine serves one dataset; do not share across inputs.
type Engine struct {
	cache  *lru.Cache
	logger *zap.Logger
}

// NewEngine creates an analysis engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		cache:  lru.New(32),
		logger: logger,
	}
}

// ---------------------------------------------------------------------
// Top Customers
// ---------------------------------------------------------------------

// CustomerCount is one customer's delivered-order count.
type CustomerCount struct {
	CustomerID string
	Orders     int
}

// TopCustomers returns the n customers with the most orders, descending.
// Ties break by customer ID ascending so output is deterministic.
func (e *Engine) TopCustomers(ds *dataset.Dataset, n int) []CustomerCount {
	ranking := e.customerCounts(ds)
	if len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}

func (e *Engine) customerCounts(ds *dataset.Dataset) []CustomerCount {
	if cached, ok := e.cache.Get(customerCountsKey); ok {
		return cached.([]CustomerCount)
	}
	start := time.Now()

	index := dataset.NewIndex()
	for i, order := range ds.Orders {
		index.Add(order.CustomerID, uint32(i))
	}

	ranking := make([]CustomerCount, 0, index.Cardinality())
	for _, customer := range index.Values() {
		ranking = append(ranking, CustomerCount{CustomerID: customer, Orders: index.Count(customer)})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Orders != ranking[j].Orders {
			return ranking[i].Orders > ranking[j].Orders
		}
		return ranking[i].CustomerID < ranking[j].CustomerID
	})

	aggregateLatency.Observe(time.Since(start).Seconds())
	e.cache.Add(customerCountsKey, ranking)
	return ranking
}

// ---------------------------------------------------------------------
// Time Histograms
// ---------------------------------------------------------------------

// HourHistogram counts orders per hour of day, indexed 0-23.
func (e *Engine) HourHistogram(ds *dataset.Dataset) [24]int {
	if cached, ok := e.cache.Get(hourHistogramKey); ok {
		return cached.([24]int)
	}
	start := time.Now()

	var hist [24]int
	for _, order := range ds.Orders {
		hist[order.Hour]++
	}

	aggregateLatency.Observe(time.Since(start).Seconds())
	e.cache.Add(hourHistogramKey, hist)
	return hist
}

// DayCount is one weekday's order count.
type DayCount struct {
	Day    time.Weekday
	Orders int
}

// DayHistogram counts orders per day of week in canonical Monday through
// Sunday order. Days with zero orders still appear in position.
func (e *Engine) DayHistogram(ds *dataset.Dataset) [7]DayCount {
	if cached, ok := e.cache.Get(dayHistogramKey); ok {
		return cached.([7]DayCount)
	}
	start := time.Now()

	var hist [7]DayCount
	for i := range hist {
		hist[i].Day = CanonicalWeek[i]
	}
	for _, order := range ds.Orders {
		hist[weekdayPosition(order.Day)].Orders++
	}

	aggregateLatency.Observe(time.Since(start).Seconds())
	e.cache.Add(dayHistogramKey, hist)
	return hist
}

// CanonicalWeek orders weekdays Monday through Sunday for histograms
// and tie-breaking.
var CanonicalWeek = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// weekdayPosition maps a time.Weekday (Sunday=0) to its canonical slot.
func weekdayPosition(day time.Weekday) int {
	return (int(day) + 6) % 7
}

// ---------------------------------------------------------------------
// Daily Trend
// ---------------------------------------------------------------------

// DateCount is one calendar day's order count.
type DateCount struct {
	Date   time.Time
	Orders int
}

// DailySeries counts orders per calendar date, ascending by date.
func (e *Engine) DailySeries(ds *dataset.Dataset) []DateCount {
	if cached, ok := e.cache.Get(dailySeriesKey); ok {
		return cached.([]DateCount)
	}
	start := time.Now()

	byDate := make(map[time.Time]int)
	for _, order := range ds.Orders {
		byDate[order.Date]++
	}
	series := make([]DateCount, 0, len(byDate))
	for date, count := range byDate {
		series = append(series, DateCount{Date: date, Orders: count})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	aggregateLatency.Observe(time.Since(start).Seconds())
	e.cache.Add(dailySeriesKey, series)
	return series
}
