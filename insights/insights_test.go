package insights

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/orderlens/orderlens/analyze"
	"github.com/orderlens/orderlens/dataset"
)

// week of 2024-09-09: Monday through Sunday.
var weekStart = time.Date(2024, time.September, 9, 12, 0, 0, 0, time.UTC)

// ordersOn builds n delivered orders placed on the given day of that week.
func ordersOn(day time.Weekday, n int) []dataset.Order {
	offset := (int(day) + 6) % 7
	placedAt := weekStart.AddDate(0, 0, offset)
	orders := make([]dataset.Order, n)
	for i := range orders {
		orders[i] = dataset.Order{
			ID:         placedAt.Format("Mon") + string(rune('A'+i)),
			CustomerID: "C",
			PlacedAt:   placedAt,
			Hour:       placedAt.Hour(),
			Day:        placedAt.Weekday(),
			Date:       placedAt.Truncate(24 * time.Hour),
			Status:     dataset.StatusDelivered,
			Items:      "Fries",
		}
	}
	return orders
}

func buildDataset(hasItems bool, groups ...[]dataset.Order) *dataset.Dataset {
	ds := &dataset.Dataset{HasItems: hasItems}
	for _, g := range groups {
		ds.Orders = append(ds.Orders, g...)
	}
	return ds
}

func generate(t *testing.T, ds *dataset.Dataset) []string {
	t.Helper()
	engine := analyze.NewEngine(zaptest.NewLogger(t))
	return Generate(engine, ds, zaptest.NewLogger(t))
}

func findingContaining(findings []string, substr string) string {
	for _, f := range findings {
		if strings.Contains(f, substr) {
			return f
		}
	}
	return ""
}

func TestGenerateEmptyDataset(t *testing.T) {
	assert.Nil(t, generate(t, &dataset.Dataset{}))
}

func TestGenerateBusiestAndSlowestDays(t *testing.T) {
	ds := buildDataset(true,
		ordersOn(time.Monday, 5),
		ordersOn(time.Wednesday, 1),
		ordersOn(time.Saturday, 3),
	)
	findings := generate(t, ds)

	peak := findingContaining(findings, "Peak day")
	require.NotEmpty(t, peak)
	assert.Contains(t, peak, "Monday")

	offPeak := findingContaining(findings, "Off-peak day")
	require.NotEmpty(t, offPeak)
	assert.Contains(t, offPeak, "Wednesday")
}

func TestGenerateDayTieBreaksByCanonicalOrder(t *testing.T) {
	ds := buildDataset(true,
		ordersOn(time.Tuesday, 2),
		ordersOn(time.Sunday, 2),
	)
	findings := generate(t, ds)

	// Tuesday comes before Sunday in the canonical week, so it wins
	// both the busiest and the slowest tie.
	assert.Contains(t, findingContaining(findings, "Peak day"), "Tuesday")
	assert.Contains(t, findingContaining(findings, "Off-peak day"), "Tuesday")
}

func TestGenerateFridayBelowAverage(t *testing.T) {
	ds := buildDataset(true,
		ordersOn(time.Monday, 10),
		ordersOn(time.Friday, 1),
	)
	findings := generate(t, ds)
	assert.NotEmpty(t, findingContaining(findings, "below average"))
}

func TestGenerateFridayBusy(t *testing.T) {
	ds := buildDataset(true,
		ordersOn(time.Monday, 1),
		ordersOn(time.Friday, 10),
	)
	findings := generate(t, ds)
	assert.NotEmpty(t, findingContaining(findings, "relatively busy"))
}

func TestGenerateFridayAroundAverage(t *testing.T) {
	ds := buildDataset(true,
		ordersOn(time.Monday, 5),
		ordersOn(time.Friday, 5),
	)
	findings := generate(t, ds)
	assert.NotEmpty(t, findingContaining(findings, "around average"))
}

func TestGenerateFridaySkippedWhenNoFridayOrders(t *testing.T) {
	ds := buildDataset(true, ordersOn(time.Monday, 5))
	findings := generate(t, ds)
	assert.Empty(t, findingContaining(findings, "Friday"))
}

func TestGenerateStaticRecommendations(t *testing.T) {
	ds := buildDataset(true, ordersOn(time.Monday, 2))
	findings := generate(t, ds)
	assert.NotEmpty(t, findingContaining(findings, "payment method"))
	assert.NotEmpty(t, findingContaining(findings, "popular items"))
}

func TestGenerateItemsRecommendationRequiresItemsColumn(t *testing.T) {
	ds := buildDataset(false, ordersOn(time.Monday, 2))
	findings := generate(t, ds)
	assert.NotEmpty(t, findingContaining(findings, "payment method"))
	assert.Empty(t, findingContaining(findings, "popular items"))
}
