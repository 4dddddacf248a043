package analyze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/orderlens/orderlens/dataset"
)

// orderAt builds a delivered order placed at the given time.
func orderAt(id, customer string, placedAt time.Time, items string) dataset.Order {
	return dataset.Order{
		ID:         id,
		CustomerID: customer,
		PlacedAt:   placedAt,
		Hour:       placedAt.Hour(),
		Day:        placedAt.Weekday(),
		Date:       time.Date(placedAt.Year(), placedAt.Month(), placedAt.Day(), 0, 0, 0, 0, time.UTC),
		Status:     dataset.StatusDelivered,
		Items:      items,
	}
}

func testDataset(orders ...dataset.Order) *dataset.Dataset {
	return &dataset.Dataset{Orders: orders, HasItems: true}
}

func TestTopCustomers(t *testing.T) {
	monday := time.Date(2024, time.September, 9, 12, 0, 0, 0, time.UTC)
	ds := testDataset(
		orderAt("O1", "CUST-2", monday, "Fries"),
		orderAt("O2", "CUST-1", monday, "Fries"),
		orderAt("O3", "CUST-2", monday, "Fries"),
		orderAt("O4", "CUST-3", monday, "Fries"),
	)

	engine := NewEngine(zaptest.NewLogger(t))
	top := engine.TopCustomers(ds, 2)
	require.Len(t, top, 2)
	assert.Equal(t, CustomerCount{CustomerID: "CUST-2", Orders: 2}, top[0])
	// CUST-1 and CUST-3 tie on 1 order; ID ascending breaks the tie.
	assert.Equal(t, CustomerCount{CustomerID: "CUST-1", Orders: 1}, top[1])
}

func TestHourHistogram(t *testing.T) {
	base := time.Date(2024, time.September, 9, 0, 0, 0, 0, time.UTC)
	ds := testDataset(
		orderAt("O1", "C", base.Add(23*time.Hour), "Fries"),
		orderAt("O2", "C", base.Add(23*time.Hour), "Fries"),
		orderAt("O3", "C", base.Add(9*time.Hour), "Fries"),
	)

	engine := NewEngine(zaptest.NewLogger(t))
	hist := engine.HourHistogram(ds)
	assert.Equal(t, 2, hist[23])
	assert.Equal(t, 1, hist[9])
	assert.Equal(t, 0, hist[0])
}

func TestDayHistogramCanonicalOrder(t *testing.T) {
	// 2024-09-09 is a Monday, 2024-09-15 a Sunday.
	monday := time.Date(2024, time.September, 9, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, time.September, 15, 12, 0, 0, 0, time.UTC)
	ds := testDataset(
		orderAt("O1", "C", monday, "Fries"),
		orderAt("O2", "C", monday, "Fries"),
		orderAt("O3", "C", sunday, "Fries"),
	)

	engine := NewEngine(zaptest.NewLogger(t))
	hist := engine.DayHistogram(ds)

	require.Len(t, hist, 7)
	assert.Equal(t, time.Monday, hist[0].Day)
	assert.Equal(t, time.Sunday, hist[6].Day)
	assert.Equal(t, 2, hist[0].Orders)
	assert.Equal(t, 1, hist[6].Orders)
	// Zero days still appear in position.
	assert.Equal(t, time.Tuesday, hist[1].Day)
	assert.Equal(t, 0, hist[1].Orders)
}

func TestDailySeriesSortedAscending(t *testing.T) {
	day1 := time.Date(2024, time.September, 9, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, time.September, 10, 8, 0, 0, 0, time.UTC)
	ds := testDataset(
		orderAt("O1", "C", day2, "Fries"),
		orderAt("O2", "C", day1, "Fries"),
		orderAt("O3", "C", day2, "Fries"),
	)

	engine := NewEngine(zaptest.NewLogger(t))
	series := engine.DailySeries(ds)
	require.Len(t, series, 2)
	assert.True(t, series[0].Date.Before(series[1].Date))
	assert.Equal(t, 1, series[0].Orders)
	assert.Equal(t, 2, series[1].Orders)
}

func TestAggregatesMemoized(t *testing.T) {
	monday := time.Date(2024, time.September, 9, 12, 0, 0, 0, time.UTC)
	ds := testDataset(orderAt("O1", "C", monday, "Fries"))

	engine := NewEngine(zaptest.NewLogger(t))
	first := engine.DayHistogram(ds)
	second := engine.DayHistogram(ds)
	assert.Equal(t, first, second)
}
