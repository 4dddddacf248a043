package analyze

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orderlens/orderlens/dataset"
)

// quantitySeparator splits "2 x Veg Burger" into quantity and name.
// Only the first occurrence counts; later ones belong to the name.
const quantitySeparator = " x "

// ItemParseError records one items-in-order entry that could not be
// parsed. Entries fail individually; the scan itself never aborts.
type ItemParseError struct {
	OrderID string
	Entry   string
	Reason  string
}

func (e ItemParseError) Error() string {
	return fmt.Sprintf("order %s: item entry %q: %s", e.OrderID, e.Entry, e.Reason)
}

// ItemScan is the partial-failure result of scanning every order's
// items text: item counts plus the entries that failed to parse.
type ItemScan struct {
	Counts map[string]int
	Parsed int
	Errors []ItemParseError
}

// ScanItems accumulates a frequency count per item name across all
// orders, discarding quantities. Orders carrying the Unknown sentinel
// are excluded. Returns nil when the items column was absent from the
// source, which callers must treat as "skip item analysis".
func (e *Engine) ScanItems(ds *dataset.Dataset) *ItemScan {
	if !ds.HasItems {
		e.logger.Warn("items column not present; skipping item analysis",
			zap.String("column", dataset.ColItems))
		return nil
	}
	if cached, ok := e.cache.Get(itemScanKey); ok {
		return cached.(*ItemScan)
	}
	start := time.Now()

	scan := &ItemScan{Counts: make(map[string]int)}
	for _, order := range ds.Orders {
		if order.Items == dataset.UnknownItems {
			continue
		}
		for _, entry := range strings.Split(order.Items, ",") {
			name, err := ParseItemEntry(entry)
			if err != nil {
				scan.Errors = append(scan.Errors, ItemParseError{
					OrderID: order.ID,
					Entry:   entry,
					Reason:  err.Error(),
				})
				continue
			}
			scan.Counts[name]++
			scan.Parsed++
		}
	}

	for _, parseErr := range scan.Errors {
		e.logger.Warn("could not parse item entry", zap.Error(parseErr))
	}

	aggregateLatency.Observe(time.Since(start).Seconds())
	e.cache.Add(itemScanKey, scan)
	return scan
}

// ParseItemEntry extracts the item name from one comma-separated entry.
// "2 x Veg Burger" yields "Veg Burger"; an entry without the quantity
// separator is taken whole. The split happens on the FIRST separator
// only, so "3 x Extra x Cheese Pizza" keeps "Extra x Cheese Pizza".
func ParseItemEntry(raw string) (string, error) {
	entry := strings.TrimSpace(raw)
	if entry == "" {
		return "", fmt.Errorf("empty entry")
	}
	if i := strings.Index(entry, quantitySeparator); i >= 0 {
		name := strings.TrimSpace(entry[i+len(quantitySeparator):])
		if name == "" {
			return "", fmt.Errorf("no item name after quantity")
		}
		return name, nil
	}
	return entry, nil
}

// ItemCount is one item's order frequency.
type ItemCount struct {
	Name   string
	Orders int
}

// TopItems returns the n most ordered items, descending by count with
// ties broken by name ascending. Safe to call with a nil scan.
func TopItems(scan *ItemScan, n int) []ItemCount {
	if scan == nil || len(scan.Counts) == 0 {
		return nil
	}
	ranking := make([]ItemCount, 0, len(scan.Counts))
	for name, count := range scan.Counts {
		ranking = append(ranking, ItemCount{Name: name, Orders: count})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Orders != ranking[j].Orders {
			return ranking[i].Orders > ranking[j].Orders
		}
		return ranking[i].Name < ranking[j].Name
	})
	if len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}
