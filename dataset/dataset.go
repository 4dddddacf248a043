// Package dataset loads and cleans food-delivery order history exports.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------
// Columns and Fixed Formats
// ---------------------------------------------------------------------

// Column names as they appear in the CSV header.
const (
	ColOrderID    = "Order ID"
	ColCustomerID = "Customer ID"
	ColPlacedAt   = "Order Placed At"
	ColStatus     = "Order Status"
	ColItems      = "Items in order"
)

const (
	// PlacedAtLayout parses timestamps like "11:38 PM, September 10 2024".
	PlacedAtLayout = "3:04 PM, January 2 2006"

	// UnknownItems is the sentinel substituted for missing items text.
	// Orders carrying it are excluded from item-frequency counting.
	UnknownItems = "Unknown"

	// StatusDelivered is the only status retained for behavior analysis.
	StatusDelivered = "Delivered"
)

var (
	ErrNotFound      = errors.New("source file not found")
	ErrMissingColumn = errors.New("required column missing")
)

// ---------------------------------------------------------------------
// Prometheus Metrics
// ---------------------------------------------------------------------

var (
	loadLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "orderlens_load_latency_seconds",
		Help: "CSV load and materialization latency distribution",
	})
	droppedRows = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderlens_rows_dropped_total",
		Help: "Rows dropped during cleaning (duplicates and unparsable timestamps)",
	})
)

func init() {
	prometheus.MustRegister(loadLatency, droppedRows)
}

// ---------------------------------------------------------------------
// Raw Table
// ---------------------------------------------------------------------

// RawRow is one order row as read from the CSV, before cleaning.
type RawRow struct {
	OrderID    string
	CustomerID string
	PlacedAt   string
	Status     string
	Items      string
}

// Table holds the raw rows of a loaded export.
type Table struct {
	Path string
	Rows []RawRow

	// HasItems records whether the optional items column was present,
	// so item analysis can be skipped with a message rather than fail.
	HasItems bool
}

// Load reads the CSV at path through the Arrow inferring reader and
// materializes it into a raw row table. The order ID, customer ID,
// timestamp, and status columns are required; the items column is
// optional.
func Load(path string) (*Table, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewInferringReader(f,
		csv.WithHeader(true),
		csv.WithChunk(1024),
		csv.WithNullReader(true, "", "NA", "null"),
	)
	defer reader.Release()

	table := &Table{Path: path}
	orderCol, customerCol, placedCol, statusCol, itemsCol := -1, -1, -1, -1, -1
	resolved := false

	for reader.Next() {
		record := reader.Record()
		if !resolved {
			for i, field := range record.Schema().Fields() {
				switch field.Name {
				case ColOrderID:
					orderCol = i
				case ColCustomerID:
					customerCol = i
				case ColPlacedAt:
					placedCol = i
				case ColStatus:
					statusCol = i
				case ColItems:
					itemsCol = i
				}
			}
			if orderCol < 0 || customerCol < 0 || placedCol < 0 || statusCol < 0 {
				return nil, fmt.Errorf("%w in %s: need %q, %q, %q, %q",
					ErrMissingColumn, path, ColOrderID, ColCustomerID, ColPlacedAt, ColStatus)
			}
			table.HasItems = itemsCol >= 0
			resolved = true
		}

		for row := 0; row < int(record.NumRows()); row++ {
			raw := RawRow{
				OrderID:    cellString(record, orderCol, row),
				CustomerID: cellString(record, customerCol, row),
				PlacedAt:   cellString(record, placedCol, row),
				Status:     cellString(record, statusCol, row),
			}
			if table.HasItems {
				raw.Items = cellString(record, itemsCol, row)
			}
			table.Rows = append(table.Rows, raw)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if !resolved {
		return nil, fmt.Errorf("parse %s: no data rows", path)
	}

	loadLatency.Observe(time.Since(start).Seconds())
	return table, nil
}

// cellString renders a cell as trimmed text regardless of the type the
// reader inferred for its column. Null cells become the empty string.
func cellString(record arrow.Record, col, row int) string {
	arr := record.Column(col)
	if arr.IsNull(row) {
		return ""
	}
	return strings.TrimSpace(arr.ValueStr(row))
}

// ---------------------------------------------------------------------
// Cleaned Dataset
// ---------------------------------------------------------------------

// Order is one cleaned, delivered order with derived time features.
type Order struct {
	ID         string
	CustomerID string
	PlacedAt   time.Time
	Hour       int          // 0-23
	Day        time.Weekday // derived from PlacedAt
	Date       time.Time    // PlacedAt truncated to midnight
	Status     string
	Items      string
}

// Dataset is the cleaned, delivered-only order set passed between stages.
type Dataset struct {
	Orders   []Order
	HasItems bool
}

// Empty reports whether there is anything to analyze.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Orders) == 0
}

// CleanReport summarizes what cleaning removed and kept.
type CleanReport struct {
	TotalRows         int
	DuplicatesRemoved int
	TimestampDrops    int
	Delivered         int
}

// Clean deduplicates, parses timestamps, derives time features, fills
// the items sentinel, and filters to delivered orders. It returns a new
// Dataset and never mutates the table.
//
// Dedup keeps the first occurrence per order ID, counting later ones
// even when they would have been dropped for other reasons anyway.
func Clean(table *Table, logger *zap.Logger) (*Dataset, CleanReport) {
	report := CleanReport{TotalRows: len(table.Rows)}
	seen := NewIndex()
	orders := make([]Order, 0, len(table.Rows))

	for i, row := range table.Rows {
		if seen.Has(row.OrderID) {
			report.DuplicatesRemoved++
			continue
		}
		seen.Add(row.OrderID, uint32(i))

		placedAt, err := time.Parse(PlacedAtLayout, row.PlacedAt)
		if err != nil {
			report.TimestampDrops++
			continue
		}

		items := row.Items
		if items == "" {
			items = UnknownItems
		}

		orders = append(orders, Order{
			ID:         row.OrderID,
			CustomerID: row.CustomerID,
			PlacedAt:   placedAt,
			Hour:       placedAt.Hour(),
			Day:        placedAt.Weekday(),
			Date:       time.Date(placedAt.Year(), placedAt.Month(), placedAt.Day(), 0, 0, 0, 0, placedAt.Location()),
			Status:     row.Status,
			Items:      items,
		})
	}

	if report.DuplicatesRemoved > 0 {
		logger.Info("removed duplicate orders",
			zap.Int("rows", report.DuplicatesRemoved),
			zap.String("key", ColOrderID))
	}
	if report.TimestampDrops > 0 {
		logger.Warn("dropped rows with unparsable timestamps",
			zap.Int("rows", report.TimestampDrops),
			zap.String("layout", PlacedAtLayout))
	}
	droppedRows.Add(float64(report.DuplicatesRemoved + report.TimestampDrops))

	delivered := make([]Order, 0, len(orders))
	for _, order := range orders {
		if order.Status == StatusDelivered {
			delivered = append(delivered, order)
		}
	}
	report.Delivered = len(delivered)

	if len(delivered) == 0 {
		logger.Warn("no delivered orders found; downstream analyses will be skipped")
	} else {
		logger.Info("cleaning finished",
			zap.Int("total_rows", report.TotalRows),
			zap.Int("delivered", report.Delivered))
	}

	return &Dataset{Orders: delivered, HasItems: table.HasItems}, report
}
