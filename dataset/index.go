package dataset

import (
	"github.com/RoaringBitmap/roaring"
)

// Index is a bitmap-based index mapping each distinct column value to the
// set of row positions holding it. Cleaning uses it to detect duplicate
// order IDs; the analyzer uses it for per-value order counts.
type Index struct {
	bitmaps map[string]*roaring.Bitmap
	size    uint64
}

// NewIndex creates an empty value index.
func NewIndex() *Index {
	return &Index{
		bitmaps: make(map[string]*roaring.Bitmap),
	}
}

// Add indexes a value at the given row position.
func (idx *Index) Add(value string, position uint32) {
	bitmap, exists := idx.bitmaps[value]
	if !exists {
		bitmap = roaring.New()
		idx.bitmaps[value] = bitmap
	}
	bitmap.Add(position)
	if uint64(position) >= idx.size {
		idx.size = uint64(position) + 1
	}
}

// Has reports whether the value has been indexed at least once.
func (idx *Index) Has(value string) bool {
	_, ok := idx.bitmaps[value]
	return ok
}

// Get returns the bitmap of row positions for a value, or nil.
func (idx *Index) Get(value string) *roaring.Bitmap {
	return idx.bitmaps[value]
}

// Count returns the number of rows indexed under a value.
func (idx *Index) Count(value string) int {
	bitmap := idx.bitmaps[value]
	if bitmap == nil {
		return 0
	}
	return int(bitmap.GetCardinality())
}

// Cardinality returns the number of distinct values in the index.
func (idx *Index) Cardinality() int {
	return len(idx.bitmaps)
}

// Values returns every distinct indexed value, in map order.
func (idx *Index) Values() []string {
	values := make([]string, 0, len(idx.bitmaps))
	for v := range idx.bitmaps {
		values = append(values, v)
	}
	return values
}
