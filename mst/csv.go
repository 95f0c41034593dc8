package mst

import (
	"fmt"

	"github.com/stockdesk/krfeed/model"
	"github.com/stockdesk/krfeed/utils"
)

// Merge concatenates record sets in argument order. Duplicated codes are kept.
func Merge(sets ...[]model.StockRecord) []model.StockRecord {
	total := 0
	for _, s := range sets {
		total += len(s)
	}
	merged := make([]model.StockRecord, 0, total)
	for _, s := range sets {
		merged = append(merged, s...)
	}
	return merged
}

// WriteStocksCSV writes kospi followed by kosdaq to path as BOM-prefixed
// UTF-8 and returns the number of rows written.
func WriteStocksCSV(path string, kospi, kosdaq []model.StockRecord) (int, error) {
	rows := Merge(kospi, kosdaq)
	if err := utils.WriteCSV(path, rows, utils.WithBOM()); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return len(rows), nil
}
