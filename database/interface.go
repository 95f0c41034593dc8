package database

import "github.com/stockdesk/krfeed/model"

type DataRepository interface {
	Connect() error
	Close() error

	InitSchema() error

	// Imports replace the whole table with the CSV content.
	ImportKrStocks(csvPath string) error
	ImportNews(csvPath string) error

	CountRows(table string) (int64, error)
	QueryStock(code string) (model.StockRecord, error)
	SearchStocks(query string) ([]model.StockRecord, error)
	QueryNews(limit int) ([]model.FeedEntry, error)
}
