package duckdb

import (
	"fmt"
	"strings"

	"github.com/stockdesk/krfeed/model"
)

func (d *DuckDBDriver) csvImportQuery(meta *model.TableMeta, csvPath string) string {
	var colMaps []string
	for _, col := range meta.Columns {
		colMaps = append(colMaps, fmt.Sprintf("'%s': '%s'", col.Name, columnType))
	}

	return fmt.Sprintf(`
		INSERT INTO %s
		SELECT * FROM read_csv('%s',
			header=true,
			columns={%s}
		)
	`, meta.TableName, strings.ReplaceAll(csvPath, "'", "''"), strings.Join(colMaps, ", "))
}

// replaceFromCSV empties the table and reloads it inside one transaction.
func (d *DuckDBDriver) replaceFromCSV(meta *model.TableMeta, csvPath string) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s", meta.TableName)); err != nil {
		return fmt.Errorf("duckdb truncate failed: %w", err)
	}

	query := d.csvImportQuery(meta, csvPath)
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to import %s into %s: %w", csvPath, meta.TableName, err)
	}

	return tx.Commit()
}

func (d *DuckDBDriver) ImportKrStocks(path string) error {
	return d.replaceFromCSV(model.TableKrStocks, path)
}

func (d *DuckDBDriver) ImportNews(path string) error {
	return d.replaceFromCSV(model.TableNews, path)
}

func (d *DuckDBDriver) CountRows(table string) (int64, error) {
	var n int64
	if err := d.db.Get(&n, fmt.Sprintf("SELECT count(*) FROM %s", table)); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// QueryStock returns the last loaded row for code, or sql.ErrNoRows.
func (d *DuckDBDriver) QueryStock(code string) (model.StockRecord, error) {
	var rec model.StockRecord
	query := fmt.Sprintf(`SELECT code, "standardCode", name FROM %s WHERE code = ?`, model.ViewStocksLatest)
	err := d.db.Get(&rec, query, code)
	return rec, err
}

// SearchStocks returns the latest rows whose name contains query, ordered
// by code. An empty query matches nothing.
func (d *DuckDBDriver) SearchStocks(query string) ([]model.StockRecord, error) {
	records := []model.StockRecord{}
	if query == "" {
		return records, nil
	}
	q := fmt.Sprintf(`SELECT code, "standardCode", name FROM %s WHERE contains(name, ?) ORDER BY code`, model.ViewStocksLatest)
	if err := d.db.Select(&records, q, query); err != nil {
		return nil, fmt.Errorf("failed to search stocks: %w", err)
	}
	return records, nil
}

func (d *DuckDBDriver) QueryNews(limit int) ([]model.FeedEntry, error) {
	query := fmt.Sprintf("SELECT title, link, published FROM %s ORDER BY rowid", model.TableNews.TableName)
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var entries []model.FeedEntry
	if err := d.db.Select(&entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	return entries, nil
}
