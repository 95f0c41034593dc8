package duckdb

import (
	"fmt"
	"strings"

	"github.com/stockdesk/krfeed/model"
)

// 所有列与 CSV 一样按文本存储
const columnType = "VARCHAR"

func (d *DuckDBDriver) createTableInternal(meta *model.TableMeta) error {
	var colDefs []string
	for _, col := range meta.Columns {
		colDefs = append(colDefs, quoteIdent(col.Name)+" "+columnType)
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		meta.TableName, strings.Join(colDefs, ", "))

	if _, err := d.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", meta.TableName, err)
	}
	return nil
}

func (d *DuckDBDriver) registerViews() {
	// 按 code 去重, 后导入的行优先 (KOSDAQ 覆盖 KOSPI).
	// code 或 name 为空的行 (空行, 残缺行) 不参与
	d.viewImpls[model.ViewStocksLatest] = func() error {
		query := fmt.Sprintf(`
			CREATE OR REPLACE VIEW %s AS
			SELECT code, coalesce("standardCode", '') AS "standardCode", name
			FROM (
				SELECT
					code,
					"standardCode",
					name,
					row_number() OVER (PARTITION BY code ORDER BY rowid DESC) AS rn
				FROM %s
				WHERE coalesce(code, '') <> '' AND coalesce(name, '') <> ''
			)
			WHERE rn = 1
		`, model.ViewStocksLatest, model.TableKrStocks.TableName)

		_, err := d.db.Exec(query)
		return err
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
