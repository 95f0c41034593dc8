package duckdb

import (
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stockdesk/krfeed/model"
)

type DuckDBDriver struct {
	dsn       string
	db        *sqlx.DB
	viewImpls map[model.ViewID]func() error
}

func NewDriver(cfg model.DBConfig) *DuckDBDriver {
	return &DuckDBDriver{dsn: cfg.DSN, viewImpls: make(map[model.ViewID]func() error)}
}

func (d *DuckDBDriver) Connect() error {
	db, err := sqlx.Open("duckdb", d.dsn)
	if err != nil {
		return fmt.Errorf("failed to open duckdb %s: %w", d.dsn, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("duckdb ping failed: %w", err)
	}
	// 单进程顺序写入, 一个连接足够
	db.SetMaxOpenConns(1)

	d.db = db
	return nil
}

func (d *DuckDBDriver) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DuckDBDriver) InitSchema() error {
	for _, t := range model.AllTables() {
		if err := d.createTableInternal(t); err != nil {
			return err
		}
	}

	d.registerViews()
	for _, viewID := range model.AllViews() {
		implFunc, exists := d.viewImpls[viewID]
		if !exists {
			return fmt.Errorf("[DuckDB] Missing implementation for required view: %s", viewID)
		}
		if err := implFunc(); err != nil {
			return fmt.Errorf("failed to create view %s: %w", viewID, err)
		}
	}

	return nil
}
