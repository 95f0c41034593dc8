package database

import (
	"fmt"

	"github.com/stockdesk/krfeed/database/duckdb"
	"github.com/stockdesk/krfeed/model"
)

func NewDatabase(cfg model.DBConfig) (DataRepository, error) {
	switch cfg.Type {
	case model.DBTypeDuckDB:
		return duckdb.NewDriver(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported db type: %s", cfg.Type)
	}
}

// NewDuckDB is the shorthand used by the CLI: a bare path selects DuckDB.
func NewDuckDB(path string) (DataRepository, error) {
	return NewDatabase(model.DBConfig{Type: model.DBTypeDuckDB, DSN: path})
}
