package cmd

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/stockdesk/krfeed/config"
	"github.com/stockdesk/krfeed/database"
	"github.com/stockdesk/krfeed/model"
	"github.com/stockdesk/krfeed/utils"
)

// SearchStocks looks up stocks by a name fragment in a database filled by
// LoadDB.
func SearchStocks(ctx context.Context, cfg *config.Config, query string) ([]model.StockRecord, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("--dbpath is required")
	}
	if err := utils.CheckFile(cfg.DBPath); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := database.NewDuckDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}
	if err := db.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	records, err := db.SearchStocks(query)
	if err != nil {
		return nil, err
	}
	log.Debugf("🔍 %q matched %d stocks", query, len(records))
	return records, nil
}
