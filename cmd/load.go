package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/stockdesk/krfeed/config"
	"github.com/stockdesk/krfeed/workflow"
)

// LoadDB imports the existing output CSVs into the DuckDB file at db_path.
func LoadDB(ctx context.Context, cfg *config.Config) error {
	if cfg.DBPath == "" {
		return errors.New("--dbpath is required")
	}
	if _, err := runTasks(ctx, cfg, workflow.TaskNameLoadDB); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	return nil
}
