package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stockdesk/krfeed/config"
	"github.com/stockdesk/krfeed/workflow"
)

// UpdateStocks downloads both master files and rewrites the stock list CSV.
func UpdateStocks(ctx context.Context, cfg *config.Config) error {
	start := time.Now()
	if _, err := runTasks(ctx, cfg, workflow.TaskNameUpdateStocks); err != nil {
		return fmt.Errorf("failed to update stock list: %w", err)
	}
	log.Debugf("stocks done in %s", time.Since(start))
	return nil
}
