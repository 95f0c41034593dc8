package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stockdesk/krfeed/config"
	"github.com/stockdesk/krfeed/workflow"
)

// Cron runs both pipelines and, when db_path is set, loads the results.
// A failing pipeline does not stop the other one; the run still fails.
func Cron(ctx context.Context, cfg *config.Config) error {
	start := time.Now()

	results, err := runTasks(ctx, cfg, workflow.GetCronTaskNames()...)
	for _, name := range workflow.GetCronTaskNames() {
		if r, ok := results[name]; ok {
			log.WithFields(log.Fields{
				"state": r.State,
				"rows":  r.Rows,
				"took":  r.Duration.Round(time.Millisecond),
			}).Info(name)
		}
	}
	if err != nil {
		return fmt.Errorf("workflow execution failed: %w", err)
	}

	log.Infof("🚀 all tasks finished in %s", time.Since(start).Round(time.Millisecond))
	return nil
}
