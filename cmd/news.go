package cmd

import (
	"context"
	"fmt"

	"github.com/stockdesk/krfeed/config"
	"github.com/stockdesk/krfeed/workflow"
)

// UpdateNews fetches the feed and rewrites the news CSV.
func UpdateNews(ctx context.Context, cfg *config.Config) error {
	if _, err := runTasks(ctx, cfg, workflow.TaskNameUpdateNews); err != nil {
		return fmt.Errorf("failed to update news: %w", err)
	}
	return nil
}
