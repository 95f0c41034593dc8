package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stockdesk/krfeed/config"
	"github.com/stockdesk/krfeed/utils"
	"github.com/stockdesk/krfeed/workflow"
)

// SetupLogging configures the global logrus logger.
func SetupLogging(level string, verbose bool) error {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	if verbose {
		level = "debug"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)
	return nil
}

func newTaskArgs(cfg *config.Config) *workflow.TaskArgs {
	return &workflow.TaskArgs{
		Config: cfg,
		Client: utils.NewHTTPClient(cfg.HTTPTimeout),
		Now:    time.Now,
	}
}

// runTasks executes the named tasks and turns every failed task into an
// error, so a skipped-on-error task still makes the command fail.
func runTasks(ctx context.Context, cfg *config.Config, names ...string) (map[string]*workflow.TaskResult, error) {
	executor := workflow.NewTaskExecutor(workflow.GetRegisteredTasks())

	results, err := executor.Run(ctx, names, newTaskArgs(cfg))
	if err != nil {
		return results, err
	}

	var errs []error
	for _, name := range names {
		if r, ok := results[name]; ok && r.State == workflow.StateFailed {
			errs = append(errs, fmt.Errorf("%s: %w", name, r.Error))
		}
	}
	return results, errors.Join(errs...)
}
