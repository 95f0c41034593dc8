package workflow

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stockdesk/krfeed/config"
	"resty.dev/v3"
)

// TaskState represents the state of a task execution
type TaskState string

const (
	StatePending   TaskState = "pending"
	StateRunning   TaskState = "running"
	StateCompleted TaskState = "completed"
	StateSkipped   TaskState = "skipped"
	StateFailed    TaskState = "failed"
)

// TaskResult holds the execution result of a task
type TaskResult struct {
	State    TaskState
	Rows     int
	Message  string
	Error    error
	Duration time.Duration
}

type ErrorMode int

const (
	ErrorModeStop ErrorMode = iota
	ErrorModeSkip
)

// TaskFunc is the function that executes a task
type TaskFunc func(ctx context.Context, args *TaskArgs) (*TaskResult, error)

// SkipCondition determines if a task should be skipped
type SkipCondition func(ctx context.Context, args *TaskArgs) bool

// Task represents a unit of work with dependencies
type Task struct {
	Name      string
	DependsOn []string
	Executor  TaskFunc
	SkipIf    SkipCondition
	OnError   ErrorMode
}

type TaskArgs struct {
	Config *config.Config
	Client *resty.Client
	Now    func() time.Time
}

// TaskExecutor runs tasks one at a time in dependency order.
type TaskExecutor struct {
	tasks map[string]*Task
}

func NewTaskExecutor(tasks map[string]*Task) *TaskExecutor {
	return &TaskExecutor{tasks: tasks}
}

// Run executes taskNames and their ordering constraints. Dependencies that
// are not listed in taskNames are ignored. It returns the per-task results
// even when a task stops the run.
func (te *TaskExecutor) Run(ctx context.Context, taskNames []string, args *TaskArgs) (map[string]*TaskResult, error) {
	results := make(map[string]*TaskResult)
	if len(taskNames) == 0 {
		return results, nil
	}

	order, err := te.topologicalSort(taskNames)
	if err != nil {
		return results, fmt.Errorf("failed to resolve task dependencies: %w", err)
	}

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		task := te.tasks[name]

		if dep, ok := unmetDependency(task, results); ok {
			results[name] = &TaskResult{State: StateSkipped, Message: fmt.Sprintf("dependency %s did not complete", dep)}
			log.WithField("task", name).Warnf("⏭️  skipped: dependency %s did not complete", dep)
			continue
		}

		if task.SkipIf != nil && task.SkipIf(ctx, args) {
			results[name] = &TaskResult{State: StateSkipped, Message: "skipped by condition"}
			log.WithField("task", name).Debug("skipped by condition")
			continue
		}

		result := te.executeTask(ctx, task, args)
		results[name] = result

		if result.Error != nil {
			if task.OnError == ErrorModeStop {
				return results, fmt.Errorf("task %s failed: %w", name, result.Error)
			}
			log.WithField("task", name).Warnf("⚠️ %v", result.Error)
		}
	}

	return results, nil
}

func unmetDependency(task *Task, results map[string]*TaskResult) (string, bool) {
	for _, dep := range task.DependsOn {
		result, exists := results[dep]
		if !exists {
			// not part of this run
			continue
		}
		if result.State != StateCompleted && result.State != StateSkipped {
			return dep, true
		}
	}
	return "", false
}

func (te *TaskExecutor) executeTask(ctx context.Context, task *Task, args *TaskArgs) *TaskResult {
	start := time.Now()
	result, err := task.Executor(ctx, args)
	if err != nil {
		return &TaskResult{
			State:    StateFailed,
			Error:    err,
			Duration: time.Since(start),
		}
	}
	if result == nil {
		result = &TaskResult{}
	}
	if result.State == "" || result.State == StatePending || result.State == StateRunning {
		result.State = StateCompleted
	}
	result.Duration = time.Since(start)
	return result
}

// topologicalSort orders taskNames so that dependencies come first. Ties
// keep the order given by the caller.
func (te *TaskExecutor) topologicalSort(taskNames []string) ([]string, error) {
	inDegree := make(map[string]int)
	adj := make(map[string][]string)
	taskSet := make(map[string]bool)

	for _, name := range taskNames {
		if _, exists := te.tasks[name]; !exists {
			return nil, fmt.Errorf("task %s not found", name)
		}
		if taskSet[name] {
			return nil, fmt.Errorf("task %s listed twice", name)
		}
		taskSet[name] = true
		inDegree[name] = 0
	}

	for _, name := range taskNames {
		task := te.tasks[name]
		for _, dep := range task.DependsOn {
			if !taskSet[dep] {
				continue
			}
			adj[dep] = append(adj[dep], name)
			inDegree[name]++
		}
	}

	var queue []string
	for _, name := range taskNames {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var order []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, neighbor := range adj[current] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(order) != len(taskNames) {
		return nil, fmt.Errorf("circular dependency detected")
	}

	return order, nil
}

func (te *TaskExecutor) HasTask(name string) bool {
	_, exists := te.tasks[name]
	return exists
}
