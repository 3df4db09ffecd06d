package scheduler

import "errors"

var (
	// ErrSchedulerRunning is returned when adding a task to a started scheduler
	ErrSchedulerRunning = errors.New("scheduler is already running")

	// ErrInvalidTask is returned for a task without a name, interval or run func
	ErrInvalidTask = errors.New("invalid scheduler task")

	// ErrDuplicateTask is returned when a task name is registered twice
	ErrDuplicateTask = errors.New("duplicate scheduler task")
)
