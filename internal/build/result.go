package build

import (
	"context"
	"errors"
	"time"

	"github.com/wpmoo-org/uibuild/internal/metrics"
)

// TaskStatus is the outcome of one task run.
type TaskStatus string

const (
	TaskStatusSuccess  TaskStatus = "success"
	TaskStatusFailed   TaskStatus = "failed"
	TaskStatusCanceled TaskStatus = "canceled"
)

// IsSuccess reports whether the task completed without error.
func (s TaskStatus) IsSuccess() bool { return s == TaskStatusSuccess }

func (s TaskStatus) label() metrics.ResultLabel {
	switch s {
	case TaskStatusSuccess:
		return metrics.ResultSuccess
	case TaskStatusCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultFailed
	}
}

// TaskResult records a single task execution. Series produce one result per
// child plus one for the series itself.
type TaskResult struct {
	Task      string
	BuildID   string
	Status    TaskStatus
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Err       error
}

func statusFor(err error) TaskStatus {
	switch {
	case err == nil:
		return TaskStatusSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return TaskStatusCanceled
	default:
		return TaskStatusFailed
	}
}
