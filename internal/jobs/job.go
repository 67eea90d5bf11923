// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"

	statDto "anoa.com/notevault/internal/modules/stat/dto"
)

// Job is a named unit of scheduled work. An empty Schedule means the job
// only runs on demand through Scheduler.RunByName.
type Job interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
}

type DashboardRefresher interface {
	RefreshDashboard(ctx context.Context) (*statDto.DashboardStats, error)
}

type DownloadReconciler interface {
	ReconcileDownloadCounts(ctx context.Context) (int64, error)
}

// FuncJob adapts a plain function to Job.
type FuncJob struct {
	JobName string
	Spec    string
	Fn      func(ctx context.Context) error
}

func (j FuncJob) Name() string     { return j.JobName }
func (j FuncJob) Schedule() string { return j.Spec }

func (j FuncJob) Run(ctx context.Context) error {
	return j.Fn(ctx)
}
